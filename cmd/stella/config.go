package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// config holds the optional YAML configuration for the CLI. Every field
// has a flag equivalent; the config only supplies defaults.
type config struct {
	// Checksums overrides the default for including checksums.sha256.
	Checksums *bool `yaml:"checksums"`
	// CatalogDB is the default catalog database path.
	CatalogDB string `yaml:"catalog_db"`
}

// loadConfig reads the config at path, or ~/.stella/config.yaml when path
// is empty. A missing default config is not an error.
func loadConfig(path string) (config, error) {
	var cfg config
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".stella", "config.yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return cfg, err
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
