package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kk-code-lab/stellapack/internal/container"
	"github.com/kk-code-lab/stellapack/internal/schema"
)

func TestLoadConfigExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("checksums: false\ncatalog_db: /tmp/cat.db\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Checksums == nil || *cfg.Checksums {
		t.Fatalf("checksums: %+v", cfg.Checksums)
	}
	if cfg.CatalogDB != "/tmp/cat.db" {
		t.Fatalf("catalog_db: %q", cfg.CatalogDB)
	}
}

func TestLoadConfigExplicitMissingFails(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for explicit missing config")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("checksums: [not a bool"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func TestReadLayoutRoundTrip(t *testing.T) {
	// Lay out an extracted archive on disk, read it back, and check the
	// payload map excludes manifest and checksum entries.
	dir := t.TempDir()
	m := schema.NewManifest(schema.ManifestOptions{Title: "Layout"})
	manifestJSON, err := m.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	files := map[string]string{
		container.ManifestPath:      string(manifestJSON),
		container.ChecksumPath:      "stale checksums, must be skipped",
		"levels/0/level.json":       `{"name":"Floor 0"}`,
		"levels/0/render.glb":       "render",
		"levels/0/collision.rlevox": "collision",
		"assets/thumbnail.png":      "png",
	}
	for p, data := range files {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(full, []byte(data), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	manifest, payloads, err := readLayout(dir)
	if err != nil {
		t.Fatalf("readLayout: %v", err)
	}
	if manifest.World == nil || manifest.World.Title != "Layout" {
		t.Fatalf("manifest: %+v", manifest)
	}
	if len(payloads) != 4 {
		t.Fatalf("payloads = %d entries: %v", len(payloads), payloads)
	}
	if _, ok := payloads[container.ManifestPath]; ok {
		t.Fatalf("manifest.json must not appear in payloads")
	}
	if _, ok := payloads[container.ChecksumPath]; ok {
		t.Fatalf("checksums.sha256 must not appear in payloads")
	}
}
