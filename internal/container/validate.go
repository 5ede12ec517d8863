package container

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Validate checks an archive structurally: readable container, parseable
// manifest.json, non-empty level list, and the full per-level triad
// (level.json, render.glb, collision.rlevox). Checksum verification is
// folded in when the archive carries a checksum manifest.
//
// Preconditions that make further checks meaningless (missing file,
// unreadable container) fail fast with a single error; everything else is
// accumulated so the caller sees all problems in one pass.
func Validate(path string) (bool, []string) {
	if _, err := os.Stat(path); err != nil {
		return false, []string{fmt.Sprintf("File not found: %s", path)}
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false, []string{"Not a valid ZIP file"}
	}
	defer func() { _ = zr.Close() }()

	var errs []string
	errs = append(errs, validateStructure(&zr.Reader)...)

	if hasEntry(&zr.Reader, ChecksumPath) {
		if ok, checksumErrs := verifyChecksums(&zr.Reader); !ok {
			errs = append(errs, checksumErrs...)
		}
	}
	return len(errs) == 0, errs
}

// validateStructure checks manifest presence, JSON well-formedness, and
// level triads. It reads the manifest as raw JSON rather than through the
// typed model so that schema-level violations cannot mask structural ones.
func validateStructure(zr *zip.Reader) []string {
	var errs []string

	data, err := readZipEntry(zr, ManifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{"Missing required file: manifest.json"}
	}
	if err != nil {
		return []string{fmt.Sprintf("Cannot read manifest.json: %v", err)}
	}

	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		return []string{fmt.Sprintf("Invalid JSON in manifest.json: %v", err)}
	}

	rawLevels, present := manifest["levels"]
	levels, isArray := rawLevels.([]any)
	switch {
	case !present:
		errs = append(errs, "manifest.json missing 'levels' field")
	case rawLevels == nil || (isArray && len(levels) == 0):
		errs = append(errs, "manifest.json has empty 'levels' array")
	case !isArray:
		errs = append(errs, "manifest.json 'levels' field is not an array")
	default:
		for _, raw := range levels {
			id := "unknown"
			if lvl, ok := raw.(map[string]any); ok {
				if s, ok := lvl["id"].(string); ok && s != "" {
					id = s
				}
			}
			for _, required := range RequiredLevelPaths(id) {
				if !hasEntry(zr, required) {
					errs = append(errs, fmt.Sprintf("Missing required file: %s", required))
				}
			}
		}
	}
	return errs
}

func hasEntry(zr *zip.Reader, name string) bool {
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}
