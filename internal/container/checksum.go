package container

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// digest returns the lowercase hex SHA-256 of data.
func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// buildChecksumManifest renders the checksum entry: one
// "<hex digest>  <path>" line per covered entry, sorted by path.
func buildChecksumManifest(entries map[string][]byte) []byte {
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	lines := make([]string, 0, len(paths))
	for _, p := range paths {
		lines = append(lines, digest(entries[p])+"  "+p)
	}
	return []byte(strings.Join(lines, "\n"))
}

// VerifyChecksums checks every digest recorded in the archive's checksum
// manifest. An archive without one passes with an informational note:
// checksums are optional. Independent findings (malformed lines, missing
// entries, mismatches) are all accumulated; ok is true only when none were
// produced.
func VerifyChecksums(path string) (bool, []string) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false, []string{fmt.Sprintf("Cannot open archive: %v", err)}
	}
	defer func() { _ = zr.Close() }()
	return verifyChecksums(&zr.Reader)
}

func verifyChecksums(zr *zip.Reader) (bool, []string) {
	content, err := readZipEntry(zr, ChecksumPath)
	if errors.Is(err, fs.ErrNotExist) {
		return true, []string{"No checksums.sha256 file found (not an error)"}
	}
	if err != nil {
		// The entry exists but cannot be read; that is corruption, not
		// absence.
		return false, []string{fmt.Sprintf("Cannot read checksums.sha256: %v", err)}
	}

	var errs []string
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "  ", 2)
		if len(parts) != 2 {
			errs = append(errs, fmt.Sprintf("Malformed checksum line: %s", line))
			continue
		}
		want, entryPath := parts[0], parts[1]
		if entryPath == ChecksumPath {
			// The manifest cannot cover itself.
			continue
		}
		data, err := readZipEntry(zr, entryPath)
		if errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Sprintf("Missing file: %s", entryPath))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("Cannot read %s: %v", entryPath, err))
			continue
		}
		if digest(data) != want {
			errs = append(errs, fmt.Sprintf("Checksum mismatch for %s", entryPath))
		}
	}
	return len(errs) == 0, errs
}
