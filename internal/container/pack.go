package container

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/kk-code-lab/stellapack/internal/schema"
)

// packEpoch pins every entry's modification time so that packing the same
// inputs twice yields byte-identical archives. The ZIP timestamp epoch is
// the natural fixed point.
var packEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// PackOptions controls Pack.
type PackOptions struct {
	// IncludeChecksums adds a checksums.sha256 entry covering every other
	// member, the manifest included.
	IncludeChecksums bool
}

// Pack assembles an archive at outPath from a manifest and a map of
// archive-relative payload paths to bytes.
//
// Member order is a hard contract: manifest.json first, remaining entries
// sorted lexicographically by path, checksums.sha256 last. The archive is
// written to a temporary file in the destination directory and renamed
// into place only after the whole container is assembled; on failure
// nothing is left at outPath.
func Pack(outPath string, m *schema.Manifest, payloads map[string][]byte, opts PackOptions) error {
	manifestBytes, err := m.ToJSON()
	if err != nil {
		return fmt.Errorf("container: encode manifest: %w", err)
	}

	entries := map[string][]byte{ManifestPath: manifestBytes}
	for p, data := range payloads {
		if p == ManifestPath || p == ChecksumPath {
			return fmt.Errorf("container: payload path %q is reserved", p)
		}
		entries[p] = data
	}

	order := make([]string, 0, len(entries)+1)
	rest := make([]string, 0, len(entries))
	for p := range entries {
		if p != ManifestPath {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	order = append(order, ManifestPath)
	order = append(order, rest...)
	if opts.IncludeChecksums {
		entries[ChecksumPath] = buildChecksumManifest(entries)
		order = append(order, ChecksumPath)
	}

	return writeArchive(outPath, order, entries)
}

func writeArchive(outPath string, order []string, entries map[string][]byte) (err error) {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".stella-pack-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	for _, p := range order {
		hdr := &zip.FileHeader{
			Name:     p,
			Method:   zip.Deflate,
			Modified: packEpoch,
		}
		hdr.SetMode(0o644)
		w, werr := zw.CreateHeader(hdr)
		if werr != nil {
			err = werr
			return err
		}
		if _, werr := w.Write(entries[p]); werr != nil {
			err = werr
			return err
		}
	}
	if err = zw.Close(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, outPath)
}
