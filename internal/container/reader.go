package container

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kk-code-lab/stellapack/internal/schema"
)

// ErrMissingManifest reports an archive without a manifest.json entry.
var ErrMissingManifest = errors.New("container: missing manifest.json")

// Reader is a read handle over an opened archive. It keeps the underlying
// file open for on-demand entry access; the caller owns Close.
type Reader struct {
	path     string
	zr       *zip.ReadCloser
	manifest *schema.Manifest
}

// Open opens an archive and parses its manifest. It fails with
// ErrMissingManifest when no manifest.json entry exists.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("container: open %s: %w", path, err)
	}
	data, err := readZipEntry(&zr.Reader, ManifestPath)
	if err != nil {
		_ = zr.Close()
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMissingManifest
		}
		return nil, err
	}
	m, err := schema.ParseManifest(data)
	if err != nil {
		_ = zr.Close()
		return nil, err
	}
	return &Reader{path: path, zr: zr, manifest: m}, nil
}

// Manifest returns the parsed manifest.
func (r *Reader) Manifest() *schema.Manifest {
	return r.manifest
}

// List returns every entry path in archive order.
func (r *Reader) List() []string {
	names := make([]string, 0, len(r.zr.File))
	for _, f := range r.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// ReadEntry returns the exact bytes of the entry at the archive-relative
// path, untransformed.
func (r *Reader) ReadEntry(path string) ([]byte, error) {
	return readZipEntry(&r.zr.Reader, path)
}

// Level looks up a level by id in the manifest and parses its descriptor.
func (r *Reader) Level(id string) (*schema.Level, error) {
	for _, ref := range r.manifest.Levels {
		if ref.ID == id {
			data, err := r.ReadEntry(ref.Path)
			if err != nil {
				return nil, err
			}
			return schema.ParseLevel(data)
		}
	}
	return nil, fmt.Errorf("container: level %s not found in manifest", id)
}

// ExtractAll writes every entry into dir, mirroring archive paths as a
// directory tree. Entry paths that would escape dir are rejected.
func (r *Reader) ExtractAll(dir string) error {
	for _, f := range r.zr.File {
		target, err := safeJoin(dir, f.Name)
		if err != nil {
			return err
		}
		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// safeJoin joins an archive entry name onto dir, rejecting absolute names
// and traversal outside dir.
func safeJoin(dir, name string) (string, error) {
	if strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("container: unsafe entry path %q", name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	if target != filepath.Clean(dir) && !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("container: unsafe entry path %q", name)
	}
	return target, nil
}

// Close releases the underlying archive file.
func (r *Reader) Close() error {
	if r == nil || r.zr == nil {
		return nil
	}
	return r.zr.Close()
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("container: read %s: %w", name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("container: read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("container: entry %s: %w", name, fs.ErrNotExist)
}

// EntryInfo describes one archive member.
type EntryInfo struct {
	Path             string `json:"path"`
	CompressedSize   int64  `json:"compressed_size"`
	UncompressedSize int64  `json:"uncompressed_size"`
}

// ArchiveInfo summarizes an archive: its manifest, members, and sizes.
type ArchiveInfo struct {
	Manifest              *schema.Manifest `json:"manifest"`
	Files                 []EntryInfo      `json:"files"`
	TotalUncompressedSize int64            `json:"total_uncompressed_size"`
	ArchiveSize           int64            `json:"archive_size"`
}

// Info opens an archive and reports its manifest and member inventory.
func Info(path string) (*ArchiveInfo, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	info := &ArchiveInfo{Manifest: r.manifest, Files: make([]EntryInfo, 0, len(r.zr.File))}
	for _, f := range r.zr.File {
		info.Files = append(info.Files, EntryInfo{
			Path:             f.Name,
			CompressedSize:   int64(f.CompressedSize64),
			UncompressedSize: int64(f.UncompressedSize64),
		})
		info.TotalUncompressedSize += int64(f.UncompressedSize64)
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	info.ArchiveSize = st.Size()
	return info, nil
}
