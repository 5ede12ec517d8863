// Package catalog maintains a local SQLite index of packed archives so
// tooling can list and look up worlds without reopening every container.
package catalog

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"

	"github.com/kk-code-lab/stellapack/internal/container"
)

// Record is one indexed archive.
type Record struct {
	ID        string
	Path      string
	Title     string
	Levels    int
	Digest    string // BLAKE3 of the archive file, lowercase hex
	SizeBytes int64
	IndexedAt string
}

// ErrNotFound reports a path absent from the catalog.
var ErrNotFound = errors.New("catalog: record not found")

// Store wraps the SQLite catalog database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at the given path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("catalog: db path required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.applyPragmas(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applyPragmas(ctx context.Context) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
)`); err != nil {
		return err
	}

	var version int
	if err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return err
	}
	if version < 1 {
		if _, err = tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS worlds (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	levels INTEGER NOT NULL,
	digest TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	indexed_at TEXT NOT NULL
)`); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations(version, applied_at) VALUES(1, ?)", time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Add indexes an archive: it opens the container, takes title and level
// count from the manifest, digests the file with BLAKE3, and upserts the
// record keyed by path. The record for the path is returned.
func (s *Store) Add(ctx context.Context, archivePath string) (*Record, error) {
	r, err := container.Open(archivePath)
	if err != nil {
		return nil, err
	}
	m := r.Manifest()
	if err := r.Close(); err != nil {
		return nil, err
	}
	if violations := m.Validate(); len(violations) > 0 {
		return nil, fmt.Errorf("catalog: invalid manifest in %s: %s", archivePath, strings.Join(violations, "; "))
	}

	title := ""
	if m.World != nil {
		title = m.World.Title
	}
	dig, size, err := fileDigest(archivePath)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		ID:        uuid.NewString(),
		Path:      archivePath,
		Title:     title,
		Levels:    len(m.Levels),
		Digest:    dig,
		SizeBytes: size,
		IndexedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO worlds(id, path, title, levels, digest, size_bytes, indexed_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
	title = excluded.title,
	levels = excluded.levels,
	digest = excluded.digest,
	size_bytes = excluded.size_bytes,
	indexed_at = excluded.indexed_at`,
		rec.ID, rec.Path, rec.Title, rec.Levels, rec.Digest, rec.SizeBytes, rec.IndexedAt)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, archivePath)
}

// Get returns the record for an archive path.
func (s *Store) Get(ctx context.Context, archivePath string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, path, title, levels, digest, size_bytes, indexed_at
FROM worlds WHERE path = ?`, archivePath)
	var rec Record
	err := row.Scan(&rec.ID, &rec.Path, &rec.Title, &rec.Levels, &rec.Digest, &rec.SizeBytes, &rec.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns every record ordered by path.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, path, title, levels, digest, size_bytes, indexed_at
FROM worlds ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Title, &rec.Levels, &rec.Digest, &rec.SizeBytes, &rec.IndexedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Remove drops the record for an archive path. Removing an unindexed path
// is not an error.
func (s *Store) Remove(ctx context.Context, archivePath string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM worlds WHERE path = ?", archivePath)
	return err
}

// fileDigest streams the file through BLAKE3 and returns the hex digest
// and file size.
func fileDigest(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := blake3.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}
