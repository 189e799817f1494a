// Package index keeps a per-project SQLite record of generated context
// documents so list_recent_contexts can answer newest-first without
// re-statting the whole output directory.
//
// The index is a cache, not the source of truth — the documents on disk
// are. Callers fall back to scanning the output directory when the
// index is unavailable, and List drops rows whose backing file has been
// deleted.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the index database inside the notes directory.
const FileName = "contexts.db"

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Entry is one recorded context document.
type Entry struct {
	ID           int64     `json:"id"`
	Path         string    `json:"path"`
	SizeBytes    int64     `json:"size_bytes"`
	FileCount    int       `json:"file_count"`
	SectionCount int       `json:"section_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is the SQLite-backed index for one project.
type Store struct {
	db *sql.DB
}

// Open creates or opens the index database under dir, applying the
// usual SQLite pragmas and running migrations.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("index: create directory: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("index: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("index: pragma %q: %w", p, err)
		}
	}

	const schema = `
CREATE TABLE IF NOT EXISTS contexts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	path          TEXT NOT NULL,
	size_bytes    INTEGER NOT NULL,
	file_count    INTEGER NOT NULL,
	section_count INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contexts_created_at ON contexts(created_at DESC);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts one generated document.
func (s *Store) Record(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO contexts (path, size_bytes, file_count, section_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Path, e.SizeBytes, e.FileCount, e.SectionCount, e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("index: record context: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. Rows whose backing
// document no longer exists on disk are skipped (and do not count
// against the limit).
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, path, size_bytes, file_count, section_count, created_at
		 FROM contexts ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("index: list contexts: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() && len(result) < limit {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Path, &e.SizeBytes, &e.FileCount, &e.SectionCount, &createdAt); err != nil {
			return nil, fmt.Errorf("index: scan row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		if _, err := os.Stat(e.Path); err != nil {
			continue // document was deleted out from under the index
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: iterate rows: %w", err)
	}
	return result, nil
}
