// Package history keeps a local catalog of saved snapshots so the CLI can
// list what exists without opening every artifact. The catalog is advisory:
// losing it loses nothing but the listing.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/hostprint/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	hostname    TEXT NOT NULL,
	hashed      INTEGER NOT NULL,
	encrypted   INTEGER NOT NULL,
	digest      TEXT NOT NULL,
	size_bytes  INTEGER NOT NULL,
	collectors  TEXT NOT NULL,
	failures    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_created_at ON snapshots (created_at);
`

// Entry is one catalog row describing a saved snapshot artifact.
type Entry struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	CreatedAt  time.Time `json:"created_at"`
	Hostname   string    `json:"hostname"`
	Hashed     bool      `json:"hashed"`
	Encrypted  bool      `json:"encrypted"`
	Digest     string    `json:"digest"`
	SizeBytes  int64     `json:"size_bytes"`
	Collectors []string  `json:"collectors"`
	Failures   []string  `json:"failures"`
}

// Catalog is an open snapshot catalog backed by SQLite.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog at path. Parent directories
// are created. The schema is applied on every open.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, &model.StorageError{Op: "create history dir", Path: path, Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &model.StorageError{Op: "open history", Path: path, Err: err}
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, &model.StorageError{Op: "configure history", Path: path, Err: err}
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &model.StorageError{Op: "create history schema", Path: path, Err: err}
	}
	return &Catalog{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record inserts one entry. A zero ID is assigned a fresh UUID; the
// assigned ID is returned.
func (c *Catalog) Record(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO snapshots
			(id, path, created_at, hostname, hashed, encrypted, digest, size_bytes, collectors, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Path, e.CreatedAt.UTC().Format(time.RFC3339Nano), e.Hostname,
		boolInt(e.Hashed), boolInt(e.Encrypted), e.Digest, e.SizeBytes,
		strings.Join(e.Collectors, ","), strings.Join(e.Failures, ","))
	if err != nil {
		return "", &model.StorageError{Op: "record snapshot", Path: e.Path, Err: err}
	}
	return e.ID, nil
}

// List returns all entries, newest first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, path, created_at, hostname, hashed, encrypted, digest, size_bytes, collectors, failures
		FROM snapshots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, &model.StorageError{Op: "list snapshots", Err: err}
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                    Entry
			created              string
			hashed, encrypted    int
			collectors, failures string
		)
		if err := rows.Scan(&e.ID, &e.Path, &created, &e.Hostname, &hashed,
			&encrypted, &e.Digest, &e.SizeBytes, &collectors, &failures); err != nil {
			return nil, &model.StorageError{Op: "scan snapshot row", Err: err}
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, &model.StorageError{Op: "parse snapshot timestamp",
				Err: fmt.Errorf("row %s: %w", e.ID, err)}
		}
		e.Hashed = hashed != 0
		e.Encrypted = encrypted != 0
		e.Collectors = splitList(collectors)
		e.Failures = splitList(failures)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StorageError{Op: "list snapshots", Err: err}
	}
	return entries, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
