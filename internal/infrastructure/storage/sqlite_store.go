package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS published_articles (
	pmid TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	post_id TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps the set of already-published articles in a local SQLite
// file so consecutive runs never post the same study twice.
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.PublishedStore = (*SQLiteStore)(nil)

// Open creates the database file (and its directory) if needed and ensures
// the schema exists.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the PMIDs of every article already published.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]bool, error) {
	if s.db == nil {
		return map[string]bool{}, nil
	}

	rows, err := sq.Select("pmid").
		From("published_articles").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query published: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var pmid string
		if err := rows.Scan(&pmid); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan pmid: %w", err)
		}
		result[pmid] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// Record remembers a published article. Re-recording the same PMID is a
// no-op so retries stay idempotent.
func (s *SQLiteStore) Record(ctx context.Context, rec domain.PublishedRecord) error {
	if s.db == nil {
		return nil
	}

	_, err := sq.Insert("published_articles").
		Options("OR IGNORE").
		Columns("pmid", "title", "post_id", "published_at").
		Values(rec.PMID, rec.Title, rec.PostID, rec.PublishedAt.UTC()).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert published: %w", err)
	}

	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
