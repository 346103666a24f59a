package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with the ingest registry helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// Document is one ingested corpus file as recorded in the registry.
type Document struct {
	Path         string
	ContentHash  string
	SourceURL    string
	PassageCount int
	IngestedAt   time.Time
}

// GetDocument returns the registry row for a corpus path, or nil if the
// file has never been ingested.
func (d *DB) GetDocument(ctx context.Context, path string) (*Document, error) {
	row := d.QueryRowContext(ctx,
		`SELECT path, content_hash, source_url, passage_count, ingested_at
		 FROM documents WHERE path = ?`, path)

	var doc Document
	var ingestedAt string
	err := row.Scan(&doc.Path, &doc.ContentHash, &doc.SourceURL, &doc.PassageCount, &ingestedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", path, err)
	}
	doc.IngestedAt, _ = time.Parse(time.RFC3339, ingestedAt)
	return &doc, nil
}

// UpsertDocument records a file as ingested, replacing any previous row.
func (d *DB) UpsertDocument(ctx context.Context, doc Document) error {
	_, err := d.ExecContext(ctx,
		`INSERT INTO documents (path, content_hash, source_url, passage_count, ingested_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   source_url = excluded.source_url,
		   passage_count = excluded.passage_count,
		   ingested_at = excluded.ingested_at`,
		doc.Path, doc.ContentHash, doc.SourceURL, doc.PassageCount,
		doc.IngestedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", doc.Path, err)
	}
	return nil
}

// DeleteDocument removes a registry row.
func (d *DB) DeleteDocument(ctx context.Context, path string) error {
	_, err := d.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", path, err)
	}
	return nil
}

// ListDocuments returns all registry rows ordered by path.
func (d *DB) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := d.QueryContext(ctx,
		`SELECT path, content_hash, source_url, passage_count, ingested_at
		 FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var ingestedAt string
		if err := rows.Scan(&doc.Path, &doc.ContentHash, &doc.SourceURL, &doc.PassageCount, &ingestedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		doc.IngestedAt, _ = time.Parse(time.RFC3339, ingestedAt)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    path TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    source_url TEXT NOT NULL DEFAULT '',
    passage_count INTEGER NOT NULL DEFAULT 0,
    ingested_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_source_url ON documents(source_url);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);
`
