package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteStore is the SQLite-backed story store.
// Thread-safe for concurrent WASM callbacks.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS stories (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT,
    threshold REAL,
    document BLOB NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stories_created ON stories(created_at);
`

// NewSQLiteStore creates a new in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// an in-memory database lives only as long as its connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveStory inserts rec or replaces the stored story with the same id,
// keeping its creation time.
func (s *SQLiteStore) SaveStory(ctx context.Context, rec *StoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created int64
	if rec.ID != "" {
		err := s.db.QueryRowContext(ctx, `SELECT created_at FROM stories WHERE id = ?`, rec.ID).Scan(&created)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to look up story %s: %w", rec.ID, err)
		}
	}
	rec.stamp(created)

	var threshold sql.NullFloat64
	if rec.Threshold != nil {
		threshold = sql.NullFloat64{Float64: *rec.Threshold, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stories (id, title, author, threshold, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			threshold = excluded.threshold,
			document = excluded.document,
			updated_at = excluded.updated_at
	`, rec.ID, rec.Title, rec.Author, threshold, rec.Document, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save story %s: %w", rec.ID, err)
	}
	return nil
}

// GetStory retrieves a story with its document.
func (s *SQLiteStore) GetStory(ctx context.Context, id string) (*StoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec StoryRecord
	var author sql.NullString
	var threshold sql.NullFloat64

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, threshold, document, created_at, updated_at
		FROM stories WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Title, &author, &threshold, &rec.Document, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}

	rec.Author = author.String
	if threshold.Valid {
		rec.Threshold = &threshold.Float64
	}
	return &rec, nil
}

// ListStories returns every story without its document, oldest first.
func (s *SQLiteStore) ListStories(ctx context.Context) ([]*StoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, threshold, created_at, updated_at
		FROM stories ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer rows.Close()

	result := []*StoryRecord{}
	for rows.Next() {
		var rec StoryRecord
		var author sql.NullString
		var threshold sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.Title, &author, &threshold, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		rec.Author = author.String
		if threshold.Valid {
			v := threshold.Float64
			rec.Threshold = &v
		}
		result = append(result, &rec)
	}
	return result, rows.Err()
}

// DeleteStory removes a story. Deleting a missing id is not an error.
func (s *SQLiteStore) DeleteStory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) CountStories(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return count, nil
}
