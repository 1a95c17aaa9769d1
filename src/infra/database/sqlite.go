package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/contre95/soundprint/src/features/history"
	"github.com/contre95/soundprint/src/music"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteHistory is a SQLite implementation of the history.Store interface.
type SqliteHistory struct {
	db *sql.DB
}

// NewSqliteHistory creates a new SqliteHistory.
func NewSqliteHistory(path string) (*SqliteHistory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &SqliteHistory{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS identifications (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL,
			digest TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			score REAL NOT NULL,
			matches TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_identifications_digest ON identifications(digest);
		CREATE INDEX IF NOT EXISTS idx_identifications_created_at ON identifications(created_at);
	`)
	return err
}

// Add inserts a new history entry.
func (s *SqliteHistory) Add(ctx context.Context, entry *history.Entry) error {
	matches, err := json.Marshal(entry.Matches)
	if err != nil {
		return fmt.Errorf("failed to encode matches: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO identifications (id, created_at, source, digest, title, artist, score, matches)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.CreatedAt.Format(time.RFC3339),
		entry.Source,
		entry.Digest,
		entry.Title,
		entry.Artist,
		entry.Score,
		string(matches),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SqliteHistory) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source, digest, title, artist, score, matches
		FROM identifications
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// FindByDigest returns the most recent entry with the given fingerprint
// digest, or nil when none exists.
func (s *SqliteHistory) FindByDigest(ctx context.Context, digest string) (*history.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, source, digest, title, artist, score, matches
		FROM identifications
		WHERE digest = ?
		ORDER BY created_at DESC
		LIMIT 1`, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to query history by digest: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanEntry(rows)
}

// Close closes the underlying database.
func (s *SqliteHistory) Close() error {
	return s.db.Close()
}

func scanEntry(rows *sql.Rows) (*history.Entry, error) {
	var entry history.Entry
	var createdAt, matches string
	if err := rows.Scan(&entry.ID, &createdAt, &entry.Source, &entry.Digest,
		&entry.Title, &entry.Artist, &entry.Score, &matches); err != nil {
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entry timestamp: %w", err)
	}
	entry.CreatedAt = ts

	var parsed []music.Match
	if err := json.Unmarshal([]byte(matches), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode matches: %w", err)
	}
	entry.Matches = parsed

	return &entry, nil
}
