package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// SQLiteStorage keeps the candidate catalog and key/value slots in one SQLite
// database. Key/value access goes through KV.
type SQLiteStorage struct {
	db *sql.DB
}

var (
	_ CatalogStore  = (*SQLiteStorage)(nil)
	_ KeyValueStore = sqliteKV{}
)

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS candidates (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		relevance REAL NOT NULL DEFAULT 0,
		url TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (type, id)
	);

	CREATE INDEX IF NOT EXISTS idx_candidates_category ON candidates(category COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

const candidateColumns = `id, title, description, type, category, tags, relevance, url, image`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (models.Candidate, error) {
	var c models.Candidate
	var typ, tagsJSON string
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &typ, &c.Category, &tagsJSON, &c.RelevanceScore, &c.URL, &c.Image); err != nil {
		return models.Candidate{}, err
	}
	c.Type = models.CandidateType(typ)
	if tagsJSON != "" && tagsJSON != "[]" {
		if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
			return models.Candidate{}, fmt.Errorf("failed to unmarshal tags of %s: %w", c.Key(), err)
		}
	}
	return c, nil
}

// Fetch returns the catalog in insertion order. A valid type filter narrows the
// result in SQL; every other filter is left to the search engine.
func (s *SQLiteStorage) Fetch(ctx context.Context, _ string, filters models.QueryFilters) ([]models.Candidate, error) {
	if t := models.CandidateType(filters["type"]); t.Valid() {
		return s.query(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE type = ? ORDER BY seq`, string(t))
	}
	return s.List(ctx)
}

// List returns every candidate in insertion order.
func (s *SQLiteStorage) List(ctx context.Context) ([]models.Candidate, error) {
	return s.query(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY seq`)
}

func (s *SQLiteStorage) query(ctx context.Context, q string, args ...any) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns one candidate by type and id.
func (s *SQLiteStorage) Get(ctx context.Context, t models.CandidateType, id string) (models.Candidate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE type = ? AND id = ?`, string(t), id)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, fmt.Errorf("%w: %s", models.ErrCandidateNotFound, models.CandidateKey(t, id))
	}
	if err != nil {
		return models.Candidate{}, err
	}
	return c, nil
}

// Upsert inserts c or updates the stored candidate with the same key. An update
// keeps the original insertion position.
func (s *SQLiteStorage) Upsert(ctx context.Context, c models.Candidate) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return upsert(ctx, s.db, c, time.Now())
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, c models.Candidate, now time.Time) error {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO candidates (type, id, title, description, category, tags, relevance, url, image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(type, id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			tags = excluded.tags,
			relevance = excluded.relevance,
			url = excluded.url,
			image = excluded.image,
			updated_at = excluded.updated_at`,
		string(c.Type), c.ID, c.Title, c.Description, c.Category, string(tagsJSON), c.RelevanceScore, c.URL, c.Image, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", c.Key(), err)
	}
	return nil
}

// Delete removes one candidate.
func (s *SQLiteStorage) Delete(ctx context.Context, t models.CandidateType, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM candidates WHERE type = ? AND id = ?`, string(t), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", models.CandidateKey(t, id), err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrCandidateNotFound, models.CandidateKey(t, id))
	}
	return nil
}

// ReplaceAll swaps the whole catalog for candidates in one transaction.
func (s *SQLiteStorage) ReplaceAll(ctx context.Context, candidates []models.Candidate) error {
	for i := range candidates {
		if err := candidates[i].Validate(); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates`); err != nil {
		return fmt.Errorf("failed to clear candidates: %w", err)
	}
	now := time.Now()
	for _, c := range candidates {
		if err := upsert(ctx, tx, c, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Count returns the number of stored candidates.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&count)
	return count, err
}

// KV returns a KeyValueStore backed by the kv table.
func (s *SQLiteStorage) KV() KeyValueStore {
	return sqliteKV{db: s.db}
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type sqliteKV struct {
	db *sql.DB
}

func (kv sqliteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := kv.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (kv sqliteKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := kv.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (kv sqliteKV) Delete(ctx context.Context, key string) error {
	if _, err := kv.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
