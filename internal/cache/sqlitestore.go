package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/docsift/docsift/internal/extract"
)

// SQLiteStore persists cache entries in an embedded SQLite database so a
// warm cache survives process restarts. Rows are keyed by the versioned
// fingerprint; a KeyVersion bump naturally strands old rows, which Prune
// removes.
type SQLiteStore struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS results (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	saved_at   INTEGER NOT NULL
);
`

// OpenSQLiteStore opens (creating if needed) the store at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// SQLite handles one writer at a time; serialize through a single conn.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(storeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load fetches the result stored under key, if any.
func (s *SQLiteStore) Load(ctx context.Context, key string) (*extract.Result, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM results WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	var r extract.Result
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return &r, true, nil
}

// Save upserts the result under key.
func (s *SQLiteStore) Save(ctx context.Context, key string, r *extract.Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (key, payload, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		key, payload, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Prune deletes rows older than maxAge and rows whose key version no longer
// matches KeyVersion. It returns the number of rows removed.
func (s *SQLiteStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	removed := int64(0)
	if maxAge > 0 {
		cutoff := time.Now().Add(-maxAge).Unix()
		res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE saved_at < ?`, cutoff)
		if err != nil {
			return removed, fmt.Errorf("prune by age: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE key NOT LIKE ?`, KeyVersion+":%")
	if err != nil {
		return removed, fmt.Errorf("prune stale versions: %w", err)
	}
	n, _ := res.RowsAffected()
	removed += n
	return removed, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
