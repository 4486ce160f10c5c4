// Package registry provides the SQLite-backed key/value-with-TTL store
// used for worker heartbeats, feature flags, and cached search results,
// following the teacher's local cache store pattern.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Registry is a single-table TTL key/value store.
type Registry struct {
	db   *sql.DB
	path string
}

// New opens (creating if absent) a SQLite database under dataDir.
func New(dataDir string) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "registry.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open registry db: %w", err)
	}

	r := &Registry{db: db, path: dbPath}
	if err := r.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize registry schema: %w", err)
	}
	return r, nil
}

func (r *Registry) initialize() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS registry_entries (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			expires_at DATETIME NOT NULL
		)`)
	return err
}

// Close closes the underlying connection.
func (r *Registry) Close() error { return r.db.Close() }

// Set stores value under key with the given TTL, replacing any existing entry.
func (r *Registry) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().UTC().Add(ttl)
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO registry_entries (key, value, expires_at) VALUES (?, ?, ?)`,
		key, value, expiresAt)
	return err
}

// Get returns the value for key if present and not expired.
func (r *Registry) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt time.Time
	err := r.db.QueryRowContext(ctx, `SELECT value, expires_at FROM registry_entries WHERE key = ?`, key).
		Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if time.Now().UTC().After(expiresAt) {
		_, _ = r.db.ExecContext(ctx, `DELETE FROM registry_entries WHERE key = ?`, key)
		return nil, false, nil
	}
	return value, true, nil
}

// Delete removes key unconditionally.
func (r *Registry) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM registry_entries WHERE key = ?`, key)
	return err
}

// Sweep deletes all expired entries; callers run it on a timer to keep the
// table small.
func (r *Registry) Sweep(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registry_entries WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Keys returns every non-expired key with the given prefix, used by the
// worker registry to list active heartbeats.
func (r *Registry) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key FROM registry_entries WHERE key LIKE ? AND expires_at > ?`,
		prefix+"%", time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
