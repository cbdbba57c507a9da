package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tradenexus/internal/adapters/persistence/models"

	_ "modernc.org/sqlite"
)

// sqliteKVRepository implements KVRepository on a local SQLite file.
// Used for single-node deployments where no MySQL server is available.
type sqliteKVRepository struct {
	db *sql.DB
}

// NewSQLiteKVRepository opens (or creates) the database at path
func NewSQLiteKVRepository(path string) (KVRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	r := &sqliteKVRepository{db: db}
	if err := r.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *sqliteKVRepository) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS kv_entries (
		scope TEXT NOT NULL,
		entry_key TEXT NOT NULL,
		value TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (scope, entry_key)
	);
	CREATE INDEX IF NOT EXISTS idx_kv_entry_key ON kv_entries(entry_key);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create kv_entries: %w", err)
	}
	return nil
}

// Get gets a value by scope and key
func (r *sqliteKVRepository) Get(ctx context.Context, scope, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE scope = ? AND entry_key = ?`,
		scope, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

// Set creates or replaces a value
func (r *sqliteKVRepository) Set(ctx context.Context, scope, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv_entries (scope, entry_key, value) VALUES (?, ?, ?)
		ON CONFLICT(scope, entry_key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		scope, key, value,
	)
	return err
}

// Delete removes a value
func (r *sqliteKVRepository) Delete(ctx context.Context, scope, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE scope = ? AND entry_key = ?`,
		scope, key,
	)
	return err
}

// DeleteIfValue removes a value only while it is unchanged
func (r *sqliteKVRepository) DeleteIfValue(ctx context.Context, scope, key, value string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE scope = ? AND entry_key = ? AND value = ?`,
		scope, key, value,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ScopeSize returns the total value bytes stored in a scope
func (r *sqliteKVRepository) ScopeSize(ctx context.Context, scope string) (int64, error) {
	var size int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(LENGTH(CAST(value AS BLOB))), 0) FROM kv_entries WHERE scope = ?`,
		scope,
	).Scan(&size)
	return size, err
}

// ListByKey lists the entries stored under key across all scopes
func (r *sqliteKVRepository) ListByKey(ctx context.Context, key string) ([]*models.KVEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT scope, entry_key, value FROM kv_entries WHERE entry_key = ?`,
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.KVEntry
	for rows.Next() {
		var e models.KVEntry
		if err := rows.Scan(&e.Scope, &e.Key, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Close closes the database
func (r *sqliteKVRepository) Close() error {
	return r.db.Close()
}
