// Package sqlite implements the store driver on a single-file SQLite
// database. SQLite is the durable backend for regular installations; the
// whole state fits one kv table since the store's contract is string keys to
// serialized collections.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/musubi-chat/musubi/store"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

type DB struct {
	db *sql.DB
}

// NewDB opens (and initializes when needed) the database at dsn.
func NewDB(dsn string) (store.Driver, error) {
	if dsn == "" {
		return nil, errors.New("dsn is empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", dsn)
	}

	// Single-user local store: one connection avoids SQLITE_BUSY without a
	// WAL dance.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	return &DB{db: db}, nil
}

func (d *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to get key %s", key)
	}
	return value, true, nil
}

func (d *DB) Set(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to set key %s", key)
	}
	return nil
}

func (d *DB) Remove(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "failed to remove key %s", key)
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}
