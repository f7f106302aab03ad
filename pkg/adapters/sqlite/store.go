// Package sqlite keeps every key in one row of a SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/sketchnotes/pkg/core"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Config holds the configuration for the SQLite store.
type Config struct {
	// DSN is a file path or a "file:" URI understood by modernc.org/sqlite.
	DSN      string
	ReadOnly bool
	Logger   *slog.Logger
}

// Store implements core.Store and core.Mutator on SQLite.
type Store struct {
	config Config
	db     *sql.DB
}

// Open opens (but does not initialize) the database.
func Open(config Config) (*Store, error) {
	db, err := sql.Open("sqlite", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One writer at a time; SQLite serializes anyway and this avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	return &Store{config: config, db: db}, nil
}

// Initialize creates the kv table.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.ReadOnly {
		return s.db.PingContext(ctx)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return get(ctx, s.db, key)
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if s.config.Logger != nil {
		s.config.Logger.Debug("writing key", "key", key, "bytes", len(value))
	}
	return set(ctx, s.db, key, value)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Mutate runs fn inside a transaction.
func (s *Store) Mutate(ctx context.Context, key string, fn core.MutateFunc) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, ok, err := get(ctx, tx, key)
	if err != nil {
		return err
	}
	next, err := fn(current, ok)
	if err != nil {
		return err
	}
	if err := set(ctx, tx, key, next); err != nil {
		return err
	}
	return tx.Commit()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite"
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	stats := s.db.Stats()
	return map[string]any{
		"dsn":              s.config.DSN,
		"read_only":        s.config.ReadOnly,
		"open_connections": stats.OpenConnections,
	}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func get(ctx context.Context, q queryer, key string) ([]byte, bool, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func set(ctx context.Context, q queryer, key string, value []byte) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
