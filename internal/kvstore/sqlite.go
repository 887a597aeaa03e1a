package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"osrs_tax_columns/internal/config"
	"osrs_tax_columns/internal/retry"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLite is a Store persisted in a single-table SQLite database.
type SQLite struct {
	db         *sql.DB
	resilience config.ResilienceConfig
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, resilience config.ResilienceConfig) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	// one connection keeps the single-writer model explicit
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	log.Debug().Str("path", path).Msg("Opened SQLite store")
	return &SQLite{db: db, resilience: resilience}, nil
}

// classify marks errors that another attempt cannot fix as permanent. Only
// busy and locked databases are worth retrying.
func classify(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return err
	}
	return retry.Permanent(err)
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	type result struct {
		value string
		ok    bool
	}
	r, err := retry.WithRetry(ctx, s.resilience.StoreRead, func(ctx context.Context) (result, error) {
		var value string
		err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			return result{}, nil
		}
		if err != nil {
			return result{}, classify(err)
		}
		return result{value: value, ok: true}, nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return r.value, r.ok, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	err := retry.Do(ctx, s.resilience.StoreWrite, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
		return classify(err)
	})
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	err := retry.Do(ctx, s.resilience.StoreWrite, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
		return classify(err)
	})
	if err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
