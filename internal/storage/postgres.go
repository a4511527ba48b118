package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safar/go-storefront/internal/database"
)

// PostgresKV stores entries in the kv_entries table (see migrations/).
type PostgresKV struct {
	db   *sql.DB
	opts database.TxOptions
}

func NewPostgresKV(db *sql.DB) *PostgresKV {
	opts := database.DefaultTxOptions()
	opts.IsolationLevel = sql.LevelSerializable
	opts.MaxRetries = 10
	opts.BaseBackoff = 10 * time.Millisecond
	return &PostgresKV{db: db, opts: opts}
}

func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`,
		key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

const upsertQuery = `
	INSERT INTO kv_entries (key, value, version, updated_at)
	VALUES ($1, $2::jsonb, 1, NOW())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
	    version = kv_entries.version + 1,
	    updated_at = NOW()`

func (p *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.ExecContext(ctx, upsertQuery, key, string(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Update locks the row for the duration of fn inside a serializable
// transaction; conflicting writers are retried by database.WithRetry.
func (p *PostgresKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return database.WithRetry(ctx, p.db, p.opts, func(tx *sql.Tx) error {
		var current []byte
		found := true
		err := tx.QueryRowContext(ctx,
			`SELECT value FROM kv_entries WHERE key = $1 FOR UPDATE`,
			key).Scan(&current)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("lock %s: %w", key, err)
			}
			found = false
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}

		if next == nil {
			if !found {
				return nil
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			return nil
		}

		if _, err := tx.ExecContext(ctx, upsertQuery, key, string(next)); err != nil {
			return fmt.Errorf("update %s: %w", key, err)
		}
		return nil
	})
}
