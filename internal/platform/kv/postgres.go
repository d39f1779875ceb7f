package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store on a single relation managed by the goose
// migrations in internal/platform/db.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a postgres-backed store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Get fetches a value by bucket and key.
func (p *Postgres) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	const query = `SELECT value FROM kv_entries WHERE bucket = $1 AND key = $2`
	var value []byte
	if err := p.pool.QueryRow(ctx, query, bucket, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, wrapPGError("get", bucket, err)
	}
	return value, nil
}

// Put upserts a value.
func (p *Postgres) Put(ctx context.Context, bucket, key string, value []byte) error {
	const query = `
		INSERT INTO kv_entries (bucket, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (bucket, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := p.pool.Exec(ctx, query, bucket, key, value); err != nil {
		return wrapPGError("put", bucket, err)
	}
	return nil
}

// Delete removes a row. Deleting an absent key is not an error.
func (p *Postgres) Delete(ctx context.Context, bucket, key string) error {
	const query = `DELETE FROM kv_entries WHERE bucket = $1 AND key = $2`
	if _, err := p.pool.Exec(ctx, query, bucket, key); err != nil {
		return wrapPGError("delete", bucket, err)
	}
	return nil
}

// Scan returns every entry in the bucket ordered by key.
func (p *Postgres) Scan(ctx context.Context, bucket string) ([]Entry, error) {
	const query = `SELECT key, value FROM kv_entries WHERE bucket = $1 ORDER BY key`
	rows, err := p.pool.Query(ctx, query, bucket)
	if err != nil {
		return nil, wrapPGError("scan", bucket, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.Value); err != nil {
			return nil, wrapPGError("scan", bucket, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPGError("scan", bucket, err)
	}
	return entries, nil
}

// Incr advances the named counter in a single upsert, so concurrent callers
// always receive distinct values.
func (p *Postgres) Incr(ctx context.Context, counter string) (int64, error) {
	const query = `
		INSERT INTO kv_counters (name, n) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET n = kv_counters.n + 1
		RETURNING n`
	var n int64
	if err := p.pool.QueryRow(ctx, query, counter).Scan(&n); err != nil {
		return 0, wrapPGError("incr", counter, err)
	}
	return n, nil
}

func wrapPGError(op, bucket string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("kv/postgres: %s %s: %s (%s): %w", op, bucket, pgErr.Message, pgErr.Code, err)
	}
	return fmt.Errorf("kv/postgres: %s %s: %w", op, bucket, err)
}

var _ Store = (*Postgres)(nil)
