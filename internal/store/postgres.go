package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/scrape-engine/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (used by tests).
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS result_cache (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	result     JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_result_cache_url ON result_cache(url);
CREATE INDEX IF NOT EXISTS idx_result_cache_expires_at ON result_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Get returns the freshest unexpired cached result for a URL, or nil.
func (s *PostgresStore) Get(ctx context.Context, url string) (*model.ScrapeResult, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM result_cache
		 WHERE url = $1 AND expires_at > now()
		 ORDER BY cached_at DESC LIMIT 1`, url,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached result")
	}

	var res model.ScrapeResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached result")
	}
	return &res, nil
}

// Set caches a result with the given TTL.
func (s *PostgresStore) Set(ctx context.Context, res model.ScrapeResult, ttl time.Duration) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO result_cache (id, url, result, cached_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), res.URL, payload, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: insert cached result")
}

// PurgeExpired deletes expired rows.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM result_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: purge expired")
	}
	return int(tag.RowsAffected()), nil
}

// Count returns the number of unexpired cached results.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM result_cache WHERE expires_at > now()`,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: count")
	}
	return n, nil
}
