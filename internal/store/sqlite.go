package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/scrape-engine/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS result_cache (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	result     TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_result_cache_url ON result_cache(url);
CREATE INDEX IF NOT EXISTS idx_result_cache_expires_at ON result_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get returns the freshest unexpired cached result for a URL, or nil.
func (s *SQLiteStore) Get(ctx context.Context, url string) (*model.ScrapeResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM result_cache
		 WHERE url = ? AND expires_at > datetime('now')
		 ORDER BY cached_at DESC LIMIT 1`, url,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached result")
	}

	var res model.ScrapeResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached result")
	}
	return &res, nil
}

// Set caches a result with the given TTL.
func (s *SQLiteStore) Set(ctx context.Context, res model.ScrapeResult, ttl time.Duration) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO result_cache (id, url, result, cached_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), res.URL, string(payload), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: insert cached result")
}

// PurgeExpired deletes expired rows.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int, error) {
	r, err := s.db.ExecContext(ctx,
		`DELETE FROM result_cache WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: purge expired")
	}
	n, _ := r.RowsAffected()
	return int(n), nil
}

// Count returns the number of unexpired cached results.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM result_cache WHERE expires_at > datetime('now')`,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: count")
	}
	return n, nil
}
