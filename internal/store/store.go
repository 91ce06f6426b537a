// Package store caches filtered scrape results with a TTL so repeated runs
// against the same URLs skip re-acquisition.
package store

import (
	"context"
	"time"

	"github.com/sells-group/scrape-engine/internal/model"
)

// Store is the persistence interface for the result cache.
type Store interface {
	// Get returns the freshest unexpired cached result for a URL, or nil on
	// a miss.
	Get(ctx context.Context, url string) (*model.ScrapeResult, error)
	// Set caches a result with the given TTL.
	Set(ctx context.Context, res model.ScrapeResult, ttl time.Duration) error
	// PurgeExpired deletes expired rows, returning the count removed.
	PurgeExpired(ctx context.Context) (int, error)
	// Count returns the number of unexpired cached results.
	Count(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
