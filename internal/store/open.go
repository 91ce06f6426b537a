package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scrape-engine/internal/config"
)

// Open creates and migrates a Store from cache configuration. Returns nil
// (no error) when caching is disabled.
func Open(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "":
		return nil, nil
	case "sqlite":
		st, err = NewSQLite(cfg.DSN)
	case "postgres":
		st, err = NewPostgres(ctx, cfg.DSN)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
