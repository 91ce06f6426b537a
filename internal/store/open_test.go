package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scrape-engine/internal/config"
)

func TestOpen_DisabledWhenNoDriver(t *testing.T) {
	st, err := Open(context.Background(), config.CacheConfig{})
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestOpen_SQLite(t *testing.T) {
	st, err := Open(context.Background(), config.CacheConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "cache.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, st)
	defer func() { _ = st.Close() }()

	// Migration ran: the cache is usable immediately.
	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.CacheConfig{Driver: "mysql"})
	assert.Error(t, err)
}
