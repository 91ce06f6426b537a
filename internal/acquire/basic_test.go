package acquire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scrape-engine/internal/model"
)

func TestBasicAcquirer_Acquire(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><head><title>Acme Corp</title></head>
			<body><script>var x = 1;</script><p>Industrial compressors &amp; pumps.</p></body></html>`))
	}))
	defer srv.Close()

	b := NewBasicAcquirer(BasicOptions{})
	res, err := b.Acquire(context.Background(), model.ScrapeTask{URL: srv.URL}, model.AcquisitionConfig{})
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", res.Title)
	assert.Contains(t, res.Content, "Industrial compressors & pumps.")
	assert.NotContains(t, res.Content, "var x")
	assert.NotEmpty(t, res.HTML)
	assert.Equal(t, model.ModeBasic, res.Metadata.Mode)
	assert.Equal(t, defaultUserAgent, gotUA)
}

func TestBasicAcquirer_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 8*1024)))
	}))
	defer srv.Close()

	b := NewBasicAcquirer(BasicOptions{MaxBodyKB: 1})
	res, err := b.Acquire(context.Background(), model.ScrapeTask{URL: srv.URL}, model.AcquisitionConfig{})
	require.NoError(t, err)
	assert.Equal(t, 1024, res.RawLength)
}

func TestBasicAcquirer_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	b := NewBasicAcquirer(BasicOptions{Timeout: 2 * time.Second})
	_, err := b.Acquire(context.Background(), model.ScrapeTask{URL: url}, model.AcquisitionConfig{})
	assert.Error(t, err)
}

func TestBasicAcquirer_PolitenessDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>short page body that is long enough</body></html>"))
	}))
	defer srv.Close()

	b := NewBasicAcquirer(BasicOptions{})
	cfg := model.AcquisitionConfig{PolitenessDelay: 150 * time.Millisecond}

	start := time.Now()
	_, err := b.Acquire(context.Background(), model.ScrapeTask{URL: srv.URL}, cfg)
	require.NoError(t, err)
	_, err = b.Acquire(context.Background(), model.ScrapeTask{URL: srv.URL}, cfg)
	require.NoError(t, err)

	// The second request to the same host must wait out the delay.
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestBasicAcquirer_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	b := NewBasicAcquirer(BasicOptions{})
	_, err := b.Acquire(ctx, model.ScrapeTask{URL: srv.URL}, model.AcquisitionConfig{})
	assert.Error(t, err)
}
