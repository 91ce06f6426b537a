package acquire

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scrape-engine/internal/model"
	"github.com/sells-group/scrape-engine/internal/resilience"
)

// BasicAcquirer fetches pages with plain HTTP. Cheap, no rendering; blocked
// or JS-only pages come back as thin content and are caught downstream by
// classification.
type BasicAcquirer struct {
	client   *http.Client
	limiters *HostLimiters
	retry    resilience.RetryConfig
	maxBody  int64
}

// BasicOptions configures a BasicAcquirer.
type BasicOptions struct {
	Timeout    time.Duration
	MaxBodyKB  int
	MaxRetries int
	Limiters   *HostLimiters
}

// NewBasicAcquirer creates a BasicAcquirer with sensible defaults.
func NewBasicAcquirer(opts BasicOptions) *BasicAcquirer {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBodyKB <= 0 {
		opts.MaxBodyKB = 512
	}
	if opts.Limiters == nil {
		opts.Limiters = NewHostLimiters()
	}
	retry := resilience.DefaultRetryConfig()
	if opts.MaxRetries > 0 {
		retry.MaxAttempts = opts.MaxRetries + 1
	}
	return &BasicAcquirer{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiters: opts.Limiters,
		retry:    retry,
		maxBody:  int64(opts.MaxBodyKB) * 1024,
	}
}

func (b *BasicAcquirer) Name() string { return "basic_http" }

// Acquire fetches the task's URL after a politeness wait, retrying transient
// network failures, and extracts title and plaintext.
func (b *BasicAcquirer) Acquire(ctx context.Context, task model.ScrapeTask, cfg model.AcquisitionConfig) (*model.ScrapeResult, error) {
	start := time.Now()

	if err := b.limiters.Wait(ctx, task.URL, cfg.PolitenessDelay); err != nil {
		return nil, eris.Wrap(err, "basic_http: politeness wait")
	}

	res, err := resilience.DoVal(ctx, b.retry, func(ctx context.Context) (*model.ScrapeResult, error) {
		return b.fetchOnce(ctx, task.URL)
	})
	if err != nil {
		return nil, err
	}

	res.Metadata.Mode = model.ModeBasic
	res.Metadata.ElapsedMs = time.Since(start).Milliseconds()
	return res, nil
}

func (b *BasicAcquirer) fetchOnce(ctx context.Context, targetURL string) (*model.ScrapeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "basic_http: create request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, resilience.NewFetchError(kindOfHTTPErr(err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, b.maxBody))
	if err != nil {
		return nil, resilience.NewFetchError(resilience.KindNetwork, err)
	}

	html := string(body)
	return &model.ScrapeResult{
		URL:       targetURL,
		Title:     extractTitle(html),
		Content:   stripHTML(html),
		RawLength: len(body),
		HTML:      html,
	}, nil
}

func kindOfHTTPErr(err error) resilience.ErrorKind {
	if k := resilience.KindOf(err); k == resilience.KindTimeout {
		return k
	}
	return resilience.KindNetwork
}
