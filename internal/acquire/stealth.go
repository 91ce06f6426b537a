package acquire

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scrape-engine/internal/model"
	"github.com/sells-group/scrape-engine/internal/resilience"
)

// StealthAcquirer renders pages in headless Chrome with user-agent rotation
// and interaction simulation. One browser process (the exec allocator) is
// pooled for the engine's lifetime; each Acquire call owns exactly one
// browser context and releases it on every exit path.
type StealthAcquirer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	sem         chan struct{}
	agents      *AgentPool
	limiters    *HostLimiters
	breaker     *resilience.Breaker
}

// StealthOptions configures a StealthAcquirer.
type StealthOptions struct {
	// MaxContexts bounds concurrent rendering contexts. Acquisitions beyond
	// the bound block until a slot frees.
	MaxContexts int
	Limiters    *HostLimiters
	Breaker     *resilience.Breaker
}

// NewStealthAcquirer starts the shared browser allocator. Close must be
// called to release it.
func NewStealthAcquirer(opts StealthOptions) *StealthAcquirer {
	if opts.MaxContexts <= 0 {
		opts.MaxContexts = 3
	}
	if opts.Limiters == nil {
		opts.Limiters = NewHostLimiters()
	}
	if opts.Breaker == nil {
		opts.Breaker = resilience.NewBreaker("stealth_render", 3, 30*time.Second, 60*time.Second)
	}

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)

	return &StealthAcquirer{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		sem:         make(chan struct{}, opts.MaxContexts),
		agents:      NewAgentPool(nil),
		limiters:    opts.Limiters,
		breaker:     opts.Breaker,
	}
}

func (s *StealthAcquirer) Name() string { return "stealth_render" }

// Available reports whether the renderer is currently usable (breaker
// closed). The orchestrator degrades escalation to basic mode when not.
func (s *StealthAcquirer) Available() bool {
	return !s.breaker.IsOpen()
}

// Close tears down the pooled browser process. Idempotent.
func (s *StealthAcquirer) Close() {
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

// Acquire renders the task's URL and extracts title and plaintext. The
// politeness delay is applied before navigation; the render context is
// cancelled before return on success, failure, and caller cancellation
// alike.
func (s *StealthAcquirer) Acquire(ctx context.Context, task model.ScrapeTask, cfg model.AcquisitionConfig) (*model.ScrapeResult, error) {
	start := time.Now()

	if s.breaker.IsOpen() {
		return nil, eris.New("stealth_render: circuit breaker open")
	}

	// Politeness first: spacing out requests must not hold a rendering slot.
	if err := s.limiters.Wait(ctx, task.URL, cfg.PolitenessDelay); err != nil {
		return nil, eris.Wrap(err, "stealth_render: politeness wait")
	}

	// Backpressure: block until a rendering slot frees.
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "stealth_render: waiting for context slot")
	}

	renderTimeout := cfg.RenderTimeout
	if renderTimeout <= 0 {
		renderTimeout = 30 * time.Second
	}
	renderCtx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	ua := browserAgents[0]
	if cfg.UserAgentPool {
		ua = s.agents.Next()
	}

	tabCtx, tabCancel := chromedp.NewContext(s.allocCtx)
	defer tabCancel()

	// Bind the tab to the per-call deadline and the caller's cancellation:
	// the tab is torn down before either is propagated.
	stop := context.AfterFunc(renderCtx, tabCancel)
	defer stop()

	html, err := s.render(tabCtx, task.URL, ua, cfg)
	if err != nil {
		s.breaker.RecordFailure()
		if renderCtx.Err() != nil {
			return nil, resilience.NewFetchError(resilience.KindTimeout,
				eris.Wrap(renderCtx.Err(), "stealth_render: render deadline"))
		}
		return nil, resilience.NewFetchError(resilience.KindRender, err)
	}
	s.breaker.RecordSuccess()

	res := &model.ScrapeResult{
		URL:       task.URL,
		Title:     extractTitle(html),
		Content:   stripHTML(html),
		RawLength: len(html),
		HTML:      html,
		Metadata: model.ResultMetadata{
			Mode:      model.ModeStealth,
			ElapsedMs: time.Since(start).Milliseconds(),
		},
	}

	zap.L().Debug("stealth render complete",
		zap.String("url", task.URL),
		zap.Int("html_bytes", len(html)),
		zap.Int64("elapsed_ms", res.Metadata.ElapsedMs),
	)
	return res, nil
}

func (s *StealthAcquirer) render(tabCtx context.Context, targetURL, ua string, cfg model.AcquisitionConfig) (string, error) {
	actions := []chromedp.Action{
		emulation.SetUserAgentOverride(ua),
		chromedp.Navigate(targetURL),
	}

	if cfg.WaitForDynamicContent {
		actions = append(actions,
			waitForDocumentReady(),
			chromedp.Sleep(500*time.Millisecond),
		)
	} else {
		actions = append(actions, chromedp.Sleep(250*time.Millisecond))
	}

	if cfg.ScrollToLazyLoad {
		actions = append(actions, scrollToBottom())
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return "", eris.Wrap(err, "stealth_render: run")
	}
	return html, nil
}

// waitForDocumentReady polls document.readyState until the page settles.
func waitForDocumentReady() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			var readyState string
			if err := chromedp.Evaluate(`document.readyState`, &readyState).Do(ctx); err != nil {
				return err
			}
			if readyState == "complete" {
				return nil
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
}

// scrollFractions drives the staged scroll so lazy-loaded sections render.
var scrollFractions = []string{"0.25", "0.5", "0.75", "1.0"}

// scrollToBottom scrolls the page in steps, pausing between each so
// lazy-loaded content has a chance to mount.
func scrollToBottom() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, f := range scrollFractions {
			err := chromedp.Evaluate(
				`window.scrollTo(0, document.body.scrollHeight * `+f+`)`, nil,
			).Do(ctx)
			if err != nil {
				return err
			}
			select {
			case <-time.After(300 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
}
