// Package engine orchestrates adaptive content acquisition: a cheap basic
// pass first, escalating to stealth rendering and bounded crawling only when
// the basic results show the sites are fighting back.
package engine

import (
	"context"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/scrape-engine/internal/acquire"
	"github.com/sells-group/scrape-engine/internal/classify"
	"github.com/sells-group/scrape-engine/internal/config"
	"github.com/sells-group/scrape-engine/internal/frontier"
	"github.com/sells-group/scrape-engine/internal/model"
	"github.com/sells-group/scrape-engine/internal/resilience"
	"github.com/sells-group/scrape-engine/internal/store"
)

// Engine runs acquisition pipelines. One Engine may serve many runs; each
// run owns its own frontier and results, so concurrent runs never share
// mutable state.
type Engine struct {
	cfg      *config.Config
	selector *Selector
	table    acquire.Table
	stealth  *acquire.StealthAcquirer
	cache    store.Store

	workers   int
	closeOnce sync.Once
}

// New creates an Engine from configuration. Budget and worker settings are
// validated here so a bad configuration fails before any fetch begins.
func New(cfg *config.Config) (*Engine, error) {
	if cfg.Engine.Workers < 1 {
		return nil, eris.Errorf("engine: workers must be >= 1, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.EscalationThreshold < 0 || cfg.Engine.EscalationThreshold > 1 {
		return nil, eris.Errorf("engine: escalation threshold must be in [0,1], got %f",
			cfg.Engine.EscalationThreshold)
	}
	if err := (frontier.Budget{MaxPages: cfg.Crawl.MaxPages, MaxDepth: cfg.Crawl.MaxDepth}).Validate(); err != nil {
		return nil, err
	}

	limiters := acquire.NewHostLimiters()
	basic := acquire.NewBasicAcquirer(acquire.BasicOptions{
		Timeout:    time.Duration(cfg.Acquire.TimeoutSecs) * time.Second,
		MaxBodyKB:  cfg.Acquire.MaxBodyKB,
		MaxRetries: cfg.Acquire.MaxRetries,
		Limiters:   limiters,
	})
	stealth := acquire.NewStealthAcquirer(acquire.StealthOptions{
		MaxContexts: cfg.Stealth.MaxContexts,
		Limiters:    limiters,
		Breaker:     breakerFromConfig(cfg.Stealth),
	})

	selector := NewSelector(SelectorOptions{
		HardDomains:   cfg.Stealth.HardDomains,
		BasicDelay:    time.Duration(cfg.Acquire.PolitenessDelayMs) * time.Millisecond,
		StealthDelay:  time.Duration(cfg.Stealth.PolitenessDelayMs) * time.Millisecond,
		BasicTimeout:  time.Duration(cfg.Acquire.TimeoutSecs) * time.Second,
		RenderTimeout: time.Duration(cfg.Stealth.RenderTimeoutSecs) * time.Second,
	})

	return &Engine{
		cfg:      cfg,
		selector: selector,
		table:    acquire.NewTable(basic, stealth),
		stealth:  stealth,
		workers:  cfg.Engine.Workers,
	}, nil
}

// WithCache attaches a result cache. Optional.
func (e *Engine) WithCache(st store.Store) *Engine {
	e.cache = st
	return e
}

// Close releases the pooled rendering resources and the cache. Idempotent;
// a failed run never leaves resources behind even if the caller forgets it,
// because every per-page context is scoped to its own acquisition.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.stealth.Close()
		if e.cache != nil {
			err = e.cache.Close()
		}
	})
	return err
}

// Scrape is the boundary entry point: it runs the full
// acquisition/escalation/filter pipeline and returns the filtered list.
// Individual URL failures are entries with Error populated, never a batch
// failure.
func (e *Engine) Scrape(ctx context.Context, urls []string, opts Options) ([]model.ScrapeResult, error) {
	if len(urls) == 0 {
		return nil, eris.New("engine: no urls given")
	}

	if e.cfg.Engine.RunTimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx,
			time.Duration(e.cfg.Engine.RunTimeoutSecs)*time.Second)
		defer cancel()
	}

	urls, cached := e.fromCache(ctx, urls)

	var (
		results []model.ScrapeResult
		err     error
	)
	switch {
	case len(urls) == 0:
		// Everything was cached.
	case opts.Stealth:
		results, err = e.runStealth(ctx, urls, opts)
	default:
		results, err = e.ScrapeWithEscalation(ctx, urls, opts)
	}
	if err != nil {
		return nil, err
	}

	filtered, _ := Filter(results)
	e.toCache(ctx, filtered)

	out := append(cached, filtered...)
	for i := range out {
		out[i].HTML = ""
		if opts.ContentOnly {
			out[i].Title = ""
			out[i].Metadata = model.ResultMetadata{}
		}
	}
	return out, nil
}

// ScrapeBasic is the fast path: one acquisition per URL, no crawling, basic
// mode for everything except known-hard hosts. Results are unfiltered, one
// entry per URL.
func (e *Engine) ScrapeBasic(ctx context.Context, urls []string) ([]model.ScrapeResult, error) {
	if len(urls) == 0 {
		return nil, eris.New("engine: no urls given")
	}
	mode := model.ModeBasic
	return e.run(ctx, urls, Options{},
		frontier.Budget{MaxPages: len(urls), MaxDepth: 0}, &mode)
}

// ScrapeWithEscalation runs a basic pass, measures its quality, and re-runs
// with stealth and crawling only when the blocked fraction crosses the
// threshold or a guiding query demands thorough extraction. When crawling is
// enabled the basic pass already follows links under the crawl budget. For
// URLs acquired in both passes the better result wins.
func (e *Engine) ScrapeWithEscalation(ctx context.Context, urls []string, opts Options) ([]model.ScrapeResult, error) {
	if len(urls) == 0 {
		return nil, eris.New("engine: no urls given")
	}

	basicBudget := frontier.Budget{MaxPages: len(urls), MaxDepth: 0}
	if opts.EnableCrawling {
		basicBudget = frontier.Budget{
			MaxPages: pageBudget(opts.MaxPages, e.cfg.Crawl.MaxPages, len(urls)),
			MaxDepth: e.cfg.Crawl.MaxDepth,
		}
	}
	mode := model.ModeBasic
	basicResults, err := e.run(ctx, urls, opts, basicBudget, &mode)
	if err != nil {
		return nil, err
	}

	blocked, avgLen := passQuality(basicResults)
	blockedFraction := float64(blocked) / float64(len(basicResults))

	zap.L().Info("basic pass complete",
		zap.Int("urls", len(urls)),
		zap.Int("blocked", blocked),
		zap.Float64("blocked_fraction", blockedFraction),
		zap.Int("avg_content_len", avgLen),
	)

	escalate := blockedFraction > e.cfg.Engine.EscalationThreshold || opts.Query != ""
	if !escalate || !e.stealth.Available() {
		if escalate {
			zap.L().Warn("escalation warranted but renderer unavailable, keeping basic results")
		}
		return basicResults, nil
	}

	// Query-guided runs escalate everything; otherwise only the URLs the
	// basic pass could not get through.
	var escalateURLs []string
	if opts.Query != "" {
		escalateURLs = urls
	} else {
		for _, r := range basicResults {
			if r.Metadata.Classification == model.ClassificationBlocked {
				escalateURLs = append(escalateURLs, r.URL)
			}
		}
	}
	if len(escalateURLs) == 0 {
		return basicResults, nil
	}

	// The combined budget across both passes stays within the caller's
	// overall page limit.
	overall := opts.MaxPages
	if overall <= 0 {
		overall = e.cfg.Crawl.EscalatedMaxPages
	}
	remaining := overall - len(basicResults)
	if remaining < 1 {
		zap.L().Info("escalation skipped, page budget exhausted by basic pass",
			zap.Int("overall", overall))
		return basicResults, nil
	}

	stealthOpts := opts
	stealthOpts.Stealth = true
	stealthOpts.EnableCrawling = true

	mode = model.ModeStealth
	escalated, err := e.run(ctx, escalateURLs, stealthOpts,
		frontier.Budget{MaxPages: remaining, MaxDepth: e.cfg.Crawl.MaxDepth}, &mode)
	if err != nil {
		return nil, err
	}

	zap.L().Info("escalated pass complete",
		zap.Int("urls", len(escalateURLs)),
		zap.Int("results", len(escalated)),
	)

	return mergeResults(basicResults, escalated), nil
}

// runStealth executes a caller-forced stealth pass.
func (e *Engine) runStealth(ctx context.Context, urls []string, opts Options) ([]model.ScrapeResult, error) {
	maxPages := pageBudget(opts.MaxPages, e.cfg.Crawl.MaxPages, len(urls))
	maxDepth := 0
	if opts.EnableCrawling {
		maxDepth = e.cfg.Crawl.MaxDepth
	}
	mode := model.ModeStealth
	return e.run(ctx, urls, opts,
		frontier.Budget{MaxPages: maxPages, MaxDepth: maxDepth}, &mode)
}

// sequenced pairs a result with its dequeue order so seeds come back in
// submission order and crawled pages in discovery order.
type sequenced struct {
	seq int
	res model.ScrapeResult
}

// run executes one pass: seeds are enqueued in submission order, workers
// drain the frontier in batches, and discovered links are enqueued under
// the budget when crawling is enabled. forceMode overrides per-URL strategy
// selection when non-nil, except that known-hard hosts are never downgraded
// to basic.
func (e *Engine) run(ctx context.Context, seeds []string, opts Options, budget frontier.Budget, forceMode *model.Mode) ([]model.ScrapeResult, error) {
	fr, err := frontier.New(budget)
	if err != nil {
		return nil, err
	}

	for _, u := range seeds {
		fr.AddSeed(u)
	}

	crawling := opts.EnableCrawling && budget.MaxDepth > 0
	scorer := frontier.QueryScorer(opts.Query)

	var (
		mu  sync.Mutex
		out []sequenced
		seq int
	)

	for {
		if ctx.Err() != nil {
			break
		}
		batch := fr.NextBatch(e.workers)
		if len(batch) == 0 {
			break
		}

		// A fresh errgroup per batch: link discovery between batches feeds
		// the frontier, and the budget check stays inside it.
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)

		for _, task := range batch {
			taskSeq := seq
			seq++
			g.Go(func() error {
				res := e.acquireOne(gCtx, task, opts, forceMode)

				if crawling && res.Metadata.Classification != model.ClassificationBlocked {
					e.discoverLinks(fr, task, res, scorer)
				}

				mu.Lock()
				out = append(out, sequenced{seq: taskSeq, res: res})
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	results := make([]model.ScrapeResult, len(out))
	for i, s := range out {
		results[i] = s.res
	}
	return results, nil
}

// acquireOne fetches and classifies a single task. Failures become sentinel
// results; they never propagate as errors.
func (e *Engine) acquireOne(ctx context.Context, task model.ScrapeTask, opts Options, forceMode *model.Mode) model.ScrapeResult {
	acqCfg := e.selector.Select(task.URL, opts)
	if forceMode != nil {
		mode := *forceMode
		// A pass-wide basic override never downgrades known-hard hosts; a
		// basic fetch against them yields challenge boilerplate, not content.
		if mode == model.ModeBasic && e.selector.isHardDomain(task.URL) {
			mode = model.ModeStealth
		}
		acqCfg = e.selector.Select(task.URL, Options{Stealth: mode == model.ModeStealth})
		acqCfg.Mode = mode
	}

	// Degrade to basic when the renderer's breaker is open rather than
	// failing the task outright.
	if acqCfg.Mode == model.ModeStealth && !e.stealth.Available() {
		acqCfg.Mode = model.ModeBasic
	}

	start := time.Now()
	acq := e.table.For(acqCfg.Mode)
	resPtr, err := acq.Acquire(ctx, task, acqCfg)

	var res model.ScrapeResult
	if err != nil {
		zap.L().Debug("acquisition failed",
			zap.String("url", task.URL),
			zap.String("acquirer", acq.Name()),
			zap.Error(err),
		)
		res = model.ErrorResult(task.URL, acqCfg.Mode, time.Since(start), err)
	} else {
		res = *resPtr
	}

	res.Metadata.Crawled = task.Depth > 0
	res.Metadata.Classification = classify.Classify(res)
	return res
}

// discoverLinks extracts, ranks, and enqueues same-host outbound links.
func (e *Engine) discoverLinks(fr *frontier.Frontier, task model.ScrapeTask, res model.ScrapeResult, scorer frontier.LinkScorer) {
	if res.HTML == "" {
		return
	}
	base, err := url.Parse(task.URL)
	if err != nil {
		return
	}
	links := frontier.SameHost(base, frontier.ExtractLinks(base, res.HTML))
	links = frontier.Rank(links, scorer)
	added := fr.AddLinks(task, links)
	if added > 0 {
		zap.L().Debug("links enqueued",
			zap.String("parent", task.URL),
			zap.Int("discovered", len(links)),
			zap.Int("enqueued", added),
		)
	}
}

// pageBudget resolves a pass's page limit: the caller's cap, else the
// configured fallback, floored at the seed count so every seed is attempted.
func pageBudget(optsMax, fallback, seeds int) int {
	n := optsMax
	if n <= 0 {
		n = fallback
	}
	if n < seeds {
		n = seeds
	}
	return n
}

// breakerFromConfig builds the renderer circuit breaker, falling back to the
// stock thresholds when the config leaves them unset.
func breakerFromConfig(cfg config.StealthConfig) *resilience.Breaker {
	threshold := cfg.BreakerThreshold
	if threshold < 1 {
		threshold = 3
	}
	cooldown := time.Duration(cfg.BreakerCooldownSecs) * time.Second
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return resilience.NewBreaker("stealth_render", threshold, 30*time.Second, cooldown)
}

// passQuality summarizes a pass: blocked count and average content length.
func passQuality(results []model.ScrapeResult) (blocked, avgLen int) {
	if len(results) == 0 {
		return 0, 0
	}
	total := 0
	for _, r := range results {
		if r.Metadata.Classification == model.ClassificationBlocked {
			blocked++
		}
		total += len(r.Content)
	}
	return blocked, total / len(results)
}

// mergeResults combines two passes keeping, per URL, the result with the
// better classification; ties go to the longer content. Escalation only
// upgrades, never regresses. Order follows the basic pass, with
// escalation-only results (crawled pages) appended.
func mergeResults(basic, escalated []model.ScrapeResult) []model.ScrapeResult {
	best := make(map[string]model.ScrapeResult, len(escalated))
	for _, r := range escalated {
		best[r.URL] = r
	}

	out := make([]model.ScrapeResult, 0, len(basic)+len(escalated))
	for _, b := range basic {
		esc, ok := best[b.URL]
		if !ok {
			out = append(out, b)
			continue
		}
		delete(best, b.URL)
		out = append(out, betterOf(b, esc))
	}

	// Escalation-only entries in their original (discovery) order.
	for _, r := range escalated {
		if _, ok := best[r.URL]; ok {
			out = append(out, r)
			delete(best, r.URL)
		}
	}
	return out
}

func betterOf(a, b model.ScrapeResult) model.ScrapeResult {
	ra, rb := a.Metadata.Classification.Rank(), b.Metadata.Classification.Rank()
	if rb > ra {
		return b
	}
	if rb == ra && len(b.Content) > len(a.Content) {
		return b
	}
	return a
}

// fromCache splits urls into cache hits and the remainder to fetch.
func (e *Engine) fromCache(ctx context.Context, urls []string) (toFetch []string, cached []model.ScrapeResult) {
	if e.cache == nil {
		return urls, nil
	}
	for _, u := range urls {
		res, err := e.cache.Get(ctx, u)
		if err != nil {
			zap.L().Warn("cache lookup failed", zap.String("url", u), zap.Error(err))
		}
		if res != nil {
			cached = append(cached, *res)
			continue
		}
		toFetch = append(toFetch, u)
	}
	if len(cached) > 0 {
		zap.L().Info("cache hits", zap.Int("hits", len(cached)), zap.Int("misses", len(toFetch)))
	}
	return toFetch, cached
}

// toCache stores filtered results.
func (e *Engine) toCache(ctx context.Context, results []model.ScrapeResult) {
	if e.cache == nil {
		return
	}
	ttl := time.Duration(e.cfg.Cache.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	for _, r := range results {
		r.HTML = ""
		if err := e.cache.Set(ctx, r, ttl); err != nil {
			zap.L().Warn("cache write failed", zap.String("url", r.URL), zap.Error(err))
		}
	}
}
