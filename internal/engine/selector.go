package engine

import (
	"net/url"
	"strings"
	"time"

	"github.com/sells-group/scrape-engine/internal/model"
)

// Selector derives the per-URL acquisition configuration from static hints.
// Pure decision logic, no side effects.
type Selector struct {
	hardDomains   []string
	basicDelay    time.Duration
	stealthDelay  time.Duration
	basicTimeout  time.Duration
	renderTimeout time.Duration
}

// SelectorOptions configures a Selector.
type SelectorOptions struct {
	HardDomains   []string
	BasicDelay    time.Duration
	StealthDelay  time.Duration
	BasicTimeout  time.Duration
	RenderTimeout time.Duration
}

// NewSelector creates a Selector.
func NewSelector(opts SelectorOptions) *Selector {
	if opts.BasicDelay <= 0 {
		opts.BasicDelay = 250 * time.Millisecond
	}
	if opts.StealthDelay <= 0 {
		opts.StealthDelay = time.Second
	}
	if opts.BasicTimeout <= 0 {
		opts.BasicTimeout = 15 * time.Second
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = 30 * time.Second
	}
	return &Selector{
		hardDomains:   opts.HardDomains,
		basicDelay:    opts.BasicDelay,
		stealthDelay:  opts.StealthDelay,
		basicTimeout:  opts.BasicTimeout,
		renderTimeout: opts.RenderTimeout,
	}
}

// Select decides the acquisition mode for a URL. Stealth is selected when
// the caller asked for it, the host is on the known-hard list, or a guiding
// query was supplied. Interaction flags are enabled only under stealth;
// they add latency a basic fetch can't justify.
func (s *Selector) Select(rawURL string, opts Options) model.AcquisitionConfig {
	if opts.Stealth || opts.Query != "" || s.isHardDomain(rawURL) {
		return model.AcquisitionConfig{
			Mode:                  model.ModeStealth,
			PolitenessDelay:       s.stealthDelay,
			RenderTimeout:         s.renderTimeout,
			ScrollToLazyLoad:      true,
			WaitForDynamicContent: true,
			UserAgentPool:         true,
		}
	}
	return model.AcquisitionConfig{
		Mode:            model.ModeBasic,
		PolitenessDelay: s.basicDelay,
		RenderTimeout:   s.basicTimeout,
	}
}

// isHardDomain checks the host (and its parent domains) against the
// known-hard list.
func (s *Selector) isHardDomain(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range s.hardDomains {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
