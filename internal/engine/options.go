package engine

// Options are the per-run knobs exposed at the service boundary.
type Options struct {
	// Stealth forces headless rendering for every URL; without it the run
	// starts basic and escalates only when warranted.
	Stealth bool `json:"stealth,omitempty"`
	// MaxPages caps total pages across all passes of the run. Zero uses the
	// configured default.
	MaxPages int `json:"max_pages,omitempty"`
	// ContentOnly strips titles and metadata from returned entries.
	ContentOnly bool `json:"content_only,omitempty"`
	// EnableCrawling follows in-page links under the crawl budget.
	EnableCrawling bool `json:"enable_crawling,omitempty"`
	// Query guides link prioritization and implies thorough extraction.
	Query string `json:"query,omitempty"`
}
