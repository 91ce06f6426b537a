package model

import "time"

// Mode selects how a page is acquired.
type Mode string

const (
	// ModeBasic is a plain HTTP GET with HTML-to-text extraction.
	ModeBasic Mode = "basic"
	// ModeStealth renders the page in a headless browser with interaction
	// simulation and user-agent rotation.
	ModeStealth Mode = "stealth"
)

// Classification labels the outcome of an acquisition.
type Classification string

const (
	ClassificationClean Classification = "clean"
	// ClassificationPartial marks pages with bot-protection markers but
	// enough extracted text to be usable.
	ClassificationPartial Classification = "partially_blocked"
	ClassificationBlocked Classification = "blocked"
)

// Rank orders classifications from worst to best, for merging results
// across escalation passes.
func (c Classification) Rank() int {
	switch c {
	case ClassificationClean:
		return 2
	case ClassificationPartial:
		return 1
	default:
		return 0
	}
}

// ErrorTitle is the sentinel title on results produced from a failed
// acquisition.
const ErrorTitle = "Error"

// ScrapeTask is one unit of acquisition work. Tasks are created for seeds
// and for links discovered during crawling, and are consumed exactly once.
type ScrapeTask struct {
	URL       string  `json:"url"`
	Depth     int     `json:"depth"`
	ParentURL string  `json:"parent_url,omitempty"`
	Priority  float64 `json:"priority,omitempty"`
}

// AcquisitionConfig is the per-task fetch configuration, derived once by the
// strategy selector and immutable thereafter.
type AcquisitionConfig struct {
	Mode                  Mode          `json:"mode"`
	PolitenessDelay       time.Duration `json:"politeness_delay"`
	RenderTimeout         time.Duration `json:"render_timeout"`
	ScrollToLazyLoad      bool          `json:"scroll_to_lazy_load"`
	WaitForDynamicContent bool          `json:"wait_for_dynamic_content"`
	UserAgentPool         bool          `json:"user_agent_pool"`
}

// ResultMetadata records how a result was produced.
type ResultMetadata struct {
	Crawled        bool           `json:"crawled"`
	Mode           Mode           `json:"mode"`
	ElapsedMs      int64          `json:"elapsed_ms"`
	Classification Classification `json:"classification,omitempty"`
}

// ScrapeResult is the extracted content for one URL. Immutable once
// classified.
type ScrapeResult struct {
	URL       string         `json:"url"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	RawLength int            `json:"raw_length"`
	Error     string         `json:"error,omitempty"`
	Metadata  ResultMetadata `json:"metadata"`

	// HTML carries the raw markup through the pipeline for link extraction.
	// Never serialized; cleared before results leave the engine.
	HTML string `json:"-"`
}

// ErrorResult builds the sentinel result for a failed acquisition.
func ErrorResult(url string, mode Mode, elapsed time.Duration, err error) ScrapeResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return ScrapeResult{
		URL:   url,
		Title: ErrorTitle,
		Error: msg,
		Metadata: ResultMetadata{
			Mode:      mode,
			ElapsedMs: elapsed.Milliseconds(),
		},
	}
}
