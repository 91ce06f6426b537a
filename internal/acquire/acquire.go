// Package acquire fetches single pages under an acquisition configuration,
// either by plain HTTP or by headless rendering.
package acquire

import (
	"context"

	"github.com/sells-group/scrape-engine/internal/model"
)

// Acquirer fetches one URL and returns its extracted content. Implementations
// own the lifecycle of any per-call resources (connections, browser
// contexts) and must release them on every exit path.
type Acquirer interface {
	Acquire(ctx context.Context, task model.ScrapeTask, cfg model.AcquisitionConfig) (*model.ScrapeResult, error)
	Name() string
}

// Table dispatches to an Acquirer by acquisition mode.
type Table map[model.Mode]Acquirer

// NewTable builds the mode dispatch table.
func NewTable(basic, stealth Acquirer) Table {
	return Table{
		model.ModeBasic:   basic,
		model.ModeStealth: stealth,
	}
}

// For returns the acquirer for a mode, falling back to basic for unknown
// modes.
func (t Table) For(mode model.Mode) Acquirer {
	if a, ok := t[mode]; ok && a != nil {
		return a
	}
	return t[model.ModeBasic]
}
