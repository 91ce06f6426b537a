package engine

import (
	"go.uber.org/zap"

	"github.com/sells-group/scrape-engine/internal/model"
)

// FilterStats counts kept vs. dropped entries for observability.
type FilterStats struct {
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

// Filter drops Blocked entries from the visible output while keeping Clean
// and PartiallyBlocked ones, so substantial content survives a surface
// bot-detection banner. Dropped entries are logged with their error and
// classification for diagnostics.
func Filter(results []model.ScrapeResult) ([]model.ScrapeResult, FilterStats) {
	kept := make([]model.ScrapeResult, 0, len(results))
	var stats FilterStats

	for _, r := range results {
		if r.Metadata.Classification == model.ClassificationBlocked {
			stats.Dropped++
			zap.L().Debug("filtered blocked result",
				zap.String("url", r.URL),
				zap.String("classification", string(r.Metadata.Classification)),
				zap.String("error", r.Error),
			)
			continue
		}
		stats.Kept++
		kept = append(kept, r)
	}

	zap.L().Info("result filter",
		zap.Int("kept", stats.Kept),
		zap.Int("dropped", stats.Dropped),
	)
	return kept, stats
}
