package frontier

import (
	"net/url"
	"sort"
	"strings"
)

// LinkScorer assigns a relevance score to a link candidate. Higher scores
// are enqueued first. The scoring heuristic is deliberately swappable.
type LinkScorer func(l Link) float64

// QueryScorer scores links by occurrences of query terms in the anchor text
// (weight 2) and the URL path (weight 1). An empty query scores everything
// zero, preserving discovery order.
func QueryScorer(query string) LinkScorer {
	terms := strings.Fields(strings.ToLower(query))
	return func(l Link) float64 {
		if len(terms) == 0 {
			return 0
		}
		anchor := strings.ToLower(l.Anchor)
		path := ""
		if u, err := url.Parse(l.URL); err == nil {
			path = strings.ToLower(u.Path)
		}

		var score float64
		for _, t := range terms {
			score += 2 * float64(strings.Count(anchor, t))
			score += float64(strings.Count(path, t))
		}
		return score
	}
}

// Rank scores and stably sorts links by descending score, keeping discovery
// order among ties.
func Rank(links []Link, scorer LinkScorer) []Link {
	if scorer == nil {
		return links
	}
	for i := range links {
		links[i].Score = scorer(links[i])
	}
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Score > links[j].Score
	})
	return links
}
