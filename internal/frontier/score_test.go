package frontier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryScorer_AnchorOutweighsPath(t *testing.T) {
	scorer := QueryScorer("pricing")

	anchorHit := scorer(Link{URL: "https://acme.com/x", Anchor: "See pricing"})
	pathHit := scorer(Link{URL: "https://acme.com/pricing", Anchor: "Plans"})
	miss := scorer(Link{URL: "https://acme.com/blog", Anchor: "News"})

	assert.Greater(t, anchorHit, pathHit)
	assert.Greater(t, pathHit, miss)
	assert.Equal(t, 0.0, miss)
}

func TestQueryScorer_EmptyQuery(t *testing.T) {
	scorer := QueryScorer("")
	assert.Equal(t, 0.0, scorer(Link{URL: "https://acme.com/pricing", Anchor: "pricing"}))
}

func TestQueryScorer_MultiTerm(t *testing.T) {
	scorer := QueryScorer("enterprise pricing")
	both := scorer(Link{URL: "https://acme.com/enterprise", Anchor: "Enterprise pricing"})
	one := scorer(Link{URL: "https://acme.com/x", Anchor: "pricing"})
	assert.Greater(t, both, one)
}

func TestRank_StableOnTies(t *testing.T) {
	links := []Link{
		{URL: "https://acme.com/a", Anchor: "first"},
		{URL: "https://acme.com/b", Anchor: "second"},
		{URL: "https://acme.com/c", Anchor: "pricing"},
	}

	ranked := Rank(links, QueryScorer("pricing"))
	require.Len(t, ranked, 3)
	assert.Equal(t, "https://acme.com/c", ranked[0].URL)
	// Zero-score ties keep discovery order.
	assert.Equal(t, "https://acme.com/a", ranked[1].URL)
	assert.Equal(t, "https://acme.com/b", ranked[2].URL)
}

func TestRank_NilScorerKeepsOrder(t *testing.T) {
	links := []Link{{URL: "b"}, {URL: "a"}}
	ranked := Rank(links, nil)
	assert.Equal(t, "b", ranked[0].URL)
}
