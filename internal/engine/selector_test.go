package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/scrape-engine/internal/model"
)

func testSelector() *Selector {
	return NewSelector(SelectorOptions{
		HardDomains: []string{"linkedin.com", "glassdoor.com"},
	})
}

func TestSelector_DefaultBasic(t *testing.T) {
	cfg := testSelector().Select("https://acme.com/about", Options{})
	assert.Equal(t, model.ModeBasic, cfg.Mode)
	assert.False(t, cfg.ScrollToLazyLoad)
	assert.False(t, cfg.WaitForDynamicContent)
	assert.False(t, cfg.UserAgentPool)
}

func TestSelector_ExplicitStealth(t *testing.T) {
	cfg := testSelector().Select("https://acme.com/", Options{Stealth: true})
	assert.Equal(t, model.ModeStealth, cfg.Mode)
	assert.True(t, cfg.ScrollToLazyLoad)
	assert.True(t, cfg.WaitForDynamicContent)
	assert.True(t, cfg.UserAgentPool)
}

func TestSelector_HardDomain(t *testing.T) {
	s := testSelector()

	assert.Equal(t, model.ModeStealth, s.Select("https://linkedin.com/company/acme", Options{}).Mode)
	assert.Equal(t, model.ModeStealth, s.Select("https://www.linkedin.com/company/acme", Options{}).Mode)
	// Suffix match on the registered domain only, not on lookalikes.
	assert.Equal(t, model.ModeBasic, s.Select("https://notlinkedin.com/", Options{}).Mode)
}

func TestSelector_QueryImpliesStealth(t *testing.T) {
	cfg := testSelector().Select("https://acme.com/", Options{Query: "pricing"})
	assert.Equal(t, model.ModeStealth, cfg.Mode)
}

func TestSelector_StealthDelayLarger(t *testing.T) {
	s := testSelector()
	basic := s.Select("https://acme.com/", Options{})
	stealth := s.Select("https://acme.com/", Options{Stealth: true})
	assert.Greater(t, stealth.PolitenessDelay, basic.PolitenessDelay)
}
