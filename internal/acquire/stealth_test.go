package acquire

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scrape-engine/internal/model"
	"github.com/sells-group/scrape-engine/internal/resilience"
)

func TestStealthAcquirer_UsesProvidedBreaker(t *testing.T) {
	br := resilience.NewBreaker("render", 1, 30*time.Second, time.Minute)
	s := NewStealthAcquirer(StealthOptions{Breaker: br})
	defer s.Close()

	assert.True(t, s.Available())
	br.RecordFailure()
	assert.False(t, s.Available())

	_, err := s.Acquire(context.Background(),
		model.ScrapeTask{URL: "https://a.com/"}, model.AcquisitionConfig{})
	assert.Error(t, err)
}

func TestStealthAcquirer_PolitenessChargedBeforeSlotWait(t *testing.T) {
	s := NewStealthAcquirer(StealthOptions{MaxContexts: 1})
	defer s.Close()

	// Occupy the only render slot so the acquisition blocks after its
	// politeness wait.
	s.sem <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := s.Acquire(ctx, model.ScrapeTask{URL: "https://a.com/"},
		model.AcquisitionConfig{PolitenessDelay: 400 * time.Millisecond})
	require.Error(t, err)

	// The host limiter took its token before the slot wait, so the next
	// request to the host still spaces out.
	start := time.Now()
	require.NoError(t, s.limiters.Wait(context.Background(), "https://a.com/", 400*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}
