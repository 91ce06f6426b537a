package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testBreaker() (*Breaker, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker("test", 3, 30*time.Second, time.Minute)
	b.nowFunc = func() time.Time { return now }
	return b, &now
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	b, _ := testBreaker()

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_ClosesAfterCooldown(t *testing.T) {
	b, now := testBreaker()

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	assert.True(t, b.IsOpen())

	*now = now.Add(61 * time.Second)
	assert.False(t, b.IsOpen())
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b, _ := testBreaker()

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}

func TestBreaker_StaleFailuresExpire(t *testing.T) {
	b, now := testBreaker()

	b.RecordFailure()
	b.RecordFailure()

	// Outside the window the streak restarts at one.
	*now = now.Add(31 * time.Second)
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}
