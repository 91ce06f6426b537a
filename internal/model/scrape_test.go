package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassificationRank(t *testing.T) {
	assert.Greater(t, ClassificationClean.Rank(), ClassificationPartial.Rank())
	assert.Greater(t, ClassificationPartial.Rank(), ClassificationBlocked.Rank())
	assert.Equal(t, 0, Classification("bogus").Rank())
}

func TestErrorResult(t *testing.T) {
	res := ErrorResult("https://a.com/", ModeStealth, 1500*time.Millisecond, errors.New("timeout: render deadline"))

	assert.Equal(t, "https://a.com/", res.URL)
	assert.Equal(t, ErrorTitle, res.Title)
	assert.Equal(t, "timeout: render deadline", res.Error)
	assert.Empty(t, res.Content)
	assert.Equal(t, ModeStealth, res.Metadata.Mode)
	assert.Equal(t, int64(1500), res.Metadata.ElapsedMs)
}

func TestErrorResult_NilError(t *testing.T) {
	res := ErrorResult("https://a.com/", ModeBasic, 0, nil)
	assert.Equal(t, ErrorTitle, res.Title)
	assert.Empty(t, res.Error)
}
