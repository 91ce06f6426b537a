// Package classify labels acquisition outcomes as clean, partially blocked,
// or blocked based on content-level bot-detection markers.
package classify

import (
	"strings"

	"github.com/sells-group/scrape-engine/internal/model"
)

const (
	// minUsableLength is the content length below which a page carries no
	// meaningful text at all.
	minUsableLength = 50
	// challengeLength is the content length below which a challenge phrase
	// means the page is only the challenge interstitial.
	challengeLength = 200
)

// challengePhrases are markers emitted by bot-protection interstitials.
var challengePhrases = []string{
	"just a moment",
	"verify you are human",
	"please wait while we are checking",
	"checking your browser",
	"access denied",
	"attention required",
	"enable javascript and cookies",
	"please enable cookies",
}

// protectionVendors are vendor names whose presence suggests a protection
// banner even when real content was extracted around it.
var protectionVendors = []string{
	"cloudflare",
	"recaptcha",
	"hcaptcha",
	"captcha",
	"perimeterx",
	"datadome",
}

// Classify labels a result. It is a pure function of the result's fields:
// identical inputs always produce identical classifications.
//
// Rules are evaluated in order: the acquisition-failure sentinel and
// too-short content are Blocked; short content carrying a challenge phrase
// is Blocked; substantial content carrying a marker is PartiallyBlocked;
// everything else is Clean.
func Classify(res model.ScrapeResult) model.Classification {
	if res.Title == model.ErrorTitle {
		return model.ClassificationBlocked
	}

	content := strings.TrimSpace(res.Content)
	if len(content) < minUsableLength {
		return model.ClassificationBlocked
	}

	lower := strings.ToLower(content)
	title := strings.ToLower(res.Title)

	if len(content) < challengeLength && hasChallengeMarker(lower, title) {
		return model.ClassificationBlocked
	}

	if hasChallengeMarker(lower, title) {
		return model.ClassificationPartial
	}

	return model.ClassificationClean
}

// hasChallengeMarker reports whether content or title contains a challenge
// phrase or a protection-vendor mention.
func hasChallengeMarker(content, title string) bool {
	for _, p := range challengePhrases {
		if strings.Contains(content, p) || strings.Contains(title, p) {
			return true
		}
	}
	for _, v := range protectionVendors {
		if strings.Contains(content, v) || strings.Contains(title, v) {
			return true
		}
	}
	return false
}
