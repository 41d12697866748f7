package extract

import (
	"strings"
)

// BlockSignal is one reason a fetched page was classified as a bot
// wall rather than post content.
type BlockSignal struct {
	Name   string
	Weight float64
}

// blockSignals are phrases and markers that show up on captcha pages,
// login interstitials, and rate-limit responses but never on a real
// post page. Weights reflect how unambiguous each marker is.
var blockSignals = []struct {
	marker string
	signal BlockSignal
}{
	{"verify to continue", BlockSignal{Name: "captcha-prompt", Weight: 4}},
	{"captcha-verify", BlockSignal{Name: "captcha-container", Weight: 4}},
	{"security check", BlockSignal{Name: "security-check", Weight: 3}},
	{"slide to verify", BlockSignal{Name: "slider-captcha", Weight: 4}},
	{"log in to continue", BlockSignal{Name: "login-wall", Weight: 3}},
	{"too many requests", BlockSignal{Name: "rate-limited", Weight: 4}},
	{"access denied", BlockSignal{Name: "access-denied", Weight: 3}},
	{"unusual traffic", BlockSignal{Name: "traffic-check", Weight: 3}},
	{"cf-challenge", BlockSignal{Name: "cloudflare-challenge", Weight: 4}},
	{"enable javascript and cookies", BlockSignal{Name: "js-challenge", Weight: 2}},
}

// blockThreshold is the accumulated signal weight at which a page is
// treated as blocked. Two weak signals or one strong one is enough.
const blockThreshold = 3.0

// DetectBlockwall scores a fetched page body for bot-wall markers and
// returns the matched signals when the score crosses the threshold.
// Tiny bodies are suspicious on their own: a real post page is never a
// few hundred bytes.
func DetectBlockwall(body string) (bool, []BlockSignal) {
	lower := strings.ToLower(body)

	var score float64
	var matched []BlockSignal
	for _, s := range blockSignals {
		if strings.Contains(lower, s.marker) {
			score += s.signal.Weight
			matched = append(matched, s.signal)
		}
	}

	if len(body) < 512 && len(body) > 0 {
		score += 2
		matched = append(matched, BlockSignal{Name: "tiny-body", Weight: 2})
	}

	return score >= blockThreshold, matched
}
