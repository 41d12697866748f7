// Package extract implements the pluggable extraction methods the
// dispatcher routes between. Each method fetches post metrics its own
// way (oEmbed endpoint, desktop page, mobile page, hosted API) and the
// dispatcher only sees the shared Extractor interface plus the
// success/failure outcome.
package extract

import (
	"context"
	"errors"

	"github.com/dtnitsch/clipmetrics/models"
)

// Extractor is one extraction strategy. Extract must respect the
// context deadline; the dispatcher sets a per-method timeout on it.
type Extractor interface {
	Method() models.Method
	Extract(ctx context.Context, target string) (models.PostMetrics, error)
}

// ErrBlocked indicates the page responded but served a bot wall or
// login interstitial instead of post content.
var ErrBlocked = errors.New("blocked by bot wall")

// ErrNoMetrics indicates the page was fetched and parsed but no post
// metrics could be located in it.
var ErrNoMetrics = errors.New("no metrics found in response")

const (
	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	mobileUserAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

// RawSink receives raw response bodies for offline debugging. Wired to
// the artifact dump when --dump-raw is set; nil otherwise.
type RawSink interface {
	Dump(target, label string, body []byte)
}

// All constructs every extractor from configuration. The returned map
// feeds the executor's method table.
func All(config *models.Config, sink RawSink) map[models.Method]Extractor {
	return map[models.Method]Extractor{
		models.MethodEmbed:  NewEmbedExtractor(sink),
		models.MethodWeb:    NewWebExtractor(sink),
		models.MethodMobile: NewMobileExtractor(sink),
		models.MethodAPI:    NewAPIExtractor(config.APIEndpoint, config.APIToken, sink),
	}
}
