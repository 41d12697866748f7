package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/clipmetrics/models"
	"github.com/go-resty/resty/v2"
	readability "github.com/go-shiori/go-readability"
)

// MobileExtractor fetches the post page with a mobile user agent. The
// mobile rendition is served from a different frontend that blocks less
// aggressively, at the price of a sparser hydration payload; when even
// that payload is missing, readability extraction salvages at least the
// caption text so the attempt is not a total loss.
type MobileExtractor struct {
	client *resty.Client
	sink   RawSink
}

func NewMobileExtractor(sink RawSink) *MobileExtractor {
	client := resty.New().
		SetHeader("User-Agent", mobileUserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	return &MobileExtractor{client: client, sink: sink}
}

func (e *MobileExtractor) Method() models.Method { return models.MethodMobile }

func (e *MobileExtractor) Extract(ctx context.Context, target string) (models.PostMetrics, error) {
	var metrics models.PostMetrics

	resp, err := e.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return metrics, fmt.Errorf("mobile page fetch failed: %w", err)
	}
	if e.sink != nil {
		e.sink.Dump(target, "mobile", resp.Body())
	}
	if resp.StatusCode() != 200 {
		return metrics, fmt.Errorf("mobile page returned status %d", resp.StatusCode())
	}

	body := string(resp.Body())
	if blocked, signals := DetectBlockwall(body); blocked {
		return metrics, fmt.Errorf("%w: %s", ErrBlocked, signalNames(signals))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return metrics, fmt.Errorf("failed to parse HTML: %w", err)
	}

	metrics, err = MetricsFromDocument(doc)
	if err == nil {
		return metrics, nil
	}

	// No structured metrics in the mobile markup. Salvage the caption
	// through readability so the snapshot still records something.
	parsedURL, urlErr := url.Parse(target)
	if urlErr != nil {
		return metrics, err
	}
	article, rErr := readability.FromReader(strings.NewReader(body), parsedURL)
	if rErr != nil || strings.TrimSpace(article.TextContent) == "" {
		return metrics, err
	}

	metrics.Caption = firstLine(article.TextContent)
	metrics.Author = article.Byline
	return metrics, nil
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	const maxCaption = 300
	if len(text) > maxCaption {
		text = text[:maxCaption]
	}
	return strings.TrimSpace(text)
}
