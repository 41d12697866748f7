package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/clipmetrics/models"
	"github.com/go-resty/resty/v2"
)

// WebExtractor fetches the desktop post page and reads the metrics out
// of the hydration JSON the page embeds for its own renderer. When the
// JSON island is missing (markup changes, partial responses) it falls
// back to the visible counter elements.
type WebExtractor struct {
	client *resty.Client
	sink   RawSink
}

func NewWebExtractor(sink RawSink) *WebExtractor {
	client := resty.New().
		SetHeader("User-Agent", desktopUserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	return &WebExtractor{client: client, sink: sink}
}

func (e *WebExtractor) Method() models.Method { return models.MethodWeb }

func (e *WebExtractor) Extract(ctx context.Context, target string) (models.PostMetrics, error) {
	var metrics models.PostMetrics

	resp, err := e.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return metrics, fmt.Errorf("page fetch failed: %w", err)
	}
	if e.sink != nil {
		e.sink.Dump(target, "web", resp.Body())
	}
	if resp.StatusCode() != 200 {
		return metrics, fmt.Errorf("page returned status %d", resp.StatusCode())
	}

	body := string(resp.Body())
	if blocked, signals := DetectBlockwall(body); blocked {
		return metrics, fmt.Errorf("%w: %s", ErrBlocked, signalNames(signals))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return metrics, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return MetricsFromDocument(doc)
}

func signalNames(signals []BlockSignal) string {
	names := make([]string, len(signals))
	for i, s := range signals {
		names[i] = s.Name
	}
	return strings.Join(names, ",")
}

// hydration state script ids, newest first
var stateScriptIDs = []string{
	"__UNIVERSAL_DATA_FOR_REHYDRATION__",
	"SIGI_STATE",
}

// MetricsFromDocument extracts post metrics from a parsed post page.
// Shared by the desktop and mobile extractors, whose markup differs but
// whose hydration payloads carry the same item structure.
func MetricsFromDocument(doc *goquery.Document) (models.PostMetrics, error) {
	for _, id := range stateScriptIDs {
		raw := doc.Find("script#" + id).First().Text()
		if raw == "" {
			continue
		}
		metrics, err := metricsFromState(raw)
		if err == nil {
			metrics.ComputeEngagementRate()
			return metrics, nil
		}
	}

	// Selector fallback: visible counters next to the action buttons.
	metrics, err := metricsFromSelectors(doc)
	if err != nil {
		return metrics, err
	}
	metrics.ComputeEngagementRate()
	return metrics, nil
}

// itemStats mirrors the stats object inside the hydration payload.
type itemStats struct {
	DiggCount    int64 `json:"diggCount"`
	ShareCount   int64 `json:"shareCount"`
	CommentCount int64 `json:"commentCount"`
	PlayCount    int64 `json:"playCount"`
	CollectCount int64 `json:"collectCount"`
}

type stateItem struct {
	Desc   string     `json:"desc"`
	Author flexAuthor `json:"author"`
	Stats  itemStats  `json:"stats"`
}

// flexAuthor tolerates both payload generations: the older one stores
// the author as a plain handle string, the newer one as an object.
type flexAuthor string

func (a *flexAuthor) UnmarshalJSON(data []byte) error {
	var handle string
	if err := json.Unmarshal(data, &handle); err == nil {
		*a = flexAuthor(handle)
		return nil
	}
	var obj struct {
		UniqueID string `json:"uniqueId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*a = flexAuthor(obj.UniqueID)
	return nil
}

// metricsFromState digs the first item out of the hydration JSON. The
// payload shape differs between script generations, so both the
// ItemModule map and the newer webapp.video-detail path are tried.
func metricsFromState(raw string) (models.PostMetrics, error) {
	var metrics models.PostMetrics

	var sigi struct {
		ItemModule map[string]stateItem `json:"ItemModule"`
	}
	if err := json.Unmarshal([]byte(raw), &sigi); err == nil && len(sigi.ItemModule) > 0 {
		for _, item := range sigi.ItemModule {
			return itemToMetrics(item), nil
		}
	}

	var universal struct {
		DefaultScope struct {
			VideoDetail struct {
				ItemInfo struct {
					ItemStruct stateItem `json:"itemStruct"`
				} `json:"itemInfo"`
			} `json:"webapp.video-detail"`
		} `json:"__DEFAULT_SCOPE__"`
	}
	if err := json.Unmarshal([]byte(raw), &universal); err == nil {
		item := universal.DefaultScope.VideoDetail.ItemInfo.ItemStruct
		if item.Stats.PlayCount > 0 || item.Desc != "" {
			return itemToMetrics(item), nil
		}
	}

	return metrics, ErrNoMetrics
}

func itemToMetrics(item stateItem) models.PostMetrics {
	return models.PostMetrics{
		Views:     item.Stats.PlayCount,
		Likes:     item.Stats.DiggCount,
		Comments:  item.Stats.CommentCount,
		Shares:    item.Stats.ShareCount,
		Bookmarks: item.Stats.CollectCount,
		Caption:   item.Desc,
		Author:    string(item.Author),
	}
}

// counterSelectors map visible counter elements to metric fields.
var counterSelectors = map[string]string{
	"like-count":      "likes",
	"comment-count":   "comments",
	"share-count":     "shares",
	"undefined-count": "bookmarks",
}

func metricsFromSelectors(doc *goquery.Document) (models.PostMetrics, error) {
	var metrics models.PostMetrics
	found := false

	for attr, field := range counterSelectors {
		text := doc.Find(fmt.Sprintf("[data-e2e=%q]", attr)).First().Text()
		if text == "" {
			continue
		}
		n, err := parseCount(text)
		if err != nil {
			continue
		}
		found = true
		switch field {
		case "likes":
			metrics.Likes = n
		case "comments":
			metrics.Comments = n
		case "shares":
			metrics.Shares = n
		case "bookmarks":
			metrics.Bookmarks = n
		}
	}

	if desc := doc.Find("[data-e2e=\"browse-video-desc\"]").First().Text(); desc != "" {
		metrics.Caption = strings.TrimSpace(desc)
		found = true
	}
	if author := doc.Find("[data-e2e=\"browse-username\"]").First().Text(); author != "" {
		metrics.Author = strings.TrimSpace(author)
	}

	if !found {
		return metrics, ErrNoMetrics
	}
	return metrics, nil
}
