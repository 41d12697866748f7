package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const sigiStatePage = `<!DOCTYPE html>
<html><head><title>post</title></head><body>
<script id="SIGI_STATE" type="application/json">
{"ItemModule":{"7301234":{"desc":"morning routine #fyp","author":"sofia.daily","stats":{"diggCount":15400,"shareCount":230,"commentCount":412,"playCount":187000,"collectCount":890}}}}
</script>
</body></html>`

const universalDataPage = `<!DOCTYPE html>
<html><body>
<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">
{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"itemInfo":{"itemStruct":{"desc":"gym day","author":{"uniqueId":"miriam.fit"},"stats":{"diggCount":200,"shareCount":10,"commentCount":35,"playCount":9000,"collectCount":12}}}}}}
</script>
</body></html>`

const selectorOnlyPage = `<!DOCTYPE html>
<html><body>
<strong data-e2e="like-count">1.2M</strong>
<strong data-e2e="comment-count">3,543</strong>
<strong data-e2e="share-count">12K</strong>
<strong data-e2e="undefined-count">987</strong>
<div data-e2e="browse-video-desc"> get ready with me </div>
<span data-e2e="browse-username">sofia.daily</span>
</body></html>`

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestMetricsFromSigiState(t *testing.T) {
	metrics, err := MetricsFromDocument(docFromString(t, sigiStatePage))
	require.NoError(t, err)

	require.Equal(t, int64(187000), metrics.Views)
	require.Equal(t, int64(15400), metrics.Likes)
	require.Equal(t, int64(412), metrics.Comments)
	require.Equal(t, int64(230), metrics.Shares)
	require.Equal(t, int64(890), metrics.Bookmarks)
	require.Equal(t, "morning routine #fyp", metrics.Caption)
	require.Equal(t, "sofia.daily", metrics.Author)
	require.Greater(t, metrics.EngagementRate, 0.0)
}

func TestMetricsFromUniversalData(t *testing.T) {
	metrics, err := MetricsFromDocument(docFromString(t, universalDataPage))
	require.NoError(t, err)

	require.Equal(t, int64(9000), metrics.Views)
	require.Equal(t, int64(200), metrics.Likes)
	require.Equal(t, "gym day", metrics.Caption)
	require.Equal(t, "miriam.fit", metrics.Author)
}

func TestMetricsFromSelectorFallback(t *testing.T) {
	metrics, err := MetricsFromDocument(docFromString(t, selectorOnlyPage))
	require.NoError(t, err)

	require.Equal(t, int64(1200000), metrics.Likes)
	require.Equal(t, int64(3543), metrics.Comments)
	require.Equal(t, int64(12000), metrics.Shares)
	require.Equal(t, int64(987), metrics.Bookmarks)
	require.Equal(t, "get ready with me", metrics.Caption)
	require.Equal(t, "sofia.daily", metrics.Author)
}

func TestMetricsFromEmptyPage(t *testing.T) {
	_, err := MetricsFromDocument(docFromString(t, "<html><body><p>nothing here</p></body></html>"))
	require.ErrorIs(t, err, ErrNoMetrics)
}

func TestAuthorHandlePrefersURL(t *testing.T) {
	require.Equal(t, "@sofia.daily", authorHandle("Sofia", "https://www.tiktok.com/@sofia.daily"))
	require.Equal(t, "Sofia", authorHandle("Sofia", ""))
	require.Equal(t, "Sofia", authorHandle("Sofia", "https://www.tiktok.com/"))
}
