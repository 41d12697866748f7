package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/go-resty/resty/v2"
)

const oembedEndpoint = "https://www.tiktok.com/oembed"

// EmbedExtractor queries the platform's public oEmbed endpoint. It is
// the cheapest and fastest method but the endpoint only exposes the
// caption and author, so engagement counters come back zero.
type EmbedExtractor struct {
	client *resty.Client
	sink   RawSink
}

func NewEmbedExtractor(sink RawSink) *EmbedExtractor {
	client := resty.New().
		SetHeader("User-Agent", desktopUserAgent).
		SetHeader("Accept", "application/json")
	return &EmbedExtractor{client: client, sink: sink}
}

func (e *EmbedExtractor) Method() models.Method { return models.MethodEmbed }

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (e *EmbedExtractor) Extract(ctx context.Context, target string) (models.PostMetrics, error) {
	var metrics models.PostMetrics

	resp, err := e.client.R().
		SetContext(ctx).
		SetQueryParam("url", target).
		Get(oembedEndpoint)
	if err != nil {
		return metrics, fmt.Errorf("oembed request failed: %w", err)
	}
	if e.sink != nil {
		e.sink.Dump(target, "embed", resp.Body())
	}
	if resp.StatusCode() != 200 {
		return metrics, fmt.Errorf("oembed returned status %d", resp.StatusCode())
	}

	var decoded oembedResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return metrics, fmt.Errorf("failed to decode oembed response: %w", err)
	}
	if decoded.Title == "" && decoded.AuthorName == "" {
		return metrics, ErrNoMetrics
	}

	metrics.Caption = decoded.Title
	metrics.Author = authorHandle(decoded.AuthorName, decoded.AuthorURL)
	return metrics, nil
}

// authorHandle prefers the @handle from the author URL over the
// display name, which users change freely.
func authorHandle(name, authorURL string) string {
	if authorURL == "" {
		return name
	}
	parsed, err := url.Parse(authorURL)
	if err != nil {
		return name
	}
	path := parsed.Path
	for len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	if len(path) > 0 && path[0] == '@' {
		return path
	}
	return name
}
