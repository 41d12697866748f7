package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/go-resty/resty/v2"
)

// APIExtractor delegates extraction to a hosted scraping service. It is
// the most expensive method and the last resort in the default chain,
// but the service runs real browsers and gets through when every
// direct method is walled off.
type APIExtractor struct {
	client   *resty.Client
	endpoint string
	token    string
	sink     RawSink
}

func NewAPIExtractor(endpoint, token string, sink RawSink) *APIExtractor {
	client := resty.New().
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &APIExtractor{client: client, endpoint: endpoint, token: token, sink: sink}
}

func (e *APIExtractor) Method() models.Method { return models.MethodAPI }

type apiResponse struct {
	Views     int64  `json:"views"`
	Likes     int64  `json:"likes"`
	Comments  int64  `json:"comments"`
	Shares    int64  `json:"shares"`
	Bookmarks int64  `json:"bookmarks"`
	Caption   string `json:"caption"`
	Author    string `json:"author"`
	Error     string `json:"error"`
}

func (e *APIExtractor) Extract(ctx context.Context, target string) (models.PostMetrics, error) {
	var metrics models.PostMetrics

	if e.token == "" {
		return metrics, fmt.Errorf("extraction API token not configured (set CLIPMETRICS_API_TOKEN)")
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetAuthToken(e.token).
		SetBody(map[string]string{"url": target}).
		Post(e.endpoint)
	if err != nil {
		return metrics, fmt.Errorf("extraction API request failed: %w", err)
	}
	if e.sink != nil {
		e.sink.Dump(target, "api", resp.Body())
	}
	if resp.StatusCode() != 200 {
		return metrics, fmt.Errorf("extraction API returned status %d", resp.StatusCode())
	}

	var decoded apiResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return metrics, fmt.Errorf("failed to decode extraction API response: %w", err)
	}
	if decoded.Error != "" {
		return metrics, fmt.Errorf("extraction API error: %s", decoded.Error)
	}

	metrics = models.PostMetrics{
		Views:     decoded.Views,
		Likes:     decoded.Likes,
		Comments:  decoded.Comments,
		Shares:    decoded.Shares,
		Bookmarks: decoded.Bookmarks,
		Caption:   decoded.Caption,
		Author:    decoded.Author,
	}
	metrics.ComputeEngagementRate()
	return metrics, nil
}
