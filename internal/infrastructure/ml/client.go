package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"NewsScope/internal/domain"
	"NewsScope/internal/ports"
)

// Client talks to an external inference service hosting the summarizer,
// sentiment, NER, keyword, title classifier and clustering models.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var (
	_ ports.Summarizer        = (*Client)(nil)
	_ ports.SentimentAnalyzer = (*Client)(nil)
	_ ports.EntityExtractor   = (*Client)(nil)
	_ ports.KeywordExtractor  = (*Client)(nil)
	_ ports.Classifier        = (*Client)(nil)
	_ ports.Clusterer         = (*Client)(nil)
)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

type textPayload struct {
	Text string `json:"text"`
}

// Summarize requests an abstractive summary.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	var resp struct {
		Summary string `json:"summary"`
	}
	if err := c.post(ctx, "/summarize", textPayload{Text: text}, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Summary), nil
}

// Sentiment requests a label and a score in [-1,1]. A missing label means
// the model had no answer.
func (c *Client) Sentiment(ctx context.Context, text string) (domain.Sentiment, bool, error) {
	var resp struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := c.post(ctx, "/sentiment", textPayload{Text: text}, &resp); err != nil {
		return domain.Sentiment{}, false, err
	}
	if resp.Label == "" {
		return domain.Sentiment{}, false, nil
	}
	return domain.Sentiment{
		Label: domain.SentimentLabel(strings.ToUpper(resp.Label)),
		Score: resp.Score,
	}, true, nil
}

// Entities requests named-entity mentions.
func (c *Client) Entities(ctx context.Context, text string) ([]domain.Entity, error) {
	var resp struct {
		Entities []domain.Entity `json:"entities"`
	}
	if err := c.post(ctx, "/entities", textPayload{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

// Keywords requests weighted keywords.
func (c *Client) Keywords(ctx context.Context, text string) ([]domain.Keyword, error) {
	var resp struct {
		Keywords []domain.Keyword `json:"keywords"`
	}
	if err := c.post(ctx, "/keywords", textPayload{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Keywords, nil
}

// Classify requests a topic label for a headline.
func (c *Client) Classify(ctx context.Context, title string) (domain.Category, bool, error) {
	var resp domain.Category
	if err := c.post(ctx, "/classify", map[string]string{"title": title}, &resp); err != nil {
		return domain.Category{}, false, err
	}
	if strings.TrimSpace(resp.Label) == "" {
		return domain.Category{}, false, nil
	}
	return resp, true, nil
}

// Cluster requests one label per text.
func (c *Client) Cluster(ctx context.Context, texts []string, k int) ([]int, error) {
	payload := map[string]any{
		"texts": texts,
		"k":     k,
	}
	var resp struct {
		Labels []int `json:"labels"`
	}
	if err := c.post(ctx, "/cluster", payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Labels) != len(texts) {
		return nil, fmt.Errorf("cluster: got %d labels for %d texts", len(resp.Labels), len(texts))
	}
	return resp.Labels, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if v == nil {
		if err := resp.Body.Close(); err != nil {
			return fmt.Errorf("close response body: %w", err)
		}
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
