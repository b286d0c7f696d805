package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"NewsScope/internal/domain"
	"NewsScope/internal/ports"
)

const (
	defaultModel  = "gpt-4o-mini"
	summaryPrompt = "You summarize news articles. Reply with at most three plain sentences and nothing else."
)

// Config defines how to contact the OpenAI-compatible API.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client implements abstractive summarization and headline classification
// on top of chat completions.
type Client struct {
	client openai.Client
	model  string
	topics []string
}

var (
	_ ports.Summarizer = (*Client)(nil)
	_ ports.Classifier = (*Client)(nil)
)

// NewClient builds a client from configuration. topics is the closed label
// set offered to the classifier.
func NewClient(cfg Config, topics []string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		client: openai.NewClient(opts...),
		model:  model,
		topics: topics,
	}
}

// Summarize asks the model for a short abstractive summary.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	content, err := c.complete(ctx, summaryPrompt, text, 200)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// Classify asks the model to pick one topic for a headline. Labels outside
// the topic set are treated as no answer.
func (c *Client) Classify(ctx context.Context, title string) (domain.Category, bool, error) {
	prompt := fmt.Sprintf(
		"Classify the news title into exactly one of: %s.\n"+
			`Respond with JSON: {"label": "<topic>", "confidence": 0.0-1.0}`,
		strings.Join(c.topics, ", "))

	content, err := c.complete(ctx, prompt, "news title: "+title, 50)
	if err != nil {
		return domain.Category{}, false, err
	}

	var parsed struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(stripFence(content)), &parsed); err != nil {
		// some models answer with the bare label
		parsed.Label = strings.Trim(strings.TrimSpace(content), `."'`)
		parsed.Confidence = 0.5
	}

	label := strings.ToLower(strings.TrimSpace(parsed.Label))
	for _, topic := range c.topics {
		if label == topic {
			return domain.Category{Label: topic, Confidence: clamp01(parsed.Confidence)}, true, nil
		}
	}
	return domain.Category{}, false, nil
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("no response from openai")
	}
	return response.Choices[0].Message.Content, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
