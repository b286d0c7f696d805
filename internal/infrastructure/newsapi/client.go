package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"NewsScope/internal/domain"
	"NewsScope/internal/scanner"
)

const (
	DefaultBaseURL  = "https://newsapi.org/v2"
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	// ErrMissingAPIKey is returned before any request is made.
	ErrMissingAPIKey = errors.New("newsapi: api key is not configured")

	termExpr = regexp.MustCompile(`[a-z0-9]+`)
)

// categories accepted by /top-headlines.
var supportedCategories = map[string]bool{
	"business": true, "entertainment": true, "general": true,
	"health": true, "science": true, "sports": true, "technology": true,
}

// fallbackQueries widen /everything lookups for topics with thin headlines.
var fallbackQueries = map[string]string{
	"world":    "world OR international OR global",
	"politics": "politics OR government OR election",
	"science":  "science OR research",
	"health":   "health OR medicine",
	"sports":   "sports OR game",
}

// Config describes the NewsAPI endpoint and query defaults.
type Config struct {
	BaseURL    string
	APIKey     string
	PageSize   int
	Country    string
	Language   string
	SearchDays int
}

// Client is the NewsAPI retrieval strategy.
type Client struct {
	cfg    Config
	http   *http.Client
	now    func() time.Time
	logger *slog.Logger
}

var _ scanner.Scanner = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.SearchDays <= 0 {
		cfg.SearchDays = 30
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
		logger: logger,
	}
}

// Name identifies the scanner in the registry.
func (c *Client) Name() string {
	return "newsapi"
}

// Scan maps topics to /top-headlines and queries to /everything.
func (c *Client) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	pageSize := req.Limit
	if pageSize <= 0 {
		pageSize = c.cfg.PageSize
	}

	if req.Mode == domain.ModeSearch {
		return c.Search(ctx, req.Query, pageSize)
	}
	return c.TopHeadlines(ctx, req.Topic, pageSize)
}

// TopHeadlines lists headlines for a topic. Topics outside the supported
// category set query the general category by keyword. An empty headline
// list falls back to /everything.
func (c *Client) TopHeadlines(ctx context.Context, topic string, pageSize int) ([]domain.RawArticle, error) {
	cat := strings.ToLower(strings.TrimSpace(topic))

	params := c.baseParams(pageSize)
	if c.cfg.Country != "" {
		params.Set("country", c.cfg.Country)
	}
	if supportedCategories[cat] {
		params.Set("category", cat)
	} else {
		params.Set("category", "general")
		if cat == "" {
			cat = "world"
		}
		params.Set("q", cat)
	}

	articles, err := c.get(ctx, "/top-headlines", params)
	if err != nil {
		return nil, err
	}
	if len(articles) > 0 {
		return articles, nil
	}

	q, ok := fallbackQueries[cat]
	if !ok {
		q = cat
	}
	fallback := c.baseParams(pageSize)
	fallback.Set("q", q)

	articles, err = c.get(ctx, "/everything", fallback)
	if err != nil {
		c.debug("everything fallback failed", "topic", cat, "error", err)
		return nil, nil
	}
	return articles, nil
}

// Search queries titles with a boolean phrase-or-all-terms expression over
// the last SearchDays days.
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]domain.RawArticle, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	params := c.baseParams(FetchSize(pageSize))
	params.Set("q", BooleanQuery(q))
	params.Set("searchIn", "title")
	params.Set("from", c.now().UTC().AddDate(0, 0, -c.cfg.SearchDays).Format("2006-01-02"))

	return c.get(ctx, "/everything", params)
}

// BooleanQuery builds `"<phrase>" OR a AND b` for multi-term queries.
func BooleanQuery(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	terms := termExpr.FindAllString(q, -1)

	phrase := q
	if len(terms) > 1 {
		phrase = `"` + q + `"`
	}
	and := strings.Join(terms, " AND ")

	switch {
	case phrase != "" && and != "":
		return phrase + " OR " + and
	case phrase != "":
		return phrase
	default:
		return and
	}
}

// FetchSize over-fetches for search so strict title filtering still has
// enough candidates.
func FetchSize(pageSize int) int {
	size := pageSize * 3
	if size < 30 {
		size = 30
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return size
}

func (c *Client) baseParams(pageSize int) url.Values {
	params := url.Values{}
	params.Set("pageSize", fmt.Sprint(pageSize))
	params.Set("language", c.cfg.Language)
	params.Set("sortBy", "publishedAt")
	return params
}

type apiResponse struct {
	Status       string       `json:"status"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
}

type apiArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]domain.RawArticle, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)

	c.debug("newsapi request", "path", path, "q", params.Get("q"))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var body apiResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && body.Message != "" {
			return nil, fmt.Errorf("newsapi %s: %s: %s", resp.Status, body.Code, body.Message)
		}
		return nil, fmt.Errorf("newsapi returned status %s", resp.Status)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s %s", body.Status, body.Message)
	}

	articles := make([]domain.RawArticle, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" || a.Title == "[Removed]" || a.URL == "" {
			continue
		}
		articles = append(articles, domain.RawArticle{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
