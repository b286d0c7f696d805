package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"NewsScope/internal/domain"
	"NewsScope/internal/scanner"
)

// Source is one configured RSS/Atom feed, optionally tagged with topics.
type Source struct {
	Name   string
	URL    string
	Topics []string
}

// Scanner reads configured feeds with gofeed.
type Scanner struct {
	sources   []Source
	userAgent string
	logger    *slog.Logger
}

var _ scanner.Scanner = (*Scanner)(nil)

// NewScanner creates a feed scanner over sources.
func NewScanner(sources []Source, logger *slog.Logger) *Scanner {
	return &Scanner{
		sources:   sources,
		userAgent: "NewsScope/1.0",
		logger:    logger,
	}
}

// Name identifies the scanner in the registry.
func (s *Scanner) Name() string {
	return "rss"
}

// Scan reads the feeds relevant to req, newest first. Topic requests read
// feeds tagged with the topic, or every feed when none is tagged. Failing
// feeds are skipped unless all of them fail.
func (s *Scanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	selected := s.selectSources(req.Request)
	if len(selected) == 0 {
		return nil, nil
	}

	results := make([][]domain.RawArticle, len(selected))
	errs := make([]error, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, src := range selected {
		g.Go(func() error {
			articles, err := s.fetch(gctx, src)
			if err != nil {
				errs[i] = err
				s.debug("feed failed", "feed", src.Name, "error", err)
				return nil
			}
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	var all []domain.RawArticle
	failed := 0
	for i := range selected {
		if errs[i] != nil {
			failed++
			continue
		}
		all = append(all, results[i]...)
	}
	if failed == len(selected) {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	if req.Limit > 0 && req.Mode == domain.ModeTopic && len(all) > req.Limit {
		all = all[:req.Limit]
	}
	return all, nil
}

func (s *Scanner) selectSources(req domain.Request) []Source {
	if req.Mode != domain.ModeTopic {
		return s.sources
	}

	topic := strings.ToLower(strings.TrimSpace(req.Topic))
	var tagged []Source
	for _, src := range s.sources {
		for _, t := range src.Topics {
			if strings.EqualFold(t, topic) {
				tagged = append(tagged, src)
				break
			}
		}
	}
	if len(tagged) == 0 {
		return s.sources
	}
	return tagged
}

func (s *Scanner) fetch(ctx context.Context, src Source) ([]domain.RawArticle, error) {
	// a parser keeps decoding state, so each fetch gets its own
	parser := gofeed.NewParser()
	parser.UserAgent = s.userAgent

	parsed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}

	articles := make([]domain.RawArticle, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		a := domain.RawArticle{
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.Link,
			Source:      src.Name,
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			a.PublishedAt = *item.UpdatedParsed
		}
		articles = append(articles, a)
	}

	s.debug("feed parsed", "feed", src.Name, "items", len(articles))
	return articles, nil
}

func (s *Scanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
