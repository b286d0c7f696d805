package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"NewsScope/internal/domain"
	"NewsScope/internal/ports"
	"NewsScope/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	enabled  []string
	limit    int
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the enabled scanner names.
func NewStrategySource(reg *scanner.Registry, enabled []string, limit int, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		enabled:  enabled,
		limit:    limit,
		logger:   log,
	}
}

// Fetch runs every enabled scanner concurrently and merges their results in
// scanner order, dropping repeated URLs. It fails only when every scanner
// fails.
func (s *StrategySource) Fetch(ctx context.Context, req domain.Request) ([]domain.RawArticle, error) {
	if s.registry == nil || len(s.enabled) == 0 {
		return nil, &domain.RetrievalError{Err: domain.ErrNoSources}
	}

	s.debug("fetch", "mode", req.Mode, "term", req.Term(), "scanners", len(s.enabled))

	results := make([][]domain.RawArticle, len(s.enabled))
	errs := make([]error, len(s.enabled))

	var g errgroup.Group
	for i, name := range s.enabled {
		g.Go(func() error {
			strategy, err := s.registry.Resolve(name)
			if err != nil {
				errs[i] = err
				return nil
			}

			articles, err := strategy.Scan(ctx, scanner.Request{Request: req, Limit: s.limit})
			if err != nil {
				errs[i] = fmt.Errorf("scan %s: %w", name, err)
				return nil
			}
			for j := range articles {
				if articles[j].Source == "" {
					articles[j].Source = name
				}
			}
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			s.warn("scanner failed", "scanner", s.enabled[i], "error", err)
		}
	}
	if failed == len(s.enabled) {
		return nil, &domain.RetrievalError{Source: strings.Join(s.enabled, ","), Err: errors.Join(errs...)}
	}

	var aggregated []domain.RawArticle
	seen := make(map[string]struct{})
	for i, articles := range results {
		for _, article := range articles {
			key := strings.TrimSpace(article.URL)
			if key == "" || strings.TrimSpace(article.Title) == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			aggregated = append(aggregated, article)
		}
		s.debug("scanner produced articles", "scanner", s.enabled[i], "count", len(articles))
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
