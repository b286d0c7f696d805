package ports

import (
	"context"
	"time"

	"NewsScope/internal/domain"
)

// ArticleSource pulls fresh articles from upstream providers.
type ArticleSource interface {
	Fetch(ctx context.Context, req domain.Request) ([]domain.RawArticle, error)
}

// Summarizer produces an abstractive summary; an empty string means Absent.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SentimentAnalyzer scores text; ok is false when there is no signal.
type SentimentAnalyzer interface {
	Sentiment(ctx context.Context, text string) (sentiment domain.Sentiment, ok bool, err error)
}

// EntityExtractor returns ordered entity mentions found in text.
type EntityExtractor interface {
	Entities(ctx context.Context, text string) ([]domain.Entity, error)
}

// KeywordExtractor returns ordered keywords with weights.
type KeywordExtractor interface {
	Keywords(ctx context.Context, text string) ([]domain.Keyword, error)
}

// Classifier assigns a category from an article title; ok is false when
// the model has no answer.
type Classifier interface {
	Classify(ctx context.Context, title string) (category domain.Category, ok bool, err error)
}

// Clusterer assigns one cluster label per text.
type Clusterer interface {
	Cluster(ctx context.Context, texts []string, k int) ([]int, error)
}

// Analyzers bundles the configured analyzer adapters. Nil members are
// unavailable and must not appear in the enabled kind set.
type Analyzers struct {
	Summarizer Summarizer
	Sentiment  SentimentAnalyzer
	Entities   EntityExtractor
	Keywords   KeywordExtractor
	Classifier Classifier
}

// Available returns the kinds that have an adapter. The summary kind is
// always available because of the extractive fallback.
func (a Analyzers) Available() domain.KindSet {
	set := domain.NewKindSet(domain.KindSummary)
	if a.Sentiment != nil {
		set[domain.KindSentiment] = struct{}{}
	}
	if a.Entities != nil {
		set[domain.KindEntities] = struct{}{}
	}
	if a.Keywords != nil {
		set[domain.KindKeywords] = struct{}{}
	}
	if a.Classifier != nil {
		set[domain.KindCategory] = struct{}{}
	}
	return set
}

// Scheduler controls when recurring maintenance jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
