package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"NewsScope/internal/domain"
)

var errModel = errors.New("model unavailable")

type stubSummarizer struct {
	out   string
	err   error
	calls atomic.Int32
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.calls.Add(1)
	return s.out, s.err
}

// stubSentiment scores by looking up a marker word in the text.
type stubSentiment struct {
	scores map[string]float64
}

func (s *stubSentiment) Sentiment(ctx context.Context, text string) (domain.Sentiment, bool, error) {
	for marker, score := range s.scores {
		if strings.Contains(text, marker) {
			return domain.Sentiment{Label: domain.SentimentNeutral, Score: score}, true, nil
		}
	}
	return domain.Sentiment{}, false, nil
}

type stubEntities struct {
	byMarker map[string][]string
	panicOn  string
}

func (s *stubEntities) Entities(ctx context.Context, text string) ([]domain.Entity, error) {
	if s.panicOn != "" && strings.Contains(text, s.panicOn) {
		panic("tagger crashed")
	}
	for marker, names := range s.byMarker {
		if strings.Contains(text, marker) {
			out := make([]domain.Entity, len(names))
			for i, n := range names {
				out[i] = domain.Entity{Text: n, Type: "PER"}
			}
			return out, nil
		}
	}
	return nil, nil
}

type slowKeywords struct {
	delay time.Duration
}

func (s *slowKeywords) Keywords(ctx context.Context, text string) ([]domain.Keyword, error) {
	select {
	case <-time.After(s.delay):
		return []domain.Keyword{{Word: "late", Weight: 1}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type failingKeywords struct{}

func (failingKeywords) Keywords(ctx context.Context, text string) ([]domain.Keyword, error) {
	return nil, errModel
}

type stubClassifier struct {
	calls atomic.Int32
}

func (s *stubClassifier) Classify(ctx context.Context, title string) (domain.Category, bool, error) {
	s.calls.Add(1)
	return domain.Category{Label: "science", Confidence: 0.9}, true, nil
}

type stubClusterer struct {
	labels []int
	err    error
}

func (s *stubClusterer) Cluster(ctx context.Context, texts []string, k int) ([]int, error) {
	return s.labels, s.err
}

type stubSource struct {
	mu       sync.Mutex
	articles []domain.RawArticle
	err      error
	calls    int
	requests []domain.Request
}

func (s *stubSource) Fetch(ctx context.Context, req domain.Request) ([]domain.RawArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.RawArticle(nil), s.articles...), nil
}

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

const longBody = "The space agency confirmed the rover landed safely on Mars. " +
	"Engineers said the rover landing sequence worked as planned. " +
	"The rover will begin drilling into Martian rock next month. " +
	"Scientists hope the rover samples reveal signs of ancient water. " +
	"The mission team celebrated the landing at mission control."
