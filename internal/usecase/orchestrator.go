package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"NewsScope/internal/domain"
	"NewsScope/internal/normalize"
	"NewsScope/internal/ports"
	"NewsScope/internal/text"
	"NewsScope/internal/textrank"
)

const (
	defaultAnalyzerTimeout = 8 * time.Second
	defaultMaxConcurrency  = 4
	defaultSummaryMaxChars = 400
)

// OrchestratorDeps wires analyzer adapters and tuning into the orchestrator.
type OrchestratorDeps struct {
	Analyzers ports.Analyzers
	Clusterer ports.Clusterer
	Logger    *slog.Logger

	AnalyzerTimeout time.Duration
	MaxConcurrency  int
	SummaryTopN     int
	SummaryMaxChars int
	ClusterK        int

	Now func() time.Time
}

// Orchestrator fans a batch of articles out over the enabled analyzers.
// Analyzer failures are recorded per (article, kind) and never abort the
// batch.
type Orchestrator struct {
	analyzers  ports.Analyzers
	clusterer  ports.Clusterer
	normalizer *normalize.Normalizer
	extractive *textrank.Summarizer
	logger     *slog.Logger

	timeout     time.Duration
	concurrency int
	topN        int
	maxChars    int
	clusterK    int
	now         func() time.Time

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewOrchestrator constructs the orchestration component.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	o := &Orchestrator{
		analyzers:   deps.Analyzers,
		clusterer:   deps.Clusterer,
		normalizer:  normalize.New(),
		extractive:  textrank.New(),
		logger:      deps.Logger,
		timeout:     deps.AnalyzerTimeout,
		concurrency: deps.MaxConcurrency,
		topN:        deps.SummaryTopN,
		maxChars:    deps.SummaryMaxChars,
		clusterK:    deps.ClusterK,
		now:         deps.Now,
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.timeout <= 0 {
		o.timeout = defaultAnalyzerTimeout
	}
	if o.concurrency <= 0 {
		o.concurrency = defaultMaxConcurrency
	}
	if o.topN <= 0 {
		o.topN = textrank.DefaultTopN
	}
	if o.maxChars <= 0 {
		o.maxChars = defaultSummaryMaxChars
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Analyze returns exactly one AnalyzedArticle per input article, in input
// order. Kinds in enabled without an adapter are skipped, except summary
// which always has the extractive path.
func (o *Orchestrator) Analyze(ctx context.Context, articles []domain.RawArticle, enabled domain.KindSet) domain.AnalyzedBatch {
	kinds := o.runnable(enabled)
	analyzed := make([]domain.AnalyzedArticle, len(articles))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, article := range articles {
		g.Go(func() error {
			analyzed[i] = o.analyzeArticle(ctx, article, kinds)
			return nil
		})
	}
	_ = g.Wait()

	batch := domain.AnalyzedBatch{
		ID:        o.newID(),
		Articles:  analyzed,
		CreatedAt: o.now(),
	}
	if o.clusterer != nil && o.clusterK > 0 && len(analyzed) > 1 {
		batch.Clusters = o.cluster(ctx, analyzed)
	}
	return batch
}

// Summarize applies the per-article summary rule to free text: abstractive
// first, extractive when that fails or is empty.
func (o *Orchestrator) Summarize(ctx context.Context, body string) domain.AnalyzerResult {
	return o.summary(ctx, body)
}

// Extractive runs only the sentence-graph summarizer. The length cap is
// applied by whole sentences.
func (o *Orchestrator) Extractive(body string) string {
	return o.extractive.SummarizeWithin(body, o.topN, o.maxChars)
}

func (o *Orchestrator) runnable(enabled domain.KindSet) []domain.AnalyzerKind {
	available := o.analyzers.Available()
	var kinds []domain.AnalyzerKind
	for _, kind := range enabled.Ordered() {
		if available.Has(kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func (o *Orchestrator) analyzeArticle(ctx context.Context, article domain.RawArticle, kinds []domain.AnalyzerKind) domain.AnalyzedArticle {
	normalized := o.normalizer.Normalize(article)
	title := normalize.Title(article.Title)

	results := make([]domain.AnalyzerResult, len(kinds))
	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.run(ctx, kind, normalized, title)
		}()
	}
	wg.Wait()

	out := domain.AnalyzedArticle{
		Article: article,
		Text:    normalized,
		Results: make(map[domain.AnalyzerKind]domain.AnalyzerResult, len(kinds)),
	}
	for _, res := range results {
		if res.Status == domain.StatusFailed {
			o.logger.Debug("analyzer failed",
				"kind", res.Kind,
				"url", article.URL,
				"reason", res.Failure.Reason,
				"detail", res.Failure.Detail)
		}
		out.Results[res.Kind] = res
	}
	return out
}

func (o *Orchestrator) run(ctx context.Context, kind domain.AnalyzerKind, normalized domain.NormalizedText, title string) domain.AnalyzerResult {
	if kind == domain.KindCategory {
		if title == "" {
			return domain.Absent(kind)
		}
		out, err := callWithTimeout(ctx, o.timeout, func(ctx context.Context) (categoryOutcome, error) {
			c, ok, err := o.analyzers.Classifier.Classify(ctx, title)
			return categoryOutcome{c, ok}, err
		})
		if err != nil {
			return failure(kind, err)
		}
		if !out.ok {
			return domain.Absent(kind)
		}
		return domain.CategoryResult(out.category.Label, out.category.Confidence)
	}

	if normalized.Empty() {
		return domain.Absent(kind)
	}
	body := normalized.Display

	switch kind {
	case domain.KindSummary:
		return o.summary(ctx, body)

	case domain.KindSentiment:
		out, err := callWithTimeout(ctx, o.timeout, func(ctx context.Context) (sentimentOutcome, error) {
			s, ok, err := o.analyzers.Sentiment.Sentiment(ctx, body)
			return sentimentOutcome{s, ok}, err
		})
		if err != nil {
			return failure(kind, err)
		}
		if !out.ok {
			return domain.Absent(kind)
		}
		return domain.SentimentResult(out.sentiment.Label, out.sentiment.Score)

	case domain.KindEntities:
		entities, err := callWithTimeout(ctx, o.timeout, func(ctx context.Context) ([]domain.Entity, error) {
			return o.analyzers.Entities.Entities(ctx, body)
		})
		if err != nil {
			return failure(kind, err)
		}
		return domain.EntitiesResult(entities)

	case domain.KindKeywords:
		keywords, err := callWithTimeout(ctx, o.timeout, func(ctx context.Context) ([]domain.Keyword, error) {
			return o.analyzers.Keywords.Keywords(ctx, body)
		})
		if err != nil {
			return failure(kind, err)
		}
		return domain.KeywordsResult(keywords)
	}

	return domain.Absent(kind)
}

func (o *Orchestrator) summary(ctx context.Context, body string) domain.AnalyzerResult {
	if body == "" {
		return domain.Absent(domain.KindSummary)
	}

	if o.analyzers.Summarizer != nil {
		abstract, err := callWithTimeout(ctx, o.timeout, func(ctx context.Context) (string, error) {
			return o.analyzers.Summarizer.Summarize(ctx, body)
		})
		if err == nil && abstract != "" {
			return domain.SummaryResult(text.Truncate(abstract, o.maxChars), domain.SummaryAbstractive)
		}
		if err != nil {
			o.logger.Debug("abstractive summary unavailable, using extractive", "error", err)
		}
	}

	return domain.SummaryResult(o.Extractive(body), domain.SummaryExtractive)
}

func (o *Orchestrator) cluster(ctx context.Context, articles []domain.AnalyzedArticle) []domain.Cluster {
	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = a.Text.Display
		if texts[i] == "" {
			texts[i] = a.Article.Title
		}
	}

	k := o.clusterK
	if k > len(texts) {
		k = len(texts)
	}

	labels, err := callWithTimeout(ctx, o.timeout, func(ctx context.Context) ([]int, error) {
		return o.clusterer.Cluster(ctx, texts, k)
	})
	if err != nil {
		o.logger.Warn("clustering failed", "articles", len(texts), "error", err)
		return nil
	}
	if len(labels) != len(texts) {
		o.logger.Warn("clustering returned wrong label count", "want", len(texts), "got", len(labels))
		return nil
	}

	index := make(map[int]int)
	var clusters []domain.Cluster
	for i, label := range labels {
		pos, ok := index[label]
		if !ok {
			pos = len(clusters)
			index[label] = pos
			clusters = append(clusters, domain.Cluster{ID: pos})
		}
		clusters[pos].Articles = append(clusters[pos].Articles, i)
	}
	return clusters
}

func (o *Orchestrator) newID() string {
	o.idMu.Lock()
	defer o.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(o.now()), o.entropy).String()
}

type sentimentOutcome struct {
	sentiment domain.Sentiment
	ok        bool
}

type categoryOutcome struct {
	category domain.Category
	ok       bool
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("analyzer panic: %v", e.value)
}

// callWithTimeout runs fn under a per-call deadline. When the deadline or
// the parent ctx ends first, fn is abandoned and its result discarded.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: &panicError{value: r}}
			}
		}()
		v, err := fn(cctx)
		ch <- outcome{value: v, err: err}
	}()

	select {
	case out := <-ch:
		return out.value, out.err
	case <-cctx.Done():
		var zero T
		return zero, cctx.Err()
	}
}

func failure(kind domain.AnalyzerKind, err error) domain.AnalyzerResult {
	var p *panicError
	switch {
	case errors.As(err, &p):
		return domain.Failed(kind, domain.ReasonPanic, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return domain.Failed(kind, domain.ReasonTimeout, err.Error())
	case errors.Is(err, context.Canceled):
		return domain.Failed(kind, domain.ReasonCanceled, err.Error())
	default:
		return domain.Failed(kind, domain.ReasonError, err.Error())
	}
}
