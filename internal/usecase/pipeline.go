package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"NewsScope/internal/cache"
	"NewsScope/internal/domain"
	"NewsScope/internal/normalize"
	"NewsScope/internal/ports"
	"NewsScope/internal/relevance"
	"NewsScope/internal/text"
	"NewsScope/internal/visualize"
)

const (
	shortTextChars    = 50
	shortTextKeep     = 280
	leadSentences     = 2
	leadSentenceChars = 300
)

// PipelineDeps wires all driven adapters into the request pipeline.
type PipelineDeps struct {
	Source       ports.ArticleSource
	Orchestrator *Orchestrator
	Cache        *cache.ResultCache
	Reducer      *visualize.Reducer
	Enabled      domain.KindSet
	Logger       *slog.Logger
}

// Result is what one request yields. Empty marks the zero-match outcome,
// which is not an error.
type Result struct {
	Batch         domain.AnalyzedBatch        `json:"batch"`
	Visualization domain.VisualizationDataset `json:"visualization"`
	Empty         bool                        `json:"empty"`
}

// Pipeline composes retrieval, filtering, cached analysis and reduction.
type Pipeline struct {
	source       ports.ArticleSource
	orchestrator *Orchestrator
	cache        *cache.ResultCache
	reducer      *visualize.Reducer
	enabled      domain.KindSet
	logger       *slog.Logger
}

// NewPipeline constructs the request pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:       deps.Source,
		orchestrator: deps.Orchestrator,
		cache:        deps.Cache,
		reducer:      deps.Reducer,
		enabled:      deps.Enabled,
		logger:       deps.Logger,
	}
	if p.orchestrator == nil {
		p.orchestrator = NewOrchestrator(OrchestratorDeps{Logger: deps.Logger})
	}
	if p.reducer == nil {
		p.reducer = visualize.NewReducer()
	}
	if p.enabled == nil {
		p.enabled = domain.NewKindSet(domain.AllKinds...)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// ListTopics returns the predefined topics.
func (p *Pipeline) ListTopics() []string {
	return append([]string(nil), domain.Topics...)
}

// GetTopicArticles runs the lenient topic listing.
func (p *Pipeline) GetTopicArticles(ctx context.Context, topic string) (Result, error) {
	return p.Run(ctx, domain.Request{Mode: domain.ModeTopic, Topic: topic})
}

// Search runs the strict title search.
func (p *Pipeline) Search(ctx context.Context, query string) (Result, error) {
	return p.Run(ctx, domain.Request{Mode: domain.ModeSearch, Query: query})
}

// Run resolves req to an analyzed batch, from cache when possible, and
// reduces it. Retrieval failures are returned unchanged.
func (p *Pipeline) Run(ctx context.Context, req domain.Request) (Result, error) {
	fingerprint, err := req.Fingerprint()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	compute := func(ctx context.Context) (domain.AnalyzedBatch, error) {
		return p.compute(ctx, req, fingerprint)
	}

	var batch domain.AnalyzedBatch
	if p.cache != nil {
		batch, err = p.cache.GetOrCompute(ctx, fingerprint, compute)
	} else {
		batch, err = compute(ctx)
	}
	if err != nil {
		if domain.IsRetrieval(err) {
			p.logger.Warn("retrieval failed", "fingerprint", fingerprint, "error", err)
		}
		return Result{}, err
	}

	return Result{
		Batch:         batch,
		Visualization: p.reducer.Reduce(batch),
		Empty:         batch.Empty(),
	}, nil
}

func (p *Pipeline) compute(ctx context.Context, req domain.Request, fingerprint string) (domain.AnalyzedBatch, error) {
	if p.source == nil {
		return domain.AnalyzedBatch{}, &domain.RetrievalError{Err: domain.ErrNoSources}
	}

	articles, err := p.source.Fetch(ctx, req)
	if err != nil {
		var re *domain.RetrievalError
		if errors.As(err, &re) {
			return domain.AnalyzedBatch{}, err
		}
		return domain.AnalyzedBatch{}, &domain.RetrievalError{Err: err}
	}

	filtered := relevance.Filter(articles, req.Mode, req.Query)
	if req.Mode == domain.ModeSearch {
		filtered = relevance.Rank(filtered, req.Query)
	}

	p.logger.Debug("analyzing batch",
		"fingerprint", fingerprint,
		"fetched", len(articles),
		"kept", len(filtered))

	batch := p.orchestrator.Analyze(ctx, filtered, p.enabled)
	batch.Fingerprint = fingerprint
	return batch, nil
}

// SummarizeTexts summarizes each text directly, bypassing the cache.
// Output has one entry per input, in order.
func (p *Pipeline) SummarizeTexts(ctx context.Context, texts []string) []string {
	out := make([]string, len(texts))

	var g errgroup.Group
	g.SetLimit(p.orchestrator.concurrency)
	for i, raw := range texts {
		g.Go(func() error {
			out[i] = p.summarizeText(ctx, raw)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (p *Pipeline) summarizeText(ctx context.Context, raw string) string {
	cleaned := normalize.Clean(raw)
	if len([]rune(cleaned)) < shortTextChars {
		return firstRunes(cleaned, shortTextKeep)
	}

	if res := p.orchestrator.Summarize(ctx, cleaned); res.OK() {
		return res.Summary.Text
	}

	sentences := text.SplitSentences(cleaned)
	if len(sentences) > leadSentences {
		sentences = sentences[:leadSentences]
	}
	return text.Truncate(strings.Join(sentences, " "), leadSentenceChars)
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
