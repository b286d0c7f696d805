package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsScope/internal/cache"
	"NewsScope/internal/cluster"
	"NewsScope/internal/config"
	"NewsScope/internal/domain"
	"NewsScope/internal/httpapi"
	"NewsScope/internal/infrastructure/feed"
	"NewsScope/internal/infrastructure/llm"
	"NewsScope/internal/infrastructure/local"
	"NewsScope/internal/infrastructure/ml"
	"NewsScope/internal/infrastructure/newsapi"
	"NewsScope/internal/infrastructure/scheduler"
	"NewsScope/internal/infrastructure/source"
	"NewsScope/internal/logging"
	"NewsScope/internal/ports"
	"NewsScope/internal/scanner"
	"NewsScope/internal/usecase"
	"NewsScope/internal/visualize"
)

// requestMargin separates the request deadline from the compute deadline.
const requestMargin = 5 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := scanner.NewRegistry()
	registry.Register(newsapi.NewClient(newsapi.Config{
		BaseURL:    cfg.Sources.NewsAPI.BaseURL,
		APIKey:     cfg.Sources.NewsAPI.APIKey,
		PageSize:   cfg.Sources.NewsAPI.PageSize,
		Country:    cfg.Sources.NewsAPI.Country,
		Language:   cfg.Sources.NewsAPI.Language,
		SearchDays: cfg.Sources.NewsAPI.SearchDays,
	}, baseLogger.With("component", "source.newsapi")))
	registry.Register(feed.NewScanner(feedSources(cfg.Sources.Feeds), baseLogger.With("component", "source.rss")))

	src := source.NewStrategySource(registry, cfg.Sources.Enabled, cfg.Sources.NewsAPI.PageSize,
		baseLogger.With("component", "source"))

	analyzers, clusterer := buildAnalyzers(cfg)
	enabled := resolveEnabled(cfg.Analysis.Enabled, analyzers.Available(), baseLogger)

	clusterK := 0
	if cfg.Analysis.Cluster.Enabled {
		clusterK = cfg.Analysis.Cluster.K
	}

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Analyzers:       analyzers,
		Clusterer:       clusterer,
		Logger:          baseLogger.With("component", "orchestrator"),
		AnalyzerTimeout: cfg.Analysis.AnalyzerTimeout,
		MaxConcurrency:  cfg.Analysis.MaxConcurrency,
		SummaryTopN:     cfg.Analysis.SummaryTopN,
		SummaryMaxChars: cfg.Analysis.SummaryMaxChars,
		ClusterK:        clusterK,
	})

	results, err := cache.New(cfg.Cache.Capacity,
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithComputeTimeout(cfg.Analysis.BatchTimeout),
		cache.WithLogger(baseLogger.With("component", "cache")),
	)
	if err != nil {
		return nil, fmt.Errorf("build cache: %w", err)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:       src,
		Orchestrator: orchestrator,
		Cache:        results,
		Reducer:      visualize.NewReducer(),
		Enabled:      enabled,
		Logger:       baseLogger.With("component", "pipeline"),
	})

	sweeper := usecase.NewScheduler(
		scheduler.NewTickerScheduler(cfg.Cache.SweepInterval),
		results,
		baseLogger.With("component", "scheduler"),
	)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		scheduler: sweeper,
	}, nil
}

// Pipeline exposes the request pipeline for one-shot commands.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// RequestTimeout bounds one topic/search request end to end. It outlasts
// the cache compute budget so a batch cut off at batchTimeout still reaches
// the caller instead of racing the request deadline.
func (a *Application) RequestTimeout() time.Duration {
	return requestTimeout(a.cfg.Analysis.BatchTimeout)
}

func requestTimeout(batch time.Duration) time.Duration {
	if batch <= 0 {
		return 0
	}
	return batch + requestMargin
}

// Serve runs the cache sweeper and HTTP API until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.scheduler.Stop(stopCtx); err != nil {
			a.logger.Warn("scheduler stop failed", "error", err)
		}
	}()

	server := httpapi.NewServer(a.pipeline, httpapi.Options{
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		RequestTimeout: a.RequestTimeout(),
		Logger:         a.logger.With("component", "http"),
	})
	return server.ListenAndServe(ctx, a.cfg.Server.Addr)
}

// buildAnalyzers prefers the inference service, then OpenAI, then the
// in-process analyzers for whatever kinds remain uncovered.
func buildAnalyzers(cfg config.Config) (ports.Analyzers, ports.Clusterer) {
	var (
		analyzers ports.Analyzers
		clusterer ports.Clusterer
	)

	if cfg.ML.InferenceURL != "" {
		client := ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey, cfg.ML.Timeout)
		analyzers = ports.Analyzers{
			Summarizer: client,
			Sentiment:  client,
			Entities:   client,
			Keywords:   client,
			Classifier: client,
		}
		clusterer = client
	}

	if cfg.OpenAI.APIKey != "" {
		client := llm.NewClient(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.Analysis.AnalyzerTimeout,
		}, domain.Topics)
		if analyzers.Summarizer == nil {
			analyzers.Summarizer = client
		}
		if analyzers.Classifier == nil {
			analyzers.Classifier = client
		}
	}

	if analyzers.Sentiment == nil {
		analyzers.Sentiment = local.NewSentiment()
	}
	if analyzers.Entities == nil {
		analyzers.Entities = local.NewEntities()
	}
	if analyzers.Keywords == nil {
		analyzers.Keywords = local.NewKeywords()
	}
	if clusterer == nil && cfg.Analysis.Cluster.Enabled {
		clusterer = cluster.NewKMeans()
	}

	return analyzers, clusterer
}

// resolveEnabled intersects the configured kinds with the available ones.
func resolveEnabled(names []string, available domain.KindSet, logger *slog.Logger) domain.KindSet {
	enabled := domain.NewKindSet()
	for _, name := range names {
		kind, err := domain.ParseKind(name)
		if err != nil {
			logger.Warn("ignoring analyzer", "error", err)
			continue
		}
		if !available.Has(kind) {
			logger.Info("analyzer disabled: no adapter configured", "kind", kind)
			continue
		}
		enabled[kind] = struct{}{}
	}
	return enabled
}

func feedSources(cfgs []config.FeedConfig) []feed.Source {
	out := make([]feed.Source, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, feed.Source{Name: c.Name, URL: c.URL, Topics: c.Topics})
	}
	return out
}
