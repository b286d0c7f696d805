package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"NewsScope/internal/domain"
	"NewsScope/internal/ports"
	"NewsScope/internal/text"
)

func allKinds() domain.KindSet {
	return domain.NewKindSet(domain.AllKinds...)
}

func TestAnalyzeKeepsOneArticlePerInputDespiteFailures(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(OrchestratorDeps{
		Analyzers: ports.Analyzers{
			Summarizer: &stubSummarizer{err: errModel},
			Sentiment:  &stubSentiment{scores: map[string]float64{"Mars": 0.5}},
			Entities:   &stubEntities{panicOn: "boom"},
			Keywords:   failingKeywords{},
			Classifier: &stubClassifier{},
		},
		AnalyzerTimeout: time.Second,
	})

	articles := []domain.RawArticle{
		{Title: "Rover lands", Content: longBody, URL: "https://a"},
		{Title: "Kaboom", Content: "boom goes the tagger today.", URL: "https://b"},
		{Title: "", URL: "https://c"},
		{Title: "Third", Description: "Mars weather is cold.", URL: "https://d"},
	}

	batch := o.Analyze(context.Background(), articles, allKinds())

	if len(batch.Articles) != len(articles) {
		t.Fatalf("expected %d analyzed articles, got %d", len(articles), len(batch.Articles))
	}
	for i, a := range batch.Articles {
		if a.Article.URL != articles[i].URL {
			t.Fatalf("article %d out of order: %s", i, a.Article.URL)
		}
		if len(a.Results) != len(domain.AllKinds) {
			t.Fatalf("article %d: expected one result per kind, got %d", i, len(a.Results))
		}
	}
	if batch.ID == "" {
		t.Fatal("expected batch id")
	}

	first := batch.Articles[0]
	if kw, _ := first.Result(domain.KindKeywords); kw.Status != domain.StatusFailed || kw.Failure.Reason != domain.ReasonError {
		t.Fatalf("expected keyword failure, got %+v", kw)
	}
	if s, ok := first.Sentiment(); !ok || s.Score != 0.5 {
		t.Fatalf("expected sentiment to survive keyword failure, got %+v ok=%v", s, ok)
	}

	second := batch.Articles[1]
	if ent, _ := second.Result(domain.KindEntities); ent.Status != domain.StatusFailed || ent.Failure.Reason != domain.ReasonPanic {
		t.Fatalf("expected panic failure, got %+v", ent)
	}

	empty := batch.Articles[2]
	for _, kind := range domain.AllKinds {
		if r, _ := empty.Result(kind); r.Status != domain.StatusAbsent {
			t.Fatalf("empty article: %s should be absent, got %s", kind, r.Status)
		}
	}
}

func TestAnalyzeFallsBackToExtractiveSummary(t *testing.T) {
	t.Parallel()

	summarizer := &stubSummarizer{err: errModel}
	o := NewOrchestrator(OrchestratorDeps{
		Analyzers:   ports.Analyzers{Summarizer: summarizer},
		SummaryTopN: 2,
	})

	batch := o.Analyze(context.Background(), []domain.RawArticle{{Title: "Rover", Content: longBody}}, domain.NewKindSet(domain.KindSummary))

	res, _ := batch.Articles[0].Result(domain.KindSummary)
	if !res.OK() {
		t.Fatalf("expected summary, got %+v", res)
	}
	if res.Summary.Method != domain.SummaryExtractive {
		t.Fatalf("expected extractive method, got %s", res.Summary.Method)
	}
	if summarizer.calls.Load() != 1 {
		t.Fatalf("abstractive summarizer should be tried once, got %d", summarizer.calls.Load())
	}

	last := -1
	sentences := strings.SplitAfter(res.Summary.Text, ". ")
	if len(sentences) > 2 {
		t.Fatalf("expected at most 2 sentences, got %q", res.Summary.Text)
	}
	for _, s := range sentences {
		idx := strings.Index(longBody, strings.TrimSpace(s))
		if idx < 0 {
			t.Fatalf("summary sentence %q not found in body", s)
		}
		if idx <= last {
			t.Fatalf("summary not in original order: %q", res.Summary.Text)
		}
		last = idx
	}
}

func TestAnalyzeUsesAbstractiveWhenAvailable(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(OrchestratorDeps{
		Analyzers:       ports.Analyzers{Summarizer: &stubSummarizer{out: strings.Repeat("word ", 200)}},
		SummaryMaxChars: 40,
	})

	batch := o.Analyze(context.Background(), []domain.RawArticle{{Content: longBody}}, domain.NewKindSet(domain.KindSummary))
	res, _ := batch.Articles[0].Result(domain.KindSummary)
	if !res.OK() || res.Summary.Method != domain.SummaryAbstractive {
		t.Fatalf("expected abstractive summary, got %+v", res)
	}
	if len([]rune(res.Summary.Text)) > 40 {
		t.Fatalf("summary exceeds cap: %d chars", len(res.Summary.Text))
	}
}

func TestAnalyzeSingleSentenceSummaryIsAbsent(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(OrchestratorDeps{})
	batch := o.Analyze(context.Background(), []domain.RawArticle{{Content: "Just one short sentence here."}}, domain.NewKindSet(domain.KindSummary))

	res, _ := batch.Articles[0].Result(domain.KindSummary)
	if res.Status != domain.StatusAbsent {
		t.Fatalf("expected absent summary, got %+v", res)
	}
}

func TestAnalyzeTimesOutSlowAnalyzer(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(OrchestratorDeps{
		Analyzers:       ports.Analyzers{Keywords: &slowKeywords{delay: time.Second}},
		AnalyzerTimeout: 20 * time.Millisecond,
	})

	start := time.Now()
	batch := o.Analyze(context.Background(), []domain.RawArticle{{Content: longBody}}, domain.NewKindSet(domain.KindKeywords))
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("slow analyzer blocked the batch for %s", elapsed)
	}

	res, _ := batch.Articles[0].Result(domain.KindKeywords)
	if res.Status != domain.StatusFailed || res.Failure.Reason != domain.ReasonTimeout {
		t.Fatalf("expected timeout failure, got %+v", res)
	}
}

func TestAnalyzeCanceledContextMarksCanceled(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(OrchestratorDeps{
		Analyzers:       ports.Analyzers{Keywords: &slowKeywords{delay: time.Second}},
		AnalyzerTimeout: time.Minute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := o.Analyze(ctx, []domain.RawArticle{{Content: longBody}}, domain.NewKindSet(domain.KindKeywords))
	res, _ := batch.Articles[0].Result(domain.KindKeywords)
	if res.Status != domain.StatusFailed || res.Failure.Reason != domain.ReasonCanceled {
		t.Fatalf("expected canceled failure, got %+v", res)
	}
}

func TestAnalyzeSkipsKindsWithoutAdapter(t *testing.T) {
	t.Parallel()

	classifier := &stubClassifier{}
	o := NewOrchestrator(OrchestratorDeps{Analyzers: ports.Analyzers{Classifier: classifier}})

	batch := o.Analyze(context.Background(), []domain.RawArticle{{Title: "Rover lands", Content: longBody}},
		domain.NewKindSet(domain.KindCategory, domain.KindSentiment))

	a := batch.Articles[0]
	if _, ok := a.Result(domain.KindSentiment); ok {
		t.Fatal("sentiment has no adapter and must not be recorded")
	}
	if _, ok := a.Result(domain.KindSummary); ok {
		t.Fatal("summary was not enabled")
	}
	cat, ok := a.Result(domain.KindCategory)
	if !ok || !cat.OK() || cat.Category.Label != "science" {
		t.Fatalf("expected category result, got %+v", cat)
	}
	if classifier.calls.Load() != 1 {
		t.Fatalf("expected one classify call, got %d", classifier.calls.Load())
	}
}

func TestAnalyzeClustersBatch(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(OrchestratorDeps{
		Clusterer: &stubClusterer{labels: []int{7, 3, 7}},
		ClusterK:  2,
	})

	batch := o.Analyze(context.Background(), []domain.RawArticle{
		{Title: "a"}, {Title: "b"}, {Title: "c"},
	}, domain.NewKindSet())

	if len(batch.Clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %+v", batch.Clusters)
	}
	if got := batch.Clusters[0].Articles; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("unexpected first cluster %+v", batch.Clusters[0])
	}
}

func TestAnalyzeClusterFailureLeavesClustersEmpty(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(OrchestratorDeps{
		Clusterer: &stubClusterer{err: errModel},
		ClusterK:  2,
	})

	batch := o.Analyze(context.Background(), []domain.RawArticle{{Title: "a"}, {Title: "b"}}, domain.NewKindSet())
	if len(batch.Clusters) != 0 {
		t.Fatalf("expected no clusters, got %+v", batch.Clusters)
	}
	if len(batch.Articles) != 2 {
		t.Fatalf("clustering failure must not drop articles")
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	t.Parallel()

	batch := NewOrchestrator(OrchestratorDeps{}).Analyze(context.Background(), nil, allKinds())
	if !batch.Empty() {
		t.Fatalf("expected empty batch, got %d articles", len(batch.Articles))
	}
}

func TestExtractiveCapKeepsWholeSentences(t *testing.T) {
	t.Parallel()

	body := "The orbital research station completed its longest continuous mission this year after crews spent eleven months running experiments on plant growth in microgravity. " +
		"Mission controllers in Houston reported that every scheduled experiment on plant growth was finished ahead of the planned timeline for the station crew. " +
		"Officials praised the crew for completing the research program on plant growth despite two unexpected equipment failures aboard the orbital station. " +
		"Engineers on the ground replaced a faulty cooling pump remotely and restored full power to the laboratory modules within a single working shift. " +
		"The next crew is scheduled to launch in the spring and will continue the plant growth studies that began during the record setting mission."

	sentences := text.SplitSentences(body)
	o := NewOrchestrator(OrchestratorDeps{SummaryTopN: 3, SummaryMaxChars: 400})

	res := o.Summarize(context.Background(), body)
	if !res.OK() || res.Summary.Method != domain.SummaryExtractive {
		t.Fatalf("expected extractive summary, got %+v", res)
	}
	if n := len([]rune(res.Summary.Text)); n > 400 {
		t.Fatalf("summary length %d exceeds cap", n)
	}

	picked := text.SplitSentences(res.Summary.Text)
	last := -1
	for _, s := range picked {
		idx := -1
		for i, original := range sentences {
			if s == original {
				idx = i
				break
			}
		}
		if idx < 0 {
			t.Fatalf("summary contains a sentence fragment %q", s)
		}
		if idx <= last {
			t.Fatalf("summary not in original order: %q", res.Summary.Text)
		}
		last = idx
	}
}
