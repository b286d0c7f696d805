package domain

import (
	"fmt"
	"strings"
	"time"
)

// AnalyzerKind names one kind of derived insight.
type AnalyzerKind string

const (
	KindSummary   AnalyzerKind = "summary"
	KindSentiment AnalyzerKind = "sentiment"
	KindEntities  AnalyzerKind = "entities"
	KindKeywords  AnalyzerKind = "keywords"
	KindCategory  AnalyzerKind = "category"
)

// AllKinds lists every analyzer kind in a stable order.
var AllKinds = []AnalyzerKind{KindSummary, KindSentiment, KindEntities, KindKeywords, KindCategory}

// ParseKind resolves a configured analyzer name.
func ParseKind(name string) (AnalyzerKind, error) {
	kind := AnalyzerKind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range AllKinds {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown analyzer kind %q", name)
}

// KindSet is the capability set resolved once at startup.
type KindSet map[AnalyzerKind]struct{}

// NewKindSet builds a set from the given kinds.
func NewKindSet(kinds ...AnalyzerKind) KindSet {
	set := make(KindSet, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return set
}

// Has reports whether kind is enabled.
func (s KindSet) Has(kind AnalyzerKind) bool {
	_, ok := s[kind]
	return ok
}

// Ordered returns the enabled kinds in AllKinds order.
func (s KindSet) Ordered() []AnalyzerKind {
	out := make([]AnalyzerKind, 0, len(s))
	for _, k := range AllKinds {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// ResultStatus tells which arm of AnalyzerResult is populated.
type ResultStatus string

const (
	StatusOK     ResultStatus = "ok"
	StatusAbsent ResultStatus = "absent"
	StatusFailed ResultStatus = "failed"
)

// FailureReason is the closed set of analyzer failure causes.
type FailureReason string

const (
	ReasonTimeout  FailureReason = "timeout"
	ReasonCanceled FailureReason = "canceled"
	ReasonError    FailureReason = "error"
	ReasonPanic    FailureReason = "panic"
)

// AnalyzerFailure records why one analyzer produced nothing for one article.
type AnalyzerFailure struct {
	Kind   AnalyzerKind  `json:"kind"`
	Reason FailureReason `json:"reason"`
	Detail string        `json:"detail,omitempty"`
}

func (f AnalyzerFailure) String() string {
	if f.Detail == "" {
		return fmt.Sprintf("%s analyzer failed: %s", f.Kind, f.Reason)
	}
	return fmt.Sprintf("%s analyzer failed: %s: %s", f.Kind, f.Reason, f.Detail)
}

// SummaryMethod tells which summarizer produced the text.
type SummaryMethod string

const (
	SummaryAbstractive SummaryMethod = "abstractive"
	SummaryExtractive  SummaryMethod = "extractive"
)

// Summary is the payload of the summary analyzer.
type Summary struct {
	Text   string        `json:"text"`
	Method SummaryMethod `json:"method"`
}

// SentimentLabel is the label reported by the sentiment analyzer.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// Sentiment is the payload of the sentiment analyzer; Score lies in [-1,1].
type Sentiment struct {
	Label SentimentLabel `json:"label"`
	Score float64        `json:"score"`
}

// Entity is one named-entity mention.
type Entity struct {
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Salience *float64 `json:"salience,omitempty"`
}

// Keyword is one ranked keyword with its weight.
type Keyword struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// Category is the payload of the title classifier.
type Category struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// AnalyzerResult is a closed variant: exactly one payload field is set when
// Status is StatusOK, Failure is set when Status is StatusFailed.
type AnalyzerResult struct {
	Kind      AnalyzerKind     `json:"kind"`
	Status    ResultStatus     `json:"status"`
	Summary   *Summary         `json:"summary,omitempty"`
	Sentiment *Sentiment       `json:"sentiment,omitempty"`
	Entities  []Entity         `json:"entities,omitempty"`
	Keywords  []Keyword        `json:"keywords,omitempty"`
	Category  *Category        `json:"category,omitempty"`
	Failure   *AnalyzerFailure `json:"failure,omitempty"`
}

// OK reports whether the result carries a payload.
func (r AnalyzerResult) OK() bool {
	return r.Status == StatusOK
}

// Absent builds the empty arm for kind.
func Absent(kind AnalyzerKind) AnalyzerResult {
	return AnalyzerResult{Kind: kind, Status: StatusAbsent}
}

// Failed builds the failure arm for kind.
func Failed(kind AnalyzerKind, reason FailureReason, detail string) AnalyzerResult {
	return AnalyzerResult{
		Kind:    kind,
		Status:  StatusFailed,
		Failure: &AnalyzerFailure{Kind: kind, Reason: reason, Detail: detail},
	}
}

// SummaryResult wraps a summary payload; empty text is Absent.
func SummaryResult(text string, method SummaryMethod) AnalyzerResult {
	if strings.TrimSpace(text) == "" {
		return Absent(KindSummary)
	}
	return AnalyzerResult{Kind: KindSummary, Status: StatusOK, Summary: &Summary{Text: text, Method: method}}
}

// SentimentResult wraps a sentiment payload, clamping the score into [-1,1].
func SentimentResult(label SentimentLabel, score float64) AnalyzerResult {
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return AnalyzerResult{Kind: KindSentiment, Status: StatusOK, Sentiment: &Sentiment{Label: label, Score: score}}
}

// EntitiesResult wraps entity mentions; no mentions is Absent.
func EntitiesResult(entities []Entity) AnalyzerResult {
	if len(entities) == 0 {
		return Absent(KindEntities)
	}
	return AnalyzerResult{Kind: KindEntities, Status: StatusOK, Entities: entities}
}

// KeywordsResult wraps keywords; no keywords is Absent.
func KeywordsResult(keywords []Keyword) AnalyzerResult {
	if len(keywords) == 0 {
		return Absent(KindKeywords)
	}
	return AnalyzerResult{Kind: KindKeywords, Status: StatusOK, Keywords: keywords}
}

// CategoryResult wraps a category; an empty label is Absent.
func CategoryResult(label string, confidence float64) AnalyzerResult {
	label = strings.TrimSpace(label)
	if label == "" {
		return Absent(KindCategory)
	}
	return AnalyzerResult{Kind: KindCategory, Status: StatusOK, Category: &Category{Label: label, Confidence: confidence}}
}

// AnalyzedArticle is one article plus the results of every enabled analyzer.
type AnalyzedArticle struct {
	Article RawArticle                      `json:"article"`
	Text    NormalizedText                  `json:"text"`
	Results map[AnalyzerKind]AnalyzerResult `json:"results"`
}

// Result returns the result for kind; ok is false when the kind was not run.
func (a AnalyzedArticle) Result(kind AnalyzerKind) (AnalyzerResult, bool) {
	r, ok := a.Results[kind]
	return r, ok
}

// Sentiment returns the sentiment payload when present.
func (a AnalyzedArticle) Sentiment() (Sentiment, bool) {
	r, ok := a.Results[KindSentiment]
	if !ok || !r.OK() || r.Sentiment == nil {
		return Sentiment{}, false
	}
	return *r.Sentiment, true
}

// Entities returns the entity payload when present.
func (a AnalyzedArticle) Entities() ([]Entity, bool) {
	r, ok := a.Results[KindEntities]
	if !ok || !r.OK() {
		return nil, false
	}
	return r.Entities, true
}

// Keywords returns the keyword payload when present.
func (a AnalyzedArticle) Keywords() ([]Keyword, bool) {
	r, ok := a.Results[KindKeywords]
	if !ok || !r.OK() {
		return nil, false
	}
	return r.Keywords, true
}

// Cluster groups article indexes of one batch.
type Cluster struct {
	ID       int   `json:"id"`
	Articles []int `json:"articles"`
}

// AnalyzedBatch is the ordered output of one orchestration pass.
type AnalyzedBatch struct {
	ID          string            `json:"id"`
	Fingerprint string            `json:"fingerprint"`
	Articles    []AnalyzedArticle `json:"articles"`
	Clusters    []Cluster         `json:"clusters,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Empty reports the explicit zero-match outcome.
func (b AnalyzedBatch) Empty() bool {
	return len(b.Articles) == 0
}
