package domain

// WordCount is one entry of the keyword-frequency dataset.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SentimentBucket classifies a sentiment score.
type SentimentBucket string

const (
	BucketPositive SentimentBucket = "positive"
	BucketNegative SentimentBucket = "negative"
	BucketNeutral  SentimentBucket = "neutral"
)

// SentimentMatrix holds per-bucket counts and the mean over scored articles.
type SentimentMatrix struct {
	Positive int       `json:"positive"`
	Negative int       `json:"negative"`
	Neutral  int       `json:"neutral"`
	Scored   int       `json:"scored"`
	Mean     float64   `json:"mean"`
	Scores   []float64 `json:"scores"`
}

// Count returns the count for one bucket.
func (m SentimentMatrix) Count(b SentimentBucket) int {
	switch b {
	case BucketPositive:
		return m.Positive
	case BucketNegative:
		return m.Negative
	default:
		return m.Neutral
	}
}

// GraphNode is one distinct entity.
type GraphNode struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// GraphEdge is an undirected co-occurrence edge; Source precedes Target in
// node order.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// EntityGraph is the entity co-occurrence graph.
type EntityGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Weight returns the edge weight between a and b regardless of direction.
func (g EntityGraph) Weight(a, b string) int {
	for _, e := range g.Edges {
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			return e.Weight
		}
	}
	return 0
}

// VisualizationDataset is derived from one AnalyzedBatch.
type VisualizationDataset struct {
	Keywords  []WordCount     `json:"keywords"`
	Sentiment SentimentMatrix `json:"sentiment"`
	Entities  EntityGraph     `json:"entities"`
}
