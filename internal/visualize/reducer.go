// Package visualize derives chart-ready datasets from an analyzed batch.
// Every function here is pure and deterministic.
package visualize

import (
	"math"
	"sort"
	"strings"

	"NewsScope/internal/domain"
	"NewsScope/internal/text"
)

const (
	DefaultTopKeywords = 50
	EntitiesPerArticle = 3

	positiveThreshold = 0.3
	negativeThreshold = -0.3
)

// Reducer builds the VisualizationDataset for a batch.
type Reducer struct {
	tokenizer   *text.Tokenizer
	topKeywords int
}

// NewReducer returns a Reducer keeping the default top-50 keywords.
func NewReducer() *Reducer {
	return &Reducer{tokenizer: text.Default(), topKeywords: DefaultTopKeywords}
}

// Reduce never re-invokes analyzers and never mutates batch.
func (r *Reducer) Reduce(batch domain.AnalyzedBatch) domain.VisualizationDataset {
	return domain.VisualizationDataset{
		Keywords:  r.Keywords(batch),
		Sentiment: SentimentMatrix(batch),
		Entities:  EntityGraph(batch),
	}
}

// Keywords sums per-article keyword counts across the batch. Articles
// without a keyword result contribute a token count over their text.
func (r *Reducer) Keywords(batch domain.AnalyzedBatch) []domain.WordCount {
	counts := make(map[string]int)
	var order []string

	add := func(word string, n int) {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" || n <= 0 {
			return
		}
		if _, seen := counts[word]; !seen {
			order = append(order, word)
		}
		counts[word] += n
	}

	for _, article := range batch.Articles {
		if keywords, ok := article.Keywords(); ok {
			for _, kw := range keywords {
				add(kw.Word, keywordCount(kw.Weight))
			}
			continue
		}
		for _, tok := range r.tokenizer.Tokenize(article.Text.Lower) {
			add(tok, 1)
		}
	}

	out := make([]domain.WordCount, len(order))
	for i, word := range order {
		out[i] = domain.WordCount{Word: word, Count: counts[word]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > r.topKeywords {
		out = out[:r.topKeywords]
	}
	return out
}

// keywordCount turns an analyzer weight into a frequency contribution.
// Fractional relevance weights count as one mention.
func keywordCount(weight float64) int {
	if weight >= 1 {
		return int(math.Round(weight))
	}
	return 1
}

// Bucket classifies one sentiment score.
func Bucket(score float64) domain.SentimentBucket {
	switch {
	case score > positiveThreshold:
		return domain.BucketPositive
	case score < negativeThreshold:
		return domain.BucketNegative
	default:
		return domain.BucketNeutral
	}
}

// SentimentMatrix counts buckets over all articles; articles without a
// score are neutral and excluded from the mean.
func SentimentMatrix(batch domain.AnalyzedBatch) domain.SentimentMatrix {
	var m domain.SentimentMatrix
	sum := 0.0
	for _, article := range batch.Articles {
		s, ok := article.Sentiment()
		if !ok {
			m.Neutral++
			continue
		}
		switch Bucket(s.Score) {
		case domain.BucketPositive:
			m.Positive++
		case domain.BucketNegative:
			m.Negative++
		default:
			m.Neutral++
		}
		m.Scored++
		m.Scores = append(m.Scores, s.Score)
		sum += s.Score
	}
	if m.Scored > 0 {
		m.Mean = sum / float64(m.Scored)
	}
	return m
}

// EntityGraph links the top entities of each article. Nodes are keyed by
// exact entity text, so "NASA" and "Nasa" are distinct; each unordered
// pair in one article adds one to its edge.
func EntityGraph(batch domain.AnalyzedBatch) domain.EntityGraph {
	var g domain.EntityGraph
	nodeIndex := make(map[string]int)
	edgeIndex := make(map[[2]int]int)

	for _, article := range batch.Articles {
		entities, ok := article.Entities()
		if !ok {
			continue
		}

		var ids []int
		for _, e := range topEntities(entities, EntitiesPerArticle) {
			id, seen := nodeIndex[e.Text]
			if !seen {
				id = len(g.Nodes)
				nodeIndex[e.Text] = id
				g.Nodes = append(g.Nodes, domain.GraphNode{ID: e.Text, Type: e.Type})
			}
			ids = append(ids, id)
		}

		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := ids[i], ids[j]
				if a == b {
					continue
				}
				if a > b {
					a, b = b, a
				}
				pair := [2]int{a, b}
				pos, seen := edgeIndex[pair]
				if !seen {
					pos = len(g.Edges)
					edgeIndex[pair] = pos
					g.Edges = append(g.Edges, domain.GraphEdge{Source: g.Nodes[a].ID, Target: g.Nodes[b].ID})
				}
				g.Edges[pos].Weight++
			}
		}
	}
	return g
}

// topEntities returns up to n distinct entities, highest salience first
// when salience is reported, otherwise in analyzer order.
func topEntities(entities []domain.Entity, n int) []domain.Entity {
	distinct := make([]domain.Entity, 0, len(entities))
	seen := make(map[string]struct{})
	for _, e := range entities {
		key := strings.TrimSpace(e.Text)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		e.Text = key
		distinct = append(distinct, e)
	}

	sort.SliceStable(distinct, func(i, j int) bool {
		return salience(distinct[i]) > salience(distinct[j])
	})
	if len(distinct) > n {
		distinct = distinct[:n]
	}
	return distinct
}

func salience(e domain.Entity) float64 {
	if e.Salience == nil {
		return 0
	}
	return *e.Salience
}
