// Package textrank implements extractive summarization over a sentence
// similarity graph.
package textrank

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"NewsScope/internal/text"
)

const (
	DefaultTopN      = 3
	DefaultDamping   = 0.85
	DefaultTolerance = 1e-4
	DefaultMaxIter   = 100

	// sentences with fewer words carry too little signal to rank
	minSentenceWords = 4
)

// Summarizer ranks sentences with a weighted PageRank over lexical overlap.
type Summarizer struct {
	tokenizer *text.Tokenizer
	damping   float64
	tolerance float64
	maxIter   int
}

// New returns a Summarizer with the default damping, tolerance and
// iteration cap.
func New() *Summarizer {
	return &Summarizer{
		tokenizer: text.Default(),
		damping:   DefaultDamping,
		tolerance: DefaultTolerance,
		maxIter:   DefaultMaxIter,
	}
}

// Sentences returns the topN highest ranked sentences in their original
// order. It returns nil when fewer than two usable sentences exist.
func (s *Summarizer) Sentences(body string, topN int) []string {
	return s.SentencesWithin(body, topN, 0)
}

// SentencesWithin is Sentences with a length cap: sentences are taken in
// rank order while the space-joined result stays within maxChars runes,
// so the output is always whole sentences. When the best sentence alone
// exceeds the cap it is returned word-truncated. maxChars <= 0 means no cap.
func (s *Summarizer) SentencesWithin(body string, topN, maxChars int) []string {
	if topN <= 0 {
		topN = DefaultTopN
	}

	var sentences []string
	for _, sentence := range text.SplitSentences(body) {
		if text.WordCount(sentence) >= minSentenceWords {
			sentences = append(sentences, sentence)
		}
	}
	if len(sentences) < 2 {
		return nil
	}

	scores := s.rank(sentences)

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if topN > len(order) {
		topN = len(order)
	}

	if maxChars > 0 && utf8.RuneCountInString(sentences[order[0]]) > maxChars {
		return []string{text.Truncate(sentences[order[0]], maxChars)}
	}

	var picked []int
	used := 0
	for _, idx := range order[:topN] {
		n := utf8.RuneCountInString(sentences[idx])
		if len(picked) > 0 {
			n++ // joining space
		}
		if maxChars > 0 && used+n > maxChars {
			continue
		}
		picked = append(picked, idx)
		used += n
	}
	sort.Ints(picked)

	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = sentences[idx]
	}
	return out
}

// Summarize joins Sentences with single spaces.
func (s *Summarizer) Summarize(body string, topN int) string {
	return strings.Join(s.Sentences(body, topN), " ")
}

// SummarizeWithin joins SentencesWithin with single spaces.
func (s *Summarizer) SummarizeWithin(body string, topN, maxChars int) string {
	return strings.Join(s.SentencesWithin(body, topN, maxChars), " ")
}

func (s *Summarizer) rank(sentences []string) []float64 {
	n := len(sentences)
	tokens := make([][]string, n)
	for i, sentence := range sentences {
		tokens[i] = s.tokenizer.Unique(sentence)
	}

	weights := make([][]float64, n)
	outSum := make([]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := similarity(tokens[i], tokens[j])
			weights[i][j] = w
			weights[j][i] = w
			outSum[i] += w
			outSum[j] += w
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}
	base := (1 - s.damping) / float64(n)

	for iter := 0; iter < s.maxIter; iter++ {
		next := make([]float64, n)
		delta := 0.0
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				if weights[j][i] == 0 || outSum[j] == 0 {
					continue
				}
				sum += weights[j][i] / outSum[j] * scores[j]
			}
			next[i] = base + s.damping*sum
			delta = math.Max(delta, math.Abs(next[i]-scores[i]))
		}
		scores = next
		if delta < s.tolerance {
			break
		}
	}
	return scores
}

// similarity is the shared-token count normalized by the log lengths of
// both sentences.
func similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, tok := range a {
		set[tok] = struct{}{}
	}
	shared := 0
	for _, tok := range b {
		if _, ok := set[tok]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}

	norm := math.Log(float64(len(a))) + math.Log(float64(len(b)))
	if norm <= 0 {
		return float64(shared)
	}
	return float64(shared) / norm
}
