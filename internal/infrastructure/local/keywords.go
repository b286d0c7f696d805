package local

import (
	"context"
	"sort"

	"NewsScope/internal/domain"
	"NewsScope/internal/ports"
	"NewsScope/internal/text"
)

const defaultKeywordLimit = 20

// Keywords ranks alphabetic tokens of four or more letters by frequency.
type Keywords struct {
	tokenizer *text.Tokenizer
	limit     int
}

var _ ports.KeywordExtractor = (*Keywords)(nil)

// NewKeywords returns the frequency extractor keeping the top 20 words.
func NewKeywords() *Keywords {
	return &Keywords{
		tokenizer: text.NewTokenizer(text.EnglishStopwords, text.WithAlphaOnly(), text.WithMinLength(4)),
		limit:     defaultKeywordLimit,
	}
}

// Keywords returns words ordered by count, ties in first-seen order. The
// weight is the raw count.
func (k *Keywords) Keywords(ctx context.Context, body string) ([]domain.Keyword, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var order []string
	for _, tok := range k.tokenizer.Tokenize(body) {
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > k.limit {
		order = order[:k.limit]
	}

	out := make([]domain.Keyword, len(order))
	for i, word := range order {
		out[i] = domain.Keyword{Word: word, Weight: float64(counts[word])}
	}
	return out, nil
}
