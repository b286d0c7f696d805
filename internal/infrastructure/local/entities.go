package local

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"NewsScope/internal/domain"
	"NewsScope/internal/ports"
	"NewsScope/internal/text"
)

const defaultEntityLimit = 10

var orgSuffixes = map[string]struct{}{
	"inc": {}, "corp": {}, "corporation": {}, "ltd": {}, "llc": {}, "plc": {},
	"bank": {}, "university": {}, "agency": {}, "group": {}, "company": {},
	"council": {}, "ministry": {}, "party": {}, "association": {}, "institute": {},
	"department": {}, "commission": {}, "committee": {}, "foundation": {},
}

// Entities finds runs of capitalized words and treats each distinct run
// as an entity mention.
type Entities struct {
	tokenizer *text.Tokenizer
	limit     int
}

var _ ports.EntityExtractor = (*Entities)(nil)

// NewEntities returns the capitalized-span extractor.
func NewEntities() *Entities {
	return &Entities{tokenizer: text.NewTokenizer(text.EnglishStopwords), limit: defaultEntityLimit}
}

// Entities returns distinct spans ordered by mention count; salience is the
// share of all mentions.
func (e *Entities) Entities(ctx context.Context, body string) ([]domain.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spans := e.spans(body)
	if len(spans) == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	display := make(map[string]string)
	var order []string
	for _, span := range spans {
		key := strings.ToLower(span)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			display[key] = span
		}
		counts[key]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > e.limit {
		order = order[:e.limit]
	}

	total := float64(len(spans))
	out := make([]domain.Entity, len(order))
	for i, key := range order {
		salience := float64(counts[key]) / total
		out[i] = domain.Entity{
			Text:     display[key],
			Type:     entityType(display[key]),
			Salience: &salience,
		}
	}
	return out, nil
}

func (e *Entities) spans(body string) []string {
	var spans []string
	var current []string
	sentenceStart := true
	spanAtStart := false

	flush := func() {
		// leading stop words such as "The" are not part of the name
		for len(current) > 0 && e.tokenizer.IsStopword(current[0]) {
			current = current[1:]
		}
		// a lone capitalized word opening a sentence is usually not a name
		lone := len(current) == 1 && spanAtStart && !isAcronym(current[0])
		if len(current) > 0 && !lone {
			spans = append(spans, strings.Join(current, " "))
		}
		current = current[:0]
	}

	for _, field := range strings.Fields(body) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		word = strings.TrimSuffix(word, "'s")
		word = strings.TrimSuffix(word, "’s")
		endsClause := strings.ContainsAny(field[len(field)-1:], ".,;:!?\"')")

		if word != "" && isCapitalized(word) && !(sentenceStart && len(current) == 0 && e.tokenizer.IsStopword(word)) {
			if len(current) == 0 {
				spanAtStart = sentenceStart
			}
			current = append(current, word)
		} else {
			flush()
		}
		if endsClause {
			flush()
		}
		sentenceStart = strings.ContainsAny(field[len(field)-1:], ".!?")
	}
	flush()
	return spans
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

func entityType(span string) string {
	words := strings.Fields(span)
	last := strings.ToLower(strings.TrimSuffix(words[len(words)-1], "."))
	if _, ok := orgSuffixes[last]; ok {
		return "ORG"
	}
	for _, w := range words {
		if isAcronym(w) {
			return "ORG"
		}
	}
	return "MISC"
}

func isAcronym(w string) bool {
	return len(w) >= 2 && strings.ToUpper(w) == w && strings.IndexFunc(w, unicode.IsLetter) >= 0
}
