package text

import (
	"strings"
	"unicode"
)

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	stopwords map[string]struct{}
	minLen    int
	alphaOnly bool
}

// Option tunes a Tokenizer.
type Option func(*Tokenizer)

// WithMinLength drops tokens shorter than n runes.
func WithMinLength(n int) Option {
	return func(t *Tokenizer) { t.minLen = n }
}

// WithAlphaOnly drops tokens containing anything but letters.
func WithAlphaOnly() Option {
	return func(t *Tokenizer) { t.alphaOnly = true }
}

// NewTokenizer creates a new tokenizer with the given stopword list
func NewTokenizer(stopwords []string, opts ...Option) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	t := &Tokenizer{stopwords: stops, minLen: 2}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Default returns a tokenizer over the English stop list that keeps
// tokens of at least three runes.
func Default() *Tokenizer {
	return NewTokenizer(EnglishStopwords, WithMinLength(3))
}

// Tokenize splits text into lowercase tokens, removing stopwords.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if word := t.processToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// Unique returns the distinct tokens of text in first-seen order.
func (t *Tokenizer) Unique(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range t.Tokenize(text) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// IsStopword reports whether word is filtered.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[strings.ToLower(word)]
	return ok
}

func (t *Tokenizer) processToken(token string) string {
	word := strings.Trim(token, "-'")
	word = strings.TrimSuffix(word, "'s")
	for strings.Contains(word, "--") {
		word = strings.ReplaceAll(word, "--", "-")
	}

	if len([]rune(word)) < t.minLen {
		return ""
	}
	if isNumericOnly(word) {
		return ""
	}
	if t.alphaOnly && !isAlpha(word) {
		return ""
	}
	if t.IsStopword(word) {
		return ""
	}
	return word
}

func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
