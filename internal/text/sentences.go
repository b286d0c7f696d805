package text

import (
	"strings"
	"unicode"
)

// SplitSentences splits text at ., ! or ? followed by whitespace or the end
// of input. Terminal punctuation stays with its sentence.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// swallow runs like "?!" or "..."
		j := i
		for j+1 < len(runes) && (runes[j+1] == '.' || runes[j+1] == '!' || runes[j+1] == '?' || runes[j+1] == '"' || runes[j+1] == '\'') {
			j++
		}
		if j+1 < len(runes) && !unicode.IsSpace(runes[j+1]) {
			i = j
			continue
		}
		if s := strings.TrimSpace(string(runes[start : j+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = j + 1
		i = j
	}

	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

// WordCount returns the number of whitespace-delimited words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Truncate cuts s to at most max runes, backing off to the last word
// boundary when one exists in the kept part.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
