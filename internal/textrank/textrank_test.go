package textrank

import (
	"strings"
	"testing"
)

const fiveSentences = "The central bank raised interest rates again on Tuesday. " +
	"Economists expected the central bank to pause its rate increases. " +
	"Markets fell sharply after the interest rate decision was announced. " +
	"A local bakery won a regional award for its sourdough bread. " +
	"Analysts say further interest rate increases by the bank remain possible."

func TestSentencesReturnsOrderedSubsequence(t *testing.T) {
	t.Parallel()

	original := []string{
		"The central bank raised interest rates again on Tuesday.",
		"Economists expected the central bank to pause its rate increases.",
		"Markets fell sharply after the interest rate decision was announced.",
		"A local bakery won a regional award for its sourdough bread.",
		"Analysts say further interest rate increases by the bank remain possible.",
	}

	got := New().Sentences(fiveSentences, 3)
	if len(got) == 0 || len(got) > 3 {
		t.Fatalf("expected 1..3 sentences, got %d: %q", len(got), got)
	}

	pos := -1
	for _, sentence := range got {
		idx := indexOf(original, sentence)
		if idx < 0 {
			t.Fatalf("sentence %q is not an original sentence", sentence)
		}
		if idx <= pos {
			t.Fatalf("sentences out of original order: %q", got)
		}
		pos = idx
	}

	for _, sentence := range got {
		if strings.Contains(sentence, "bakery") {
			t.Fatalf("unrelated sentence ranked in top 3: %q", got)
		}
	}
}

func TestSentencesIsDeterministic(t *testing.T) {
	t.Parallel()

	s := New()
	first := s.Summarize(fiveSentences, 2)
	for i := 0; i < 5; i++ {
		if got := s.Summarize(fiveSentences, 2); got != first {
			t.Fatalf("run %d differs: %q vs %q", i, got, first)
		}
	}
}

func TestSentencesNeedsTwoUsableSentences(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"Only one sentence in this article body.",
		"Short. Too short. Nope.",
	}
	for _, input := range tests {
		if got := New().Sentences(input, 3); got != nil {
			t.Errorf("Sentences(%q) = %q, want nil", input, got)
		}
	}
}

func TestSentencesTopNLargerThanInput(t *testing.T) {
	t.Parallel()

	input := "The rover landed on Mars today. The rover sent its first images home."
	got := New().Sentences(input, 5)
	if len(got) != 2 {
		t.Fatalf("expected both sentences, got %q", got)
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	if got := similarity([]string{"bank", "rates"}, []string{"weather"}); got != 0 {
		t.Fatalf("disjoint similarity = %v", got)
	}
	if got := similarity([]string{"bank"}, []string{"bank"}); got != 1 {
		t.Fatalf("single-token similarity = %v", got)
	}
	if got := similarity([]string{"bank", "rates", "rise"}, []string{"bank", "rates"}); got <= 0 {
		t.Fatalf("overlap similarity = %v", got)
	}
}

func indexOf(items []string, s string) int {
	for i, item := range items {
		if item == s {
			return i
		}
	}
	return -1
}

func TestSentencesWithinKeepsWholeSentences(t *testing.T) {
	t.Parallel()

	original := strings.SplitAfter(fiveSentences, ". ")
	for i := range original {
		original[i] = strings.TrimSpace(original[i])
	}

	got := New().SentencesWithin(fiveSentences, 3, 130)
	if len(got) == 0 {
		t.Fatal("expected at least one sentence")
	}
	if n := len([]rune(strings.Join(got, " "))); n > 130 {
		t.Fatalf("joined length %d exceeds cap: %q", n, got)
	}
	for _, s := range got {
		found := false
		for _, o := range original {
			if s == o {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("%q is not an original sentence", s)
		}
	}
}

func TestSentencesWithinTruncatesOversizedTopSentence(t *testing.T) {
	t.Parallel()

	got := New().SentencesWithin(fiveSentences, 3, 20)
	if len(got) != 1 || len([]rune(got[0])) > 20 {
		t.Fatalf("expected one truncated sentence, got %q", got)
	}
}
