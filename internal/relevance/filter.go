package relevance

import (
	"sort"
	"strings"

	"NewsScope/internal/domain"
)

// TopicCap bounds how many articles a topic listing passes to analysis.
const TopicCap = 10

// Filter bounds the analyzed set before orchestration. Input order is
// preserved in both modes.
func Filter(articles []domain.RawArticle, mode domain.Mode, query string) []domain.RawArticle {
	if mode == domain.ModeSearch {
		return Strict(articles, query)
	}
	return Lenient(articles, TopicCap)
}

// Strict keeps an article iff every whitespace-delimited token of the
// lowercased query is a substring of the lowercased title. An empty result
// is valid.
func Strict(articles []domain.RawArticle, query string) []domain.RawArticle {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	out := make([]domain.RawArticle, 0, len(articles))
	for _, article := range articles {
		title := strings.ToLower(article.Title)
		if containsAll(title, terms) {
			out = append(out, article)
		}
	}
	return out
}

// Lenient passes through the limit most recent articles. Recency only picks
// which articles survive; survivors keep their input order.
func Lenient(articles []domain.RawArticle, limit int) []domain.RawArticle {
	if limit <= 0 || len(articles) <= limit {
		return append([]domain.RawArticle(nil), articles...)
	}

	idx := make([]int, len(articles))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return articles[idx[a]].PublishedAt.After(articles[idx[b]].PublishedAt)
	})

	keep := make([]bool, len(articles))
	for _, i := range idx[:limit] {
		keep[i] = true
	}

	out := make([]domain.RawArticle, 0, limit)
	for i, article := range articles {
		if keep[i] {
			out = append(out, article)
		}
	}
	return out
}

// Rank orders strict matches by how well their titles match the query:
// exact phrase (+10, multi-word queries only), 2 per term hit, and +3 when
// the title starts with the query. Equal scores keep input order.
func Rank(articles []domain.RawArticle, query string) []domain.RawArticle {
	phrase := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	terms := strings.Fields(phrase)
	if len(terms) == 0 {
		return articles
	}

	scores := make([]int, len(articles))
	for i, article := range articles {
		scores[i] = score(strings.ToLower(article.Title), phrase, terms)
	}

	idx := make([]int, len(articles))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]domain.RawArticle, len(articles))
	for pos, i := range idx {
		out[pos] = articles[i]
	}
	return out
}

func score(title, phrase string, terms []string) int {
	s := 0
	if len(terms) > 1 && strings.Contains(title, phrase) {
		s += 10
	}
	for _, term := range terms {
		if strings.Contains(title, term) {
			s += 2
		}
	}
	if strings.HasPrefix(title, phrase) {
		s += 3
	}
	return s
}

func containsAll(title string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(title, term) {
			return false
		}
	}
	return true
}
