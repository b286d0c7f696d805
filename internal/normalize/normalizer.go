package normalize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"NewsScope/internal/domain"
)

var (
	urlExpr       = regexp.MustCompile(`https?://\S+`)
	truncateExpr  = regexp.MustCompile(`[\[(]\+\s?\d+\s?chars[\])]`)
	whitespaceExp = regexp.MustCompile(`\s+`)
)

// Normalizer turns raw article fields into plain analyzable text.
type Normalizer struct{}

// New returns a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize picks content, then description, then title, and cleans the
// first non-empty one. It never fails; unusable input gives empty text.
func (n *Normalizer) Normalize(article domain.RawArticle) domain.NormalizedText {
	for _, field := range []string{article.Content, article.Description, article.Title} {
		if cleaned := Clean(field); cleaned != "" {
			return domain.NewNormalizedText(cleaned)
		}
	}
	return domain.NewNormalizedText("")
}

// Clean strips markup, decodes entities, drops URLs and NewsAPI truncation
// markers, and collapses whitespace.
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	plain := stripTags(raw)
	plain = urlExpr.ReplaceAllString(plain, " ")
	plain = truncateExpr.ReplaceAllString(plain, " ")
	plain = whitespaceExp.ReplaceAllString(plain, " ")
	return strings.TrimSpace(plain)
}

// Title decodes entities in a headline without touching its casing.
func Title(raw string) string {
	return strings.TrimSpace(whitespaceExp.ReplaceAllString(html.UnescapeString(raw), " "))
}

func stripTags(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return raw
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return html.UnescapeString(raw)
	}
	doc.Find("script, style, noscript").Remove()

	// Block elements would otherwise glue adjacent words together.
	doc.Find("p, div, br, li, h1, h2, h3, h4, h5, h6, tr, td").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return doc.Text()
}
