package domain

import (
	"strings"
	"time"
)

// RawArticle is a core entity describing metadata fetched from providers.
type RawArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// NormalizedText is the cleaned article body shared by all analyzers.
type NormalizedText struct {
	Display string `json:"display"`
	Lower   string `json:"-"`
}

// NewNormalizedText keeps the display form and derives the matching form.
func NewNormalizedText(display string) NormalizedText {
	return NormalizedText{Display: display, Lower: strings.ToLower(display)}
}

// Empty reports whether there is nothing to analyze.
func (n NormalizedText) Empty() bool {
	return n.Display == ""
}

// Mode selects how a request is matched against retrieved titles.
type Mode string

const (
	ModeTopic  Mode = "topic"
	ModeSearch Mode = "search"
)

// Topics lists the predefined topics offered to clients.
var Topics = []string{
	"business", "technology", "science", "health",
	"sports", "entertainment", "politics", "world",
}

// Request is one user request handed to the pipeline.
type Request struct {
	Mode  Mode
	Topic string
	Query string
}

// Term returns the topic or query depending on the mode.
func (r Request) Term() string {
	if r.Mode == ModeSearch {
		return r.Query
	}
	return r.Topic
}

// Fingerprint derives the cache key for the request.
func (r Request) Fingerprint() (string, error) {
	term := strings.Join(strings.Fields(strings.ToLower(r.Term())), " ")
	if term == "" {
		return "", ErrInvalidFingerprint
	}

	switch r.Mode {
	case ModeTopic, ModeSearch:
		return string(r.Mode) + ":" + term, nil
	default:
		return "", ErrInvalidFingerprint
	}
}
