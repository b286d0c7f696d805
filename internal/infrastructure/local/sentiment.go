// Package local holds in-process analyzers used when no model service is
// configured. They are deterministic and need no network.
package local

import (
	"context"
	"math"

	"NewsScope/internal/domain"
	"NewsScope/internal/ports"
	"NewsScope/internal/text"
)

const (
	// normalization constant for the compound score
	compoundAlpha = 15.0
	negationScale = -0.74
	negationReach = 3
	labelCutoff   = 0.05
)

// valence per lowercase token, on a -4..4 scale.
var lexicon = map[string]float64{
	"good": 1.9, "great": 3.1, "excellent": 2.7, "positive": 2.6, "success": 2.7,
	"successful": 2.8, "win": 2.8, "wins": 2.7, "won": 2.7, "gain": 2.4, "gains": 2.4,
	"growth": 1.9, "rise": 1.2, "rises": 1.2, "rally": 2.0, "surge": 1.6, "record": 0.8,
	"strong": 2.3, "improve": 1.9, "improved": 2.1, "recovery": 1.8, "hope": 1.9,
	"hopeful": 2.1, "optimistic": 2.1, "breakthrough": 2.4, "celebrate": 2.7,
	"celebrated": 2.7, "agreement": 1.5, "peace": 2.5, "safe": 1.9, "safely": 2.2,
	"benefit": 2.0, "boost": 1.7, "praise": 2.6, "support": 1.7, "innovative": 2.0,
	"best": 3.2, "happy": 2.7, "love": 3.2, "beat": 0.9, "profit": 1.9, "upgrade": 1.6,

	"bad": -2.5, "terrible": -2.1, "negative": -2.7, "fail": -2.5, "fails": -2.0,
	"failed": -2.3, "failure": -2.3, "loss": -1.3, "losses": -1.7, "lose": -1.7,
	"fall": -1.0, "falls": -1.0, "fell": -1.0, "drop": -1.1, "plunge": -1.9,
	"crash": -2.4, "crisis": -3.1, "war": -2.9, "attack": -2.1, "killed": -3.5,
	"death": -2.9, "deaths": -2.9, "dead": -3.3, "injured": -2.1, "fear": -2.2,
	"fears": -1.8, "concern": -0.9, "concerns": -1.0, "warning": -1.4, "threat": -2.4,
	"weak": -1.9, "decline": -1.2, "recession": -2.5, "fraud": -2.8, "scandal": -2.9,
	"protest": -1.0, "conflict": -1.3, "disaster": -3.1, "collapse": -2.2, "worst": -3.1,
	"sad": -2.1, "angry": -2.3, "lawsuit": -0.9, "ban": -2.6, "cut": -1.1, "cuts": -1.1,
	"layoffs": -2.0, "downgrade": -1.6, "slump": -2.0,
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "without": {}, "neither": {}, "nor": {},
	"isn't": {}, "wasn't": {}, "aren't": {}, "weren't": {}, "don't": {},
	"doesn't": {}, "didn't": {}, "won't": {}, "can't": {}, "cannot": {},
}

// Sentiment scores text against a fixed valence lexicon.
type Sentiment struct {
	tokenizer *text.Tokenizer
}

var _ ports.SentimentAnalyzer = (*Sentiment)(nil)

// NewSentiment returns the lexicon scorer.
func NewSentiment() *Sentiment {
	return &Sentiment{tokenizer: text.NewTokenizer(nil, text.WithMinLength(2))}
}

// Sentiment returns a compound score in [-1,1]. Text without lexicon hits
// scores a neutral 0.
func (s *Sentiment) Sentiment(ctx context.Context, body string) (domain.Sentiment, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Sentiment{}, false, err
	}

	tokens := s.tokenizer.Tokenize(body)
	sum := 0.0
	for i, tok := range tokens {
		v, ok := lexicon[tok]
		if !ok {
			continue
		}
		if negated(tokens, i) {
			v *= negationScale
		}
		sum += v
	}

	score := Compound(sum)
	return domain.Sentiment{Label: Label(score), Score: score}, true, nil
}

// Compound squashes a valence sum into [-1,1].
func Compound(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+compoundAlpha)
}

// Label maps a compound score to its label.
func Label(score float64) domain.SentimentLabel {
	switch {
	case score >= labelCutoff:
		return domain.SentimentPositive
	case score <= -labelCutoff:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func negated(tokens []string, i int) bool {
	start := i - negationReach
	if start < 0 {
		start = 0
	}
	for _, tok := range tokens[start:i] {
		if _, ok := negators[tok]; ok {
			return true
		}
	}
	return false
}
