package text

// EnglishStopwords is the fixed stop list used for keyword counting and
// sentence similarity.
var EnglishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an",
	"and", "any", "are", "aren't", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "could", "did",
	"didn't", "do", "does", "doesn't", "doing", "don't", "down", "during", "each",
	"few", "for", "from", "further", "had", "has", "have", "having", "he", "her",
	"here", "hers", "herself", "him", "himself", "his", "how", "i", "if", "in",
	"into", "is", "isn't", "it", "it's", "its", "itself", "just", "let", "like",
	"may", "me", "might", "more", "most", "much", "must", "my", "myself", "new",
	"no", "nor", "not", "now", "of", "off", "on", "once", "one", "only", "or",
	"other", "our", "ours", "ourselves", "out", "over", "own", "said", "same",
	"says", "she", "should", "so", "some", "such", "than", "that", "the", "their",
	"theirs", "them", "themselves", "then", "there", "these", "they", "this",
	"those", "through", "to", "too", "under", "until", "up", "very", "was",
	"wasn't", "we", "were", "weren't", "what", "when", "where", "which", "while",
	"who", "whom", "why", "will", "with", "won't", "would", "year", "years", "yet",
	"you", "your", "yours", "yourself", "yourselves", "chars",
}
