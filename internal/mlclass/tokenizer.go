package mlclass

import "strings"

// Feature extraction settings: unigrams plus bigrams, English stop-word
// removal, vocabulary capped by training frequency.
const (
	maxVocabulary = 2000
	bigramJoiner  = "_"
)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "about", "above", "after", "again", "all", "am", "an", "and",
		"any", "are", "as", "at", "be", "because", "been", "before", "being",
		"below", "between", "both", "but", "by", "can", "did", "do", "does",
		"doing", "down", "during", "each", "few", "for", "from", "further",
		"had", "has", "have", "having", "he", "her", "here", "hers", "him",
		"his", "how", "i", "if", "in", "into", "is", "it", "its", "just",
		"me", "more", "most", "my", "no", "nor", "not", "now", "of", "off",
		"on", "once", "only", "or", "other", "our", "out", "over", "own",
		"same", "she", "should", "so", "some", "such", "than", "that", "the",
		"their", "them", "then", "there", "these", "they", "this", "those",
		"through", "to", "too", "under", "until", "up", "very", "was", "we",
		"were", "what", "when", "where", "which", "while", "who", "whom",
		"why", "will", "with", "you", "your",
	} {
		stopWords[w] = struct{}{}
	}
}

// Tokenize splits a normalized description into unigram and bigram feature
// tokens with stop words removed.
func Tokenize(normalized string) []string {
	words := strings.Fields(normalized)

	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; !stop {
			kept = append(kept, w)
		}
	}

	tokens := make([]string, 0, len(kept)*2)
	tokens = append(tokens, kept...)
	for i := 0; i+1 < len(kept); i++ {
		tokens = append(tokens, kept[i]+bigramJoiner+kept[i+1])
	}
	return tokens
}
