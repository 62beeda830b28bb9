package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer normalizes text into index terms: lowercased words with
// stopwords removed and optional English stemming. The same tokenizer
// must be used at index and query time or postings will not line up.
type Tokenizer struct {
	stopwords map[string]struct{}
	stem      bool
}

// NewTokenizer creates a Tokenizer. Stemming and stopword removal match
// what the full-text index is built with.
func NewTokenizer(stemming bool) *Tokenizer {
	return &Tokenizer{
		stopwords: englishStopwords(),
		stem:      stemming,
	}
}

// Tokenize splits text into normalized index terms.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	terms := make([]string, 0, len(words))

	for _, w := range words {
		w = strings.ToLower(w)
		if len(w) < 2 {
			continue
		}
		if _, stop := t.stopwords[w]; stop {
			continue
		}
		if t.stem {
			w = stem(w)
		}
		terms = append(terms, w)
	}

	return terms
}

// splitWords splits on anything that is not a letter, digit or underscore.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

func englishStopwords() map[string]struct{} {
	stops := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "not", "you", "your", "we", "our",
		"they", "their", "she", "her", "his", "if", "or", "so",
		"no", "can", "do", "does", "did", "been", "being", "would",
		"could", "should", "may", "might", "must", "shall", "which",
		"who", "whom", "what", "when", "where", "why", "how", "all",
		"each", "every", "both", "few", "more", "most", "other",
		"some", "such", "than", "too", "very", "just", "also",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
