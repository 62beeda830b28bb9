package port

// Tokenizer normalizes text into index terms for full-text search.
type Tokenizer interface {
	Tokenize(text string) []string
}
