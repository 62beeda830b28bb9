package port

// Chunker splits raw document text into retrievable segments.
type Chunker interface {
	// Chunk splits text into overlapping word-count-bounded segments.
	Chunk(text string, maxWords, overlap int) ([]string, error)
}
