package port

// Embedder generates vector embeddings for text via an external provider.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single search query.
	EmbedQuery(text string) ([]float32, error)

	// Dimensions returns the embedding vector dimensionality.
	Dimensions() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
