package embedding

// MockEmbedder produces deterministic vectors derived from the input
// text. Used in tests and for offline runs; vectors carry enough signal
// that identical texts are nearest neighbours of each other.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder creates a mock embedder with the given dimensionality.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	return &MockEmbedder{dimensions: dimensions}
}

func (e *MockEmbedder) Embed(texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = e.vector(text)
	}
	return vecs, nil
}

func (e *MockEmbedder) EmbedQuery(text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e *MockEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dimensions)
	for j, r := range text {
		v[j%e.dimensions] += float32(r) / 1000.0
	}
	return v
}

func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
