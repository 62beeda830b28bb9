package chunker

import (
	"fmt"
	"strings"

	"kb/internal/domain"
)

// WordChunker splits text into overlapping windows of whitespace-delimited
// words. It has no awareness of sentence or paragraph boundaries; a chunk
// may cut mid-sentence.
type WordChunker struct{}

// NewWordChunker creates a new WordChunker.
func NewWordChunker() *WordChunker {
	return &WordChunker{}
}

// Chunk splits text into windows of up to maxWords words, advancing the
// window start by maxWords-overlap each step. The window that reaches the
// end of the text is emitted and chunking stops. Empty or whitespace-only
// input yields no chunks; input shorter than maxWords yields exactly one.
func (c *WordChunker) Chunk(text string, maxWords, overlap int) ([]string, error) {
	if maxWords <= 0 {
		return nil, fmt.Errorf("%w: max words must be positive, got %d", domain.ErrInvalidArgument, maxWords)
	}
	if overlap < 0 || overlap >= maxWords {
		// overlap >= maxWords would stall the window and never terminate.
		return nil, fmt.Errorf("%w: overlap must satisfy 0 <= overlap < max words, got overlap=%d max=%d",
			domain.ErrInvalidArgument, overlap, maxWords)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	step := maxWords - overlap
	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))

		// The window that reaches the end is the last one, even when the
		// next step start would still be inside the text.
		if end == len(words) {
			break
		}
	}

	return chunks, nil
}
