package chunker

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"kb/internal/domain"
)

func TestChunkWindowExample(t *testing.T) {
	c := NewWordChunker()

	chunks, err := c.Chunk("a b c d e f", 4, 2)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"a b c d", "c d e f"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("expected %v, got %v", want, chunks)
	}
}

func TestChunkShortInput(t *testing.T) {
	c := NewWordChunker()

	chunks, err := c.Chunk("hello world", 500, 100)
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "hello world" {
		t.Errorf("expected full input in single chunk, got %q", chunks[0])
	}
}

func TestChunkEmptyInput(t *testing.T) {
	c := NewWordChunker()

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		chunks, err := c.Chunk(text, 10, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected no chunks for %q, got %d", text, len(chunks))
		}
	}
}

func TestChunkInvalidParams(t *testing.T) {
	c := NewWordChunker()

	cases := []struct {
		name     string
		maxWords int
		overlap  int
	}{
		{"overlap equals max", 10, 10},
		{"overlap exceeds max", 10, 20},
		{"negative overlap", 10, -1},
		{"zero max", 0, 0},
		{"negative max", -5, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Chunk("some text here", tc.maxWords, tc.overlap)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestChunkCoversAllWords(t *testing.T) {
	c := NewWordChunker()

	words := make([]string, 137)
	for i := range words {
		words[i] = "w" + string(rune('a'+i%26))
	}
	text := strings.Join(words, " ")

	chunks, err := c.Chunk(text, 20, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	// Novel (non-overlapping) words across chunks reconstruct the input order.
	var rebuilt []string
	for i, ch := range chunks {
		cw := strings.Fields(ch)
		if i == 0 {
			rebuilt = append(rebuilt, cw...)
			continue
		}
		rebuilt = append(rebuilt, cw[5:]...)
	}
	if strings.Join(rebuilt, " ") != text {
		t.Error("novel tokens across chunks do not reconstruct the input")
	}

	// The last chunk contains the tail of the input.
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Errorf("last chunk %q is not a suffix of the input", last)
	}
}

func TestChunkZeroOverlap(t *testing.T) {
	c := NewWordChunker()

	chunks, err := c.Chunk("one two three four five six", 2, 0)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"one two", "three four", "five six"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("expected %v, got %v", want, chunks)
	}
}
