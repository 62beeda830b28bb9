package cache

import (
	"fmt"
	"testing"
	"time"

	"kb/internal/adapter/embedding"
)

func TestCacheHitAndMiss(t *testing.T) {
	c := NewEmbeddingCache(10, time.Minute)

	if _, hit := c.Get("mock", "query"); hit {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Put("mock", "query", []float32{1, 2, 3})
	vec, hit := c.Get("mock", "query")
	if !hit {
		t.Fatal("expected hit after Put")
	}
	if len(vec) != 3 || vec[0] != 1 {
		t.Errorf("vec = %v", vec)
	}

	if _, hit := c.Get("other-model", "query"); hit {
		t.Error("hit across models, want miss")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewEmbeddingCache(10, time.Nanosecond)
	c.Put("mock", "query", []float32{1})
	time.Sleep(time.Millisecond)

	if _, hit := c.Get("mock", "query"); hit {
		t.Error("hit after TTL, want miss")
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d after expiry, want 0", c.Size())
	}
}

func TestCacheLRUEviction(t *testing.T) {
	c := NewEmbeddingCache(2, time.Minute)
	c.Put("mock", "a", []float32{1})
	c.Put("mock", "b", []float32{2})

	// Touch a so b becomes the eviction candidate.
	if _, hit := c.Get("mock", "a"); !hit {
		t.Fatal("expected hit for a")
	}

	c.Put("mock", "c", []float32{3})
	if _, hit := c.Get("mock", "b"); hit {
		t.Error("b survived eviction, want evicted")
	}
	if _, hit := c.Get("mock", "a"); !hit {
		t.Error("a evicted, want kept")
	}
}

func TestCachedEmbedderAvoidsRecompute(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: embedding.NewMockEmbedder(4)}
	e := NewCachedEmbedder(inner, NewEmbeddingCache(10, time.Minute))

	v1, err := e.EmbedQuery("same query")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	v2, err := e.EmbedQuery("same query")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if inner.queries != 1 {
		t.Errorf("inner queries = %d, want 1", inner.queries)
	}
	if fmt.Sprint(v1) != fmt.Sprint(v2) {
		t.Errorf("vectors differ: %v vs %v", v1, v2)
	}
}

type countingEmbedder struct {
	*embedding.MockEmbedder
	queries int
}

func (e *countingEmbedder) EmbedQuery(text string) ([]float32, error) {
	e.queries++
	return e.MockEmbedder.EmbedQuery(text)
}
