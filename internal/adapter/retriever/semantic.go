package retriever

import (
	"fmt"
	"math"
	"sort"

	"kb/internal/adapter/store"
	"kb/internal/domain"
	"kb/internal/port"
)

// SemanticRetriever ranks live rows by cosine similarity between the
// query embedding and each stored vector. The scan is brute force,
// which is fine at the row counts a single workspace accumulates.
type SemanticRetriever struct {
	store    *store.Store
	embedder port.Embedder
}

func NewSemanticRetriever(st *store.Store, embedder port.Embedder) *SemanticRetriever {
	return &SemanticRetriever{store: st, embedder: embedder}
}

// Search embeds the query and returns up to k records ordered by
// similarity. Scores map cosine distance d to max(0, 1-d/2), so they
// fall in [0, 1] with 1 meaning identical direction.
func (r *SemanticRetriever) Search(query string, k int, filter domain.Filter) ([]domain.ScoredRecord, error) {
	queryVec, err := r.embedder.EmbedQuery(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := r.store.LiveRecords()
	if err != nil {
		return nil, err
	}

	results := make([]domain.ScoredRecord, 0, len(records))
	for _, rec := range records {
		if !filter.Matches(rec) {
			continue
		}
		if len(rec.Vector) != len(queryVec) {
			continue
		}
		distance := 1 - cosineSimilarity(queryVec, rec.Vector)
		score := 1 - distance/2
		if score < 0 {
			score = 0
		}
		results = append(results, domain.ScoredRecord{Record: rec, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
