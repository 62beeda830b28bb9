package retriever

import (
	"sort"

	"kb/internal/domain"
	"kb/internal/port"
)

// DefaultRRFK is the smoothing constant for reciprocal rank fusion.
const DefaultRRFK = 60

// HybridRetriever fuses a lexical and a semantic retriever with
// reciprocal rank fusion. Each candidate scores sum(1/(rrfK+rank))
// over the lists it appears in, so agreement between retrievers
// outranks a high position in just one.
type HybridRetriever struct {
	lexical  port.Retriever
	semantic port.Retriever
	rrfK     int
}

// NewHybridRetriever creates a hybrid retriever. rrfK <= 0 selects the
// default.
func NewHybridRetriever(lexical, semantic port.Retriever, rrfK int) *HybridRetriever {
	if rrfK <= 0 {
		rrfK = DefaultRRFK
	}
	return &HybridRetriever{lexical: lexical, semantic: semantic, rrfK: rrfK}
}

// Search runs both retrievers with a widened candidate pool, fuses the
// rankings, and returns the top k.
func (r *HybridRetriever) Search(query string, k int, filter domain.Filter) ([]domain.ScoredRecord, error) {
	poolSize := k * 2
	if poolSize < 10 {
		poolSize = 10
	}

	lexResults, err := r.lexical.Search(query, poolSize, filter)
	if err != nil {
		return nil, err
	}
	semResults, err := r.semantic.Search(query, poolSize, filter)
	if err != nil {
		return nil, err
	}

	fused := make(map[string]*domain.ScoredRecord)
	accumulate := func(results []domain.ScoredRecord) {
		for rank, res := range results {
			contribution := 1.0 / float64(r.rrfK+rank+1)
			if existing, ok := fused[res.Record.ID]; ok {
				existing.Score += contribution
			} else {
				fused[res.Record.ID] = &domain.ScoredRecord{Record: res.Record, Score: contribution}
			}
		}
	}
	accumulate(lexResults)
	accumulate(semResults)

	results := make([]domain.ScoredRecord, 0, len(fused))
	for _, res := range fused {
		results = append(results, *res)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Record.ID < results[j].Record.ID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
