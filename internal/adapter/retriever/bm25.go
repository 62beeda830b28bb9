package retriever

import (
	"math"
	"sort"

	"kb/internal/adapter/store"
	"kb/internal/domain"
	"kb/internal/port"
)

// BM25 constants mirror the usual defaults for prose.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// BM25Retriever ranks live rows by lexical relevance over the store's
// posting lists. Higher score is better.
type BM25Retriever struct {
	store     *store.Store
	tokenizer port.Tokenizer
	k1        float64
	b         float64
}

// NewBM25Retriever creates a BM25 retriever. Zero k1/b select defaults.
func NewBM25Retriever(st *store.Store, tokenizer port.Tokenizer, k1, b float64) *BM25Retriever {
	if k1 <= 0 {
		k1 = DefaultK1
	}
	if b <= 0 {
		b = DefaultB
	}
	return &BM25Retriever{store: st, tokenizer: tokenizer, k1: k1, b: b}
}

// Search returns up to k records ranked by BM25, filter applied before
// truncation.
func (r *BM25Retriever) Search(query string, k int, filter domain.Filter) ([]domain.ScoredRecord, error) {
	queryTerms := r.tokenizer.Tokenize(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	total, avgLen, err := r.store.IndexStats()
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	records, err := r.store.LiveRecords()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.ChunkRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	scores := make(map[string]float64)
	for _, term := range queryTerms {
		postings, err := r.store.Postings(term)
		if err != nil {
			continue
		}

		n := float64(len(postings))
		N := float64(total)
		idf := math.Log((N-n+0.5)/(n+0.5) + 1)

		for _, p := range postings {
			record, ok := byID[p.RowID]
			if !ok {
				continue
			}
			dl := float64(len(r.tokenizer.Tokenize(record.Text)))
			tf := float64(p.TF)
			scores[p.RowID] += idf * (tf * (r.k1 + 1)) / (tf + r.k1*(1-r.b+r.b*dl/avgLen))
		}
	}

	results := make([]domain.ScoredRecord, 0, len(scores))
	for id, score := range scores {
		record := byID[id]
		if !filter.Matches(record) {
			continue
		}
		results = append(results, domain.ScoredRecord{Record: record, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
