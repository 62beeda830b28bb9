package port

import "kb/internal/domain"

// Retriever searches the knowledge base and returns ranked records.
type Retriever interface {
	// Search returns up to k records matching the query, best first.
	// The filter is applied before truncation to k.
	Search(query string, k int, filter domain.Filter) ([]domain.ScoredRecord, error)
}
