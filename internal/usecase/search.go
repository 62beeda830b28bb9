package usecase

import (
	"fmt"
	"sort"

	"kb/internal/adapter/store"
	"kb/internal/domain"
	"kb/internal/logger"
	"kb/internal/port"
)

// SearchUseCase runs queries against the live version.
type SearchUseCase struct {
	store    *store.Store
	fts      port.Retriever
	semantic port.Retriever
	hybrid   port.Retriever
}

// NewSearchUseCase creates a new search use case.
func NewSearchUseCase(st *store.Store, fts, semantic, hybrid port.Retriever) *SearchUseCase {
	return &SearchUseCase{store: st, fts: fts, semantic: semantic, hybrid: hybrid}
}

// SearchResult is one search response.
type SearchResult struct {
	Mode    domain.SearchMode     `json:"mode"`
	Query   string                `json:"query"`
	Results []domain.ScoredRecord `json:"results"`
}

// Search runs a query in the given mode. An empty result set is not an
// error.
func (u *SearchUseCase) Search(query string, mode domain.SearchMode, limit int, filter domain.Filter) (*SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidArgument, mode)
	}
	if limit <= 0 {
		limit = 10
	}
	if ok, err := u.store.Initialized(); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrNotInitialized
	}

	var retriever port.Retriever
	switch mode {
	case domain.SearchFTS:
		retriever = u.fts
	case domain.SearchVector:
		retriever = u.semantic
	case domain.SearchHybrid:
		retriever = u.hybrid
	}

	logger.Debug("search mode=%s limit=%d filter=%+v", mode, limit, filter)
	results, err := retriever.Search(query, limit, filter)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.ScoredRecord{}
	}
	return &SearchResult{Mode: mode, Query: query, Results: results}, nil
}

// ViewUseCase reads records without ranking.
type ViewUseCase struct {
	store *store.Store
}

// NewViewUseCase creates a new view use case.
func NewViewUseCase(st *store.Store) *ViewUseCase {
	return &ViewUseCase{store: st}
}

// ViewResult is a page of records from the live version. Initialized is
// false only for the synthetic result reported on a workspace without a
// knowledge base.
type ViewResult struct {
	Initialized   bool                 `json:"initialized"`
	Records       []domain.ChunkRecord `json:"records"`
	Total         int                  `json:"total"`
	ReturnedCount int                  `json:"returned_count"`
	Offset        int                  `json:"offset"`
	Sources       []domain.SourceStat  `json:"sources,omitempty"`
}

// View returns live records matching the filter, ordered by source file
// then chunk index, with limit/offset paging. Vectors are stripped:
// they are payload for search, noise for inspection.
func (u *ViewUseCase) View(filter domain.Filter, limit, offset int) (*ViewResult, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	records, err := u.store.LiveRecords()
	if err != nil {
		return nil, err
	}

	matched := make([]domain.ChunkRecord, 0, len(records))
	for _, rec := range records {
		if filter.Matches(rec) {
			rec.Vector = nil
			matched = append(matched, rec)
		}
	}
	if filter.ID != "" && len(matched) == 0 {
		return nil, fmt.Errorf("%w: no record with id %s", domain.ErrNoContent, filter.ID)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SourceFile != matched[j].SourceFile {
			return matched[i].SourceFile < matched[j].SourceFile
		}
		return matched[i].ChunkIndex < matched[j].ChunkIndex
	})

	perSource := make(map[string]int)
	for _, rec := range matched {
		perSource[rec.SourceFile]++
	}
	sources := make([]domain.SourceStat, 0, len(perSource))
	for _, rec := range matched {
		if n, ok := perSource[rec.SourceFile]; ok {
			sources = append(sources, domain.SourceStat{File: rec.SourceFile, Chunks: n})
			delete(perSource, rec.SourceFile)
		}
	}

	total := len(matched)
	if offset >= total {
		matched = nil
	} else {
		matched = matched[offset:]
		if len(matched) > limit {
			matched = matched[:limit]
		}
	}
	if matched == nil {
		matched = []domain.ChunkRecord{}
	}
	return &ViewResult{
		Initialized:   true,
		Records:       matched,
		Total:         total,
		ReturnedCount: len(matched),
		Offset:        offset,
		Sources:       sources,
	}, nil
}
