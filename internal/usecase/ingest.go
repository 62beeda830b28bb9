package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"kb/internal/adapter/fs"
	"kb/internal/adapter/store"
	"kb/internal/domain"
	"kb/internal/logger"
	"kb/internal/port"
)

// IngestUseCase turns documents into embedded chunk records.
type IngestUseCase struct {
	store    *store.Store
	chunker  port.Chunker
	embedder port.Embedder
	walker   *fs.Walker
	maxWords int
	overlap  int
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	st *store.Store,
	chunker port.Chunker,
	embedder port.Embedder,
	walker *fs.Walker,
	maxWords, overlap int,
) *IngestUseCase {
	return &IngestUseCase{
		store:    st,
		chunker:  chunker,
		embedder: embedder,
		walker:   walker,
		maxWords: maxWords,
		overlap:  overlap,
	}
}

// IngestResult describes one ingest operation.
type IngestResult struct {
	ChunksAdded int      `json:"chunks_added"`
	Version     uint64   `json:"version"`
	Sources     []string `json:"sources"`
	Errors      []string `json:"errors,omitempty"`
}

// IngestText chunks and embeds a raw text under the given source name.
// Text that chunks to nothing is a no-content error, not an argument
// error.
func (u *IngestUseCase) IngestText(text, source string, page int) (*IngestResult, error) {
	if source == "" {
		source = "inline"
	}

	records, err := u.buildRecords(text, source, page)
	if err != nil {
		return nil, err
	}
	version, err := u.store.Append(records)
	if err != nil {
		return nil, err
	}
	logger.Info("ingested %d chunks from %s (version %d)", len(records), source, version)
	return &IngestResult{
		ChunksAdded: len(records),
		Version:     version,
		Sources:     []string{source},
	}, nil
}

// IngestFile reads one file and ingests it under its base name.
func (u *IngestUseCase) IngestFile(path string, page int) (*IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidArgument, path, err)
	}
	return u.IngestText(string(data), filepath.Base(path), page)
}

// IngestDir walks a directory and ingests every matching document in a
// single new version. progress, when non-nil, is called after each
// document.
func (u *IngestUseCase) IngestDir(root string, progress func(done, total int, path string)) (*IngestResult, error) {
	docs, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no ingestable documents under %s", domain.ErrNoContent, root)
	}

	result := &IngestResult{}
	var records []domain.ChunkRecord
	for i, doc := range docs {
		text, err := fs.ReadDocument(root, doc.Path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("read %s: %v", doc.Path, err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		recs, err := u.buildRecords(text, doc.Path, 1)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("ingest %s: %v", doc.Path, err))
			continue
		}
		records = append(records, recs...)
		result.Sources = append(result.Sources, doc.Path)
		if progress != nil {
			progress(i+1, len(docs), doc.Path)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: nothing to ingest under %s", domain.ErrNoContent, root)
	}

	version, err := u.store.Append(records)
	if err != nil {
		return nil, err
	}
	result.ChunksAdded = len(records)
	result.Version = version
	logger.Info("ingested %d chunks from %d documents (version %d)", len(records), len(result.Sources), version)
	return result, nil
}

func (u *IngestUseCase) buildRecords(text, source string, page int) ([]domain.ChunkRecord, error) {
	if page <= 0 {
		page = 1
	}
	chunks, err := u.chunker.Chunk(text, u.maxWords, u.overlap)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks produced from %s", domain.ErrNoContent, source)
	}

	vectors, err := u.embedder.Embed(chunks)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbeddingProvider, len(vectors), len(chunks))
	}

	now := time.Now().UTC()
	records := make([]domain.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = domain.ChunkRecord{
			ID:         uuid.NewString(),
			Text:       chunk,
			Vector:     vectors[i],
			SourceFile: source,
			Page:       page,
			ChunkIndex: i,
			CreatedAt:  now,
		}
	}
	return records, nil
}
