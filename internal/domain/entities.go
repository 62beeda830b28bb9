package domain

import "time"

// ChunkRecord is the unit of storage and retrieval: one bounded slice of a
// document's text together with its embedding and provenance metadata.
// Records are immutable once written; mutations happen at the version level.
type ChunkRecord struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Vector     []float32 `json:"vector,omitempty"`
	SourceFile string    `json:"source_file"`
	Page       int       `json:"page"`
	ChunkIndex int       `json:"chunk_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// VersionInfo is the canonical shape of one entry in the store's append-only
// version history, regardless of how the engine records it internally.
type VersionInfo struct {
	Version   uint64    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	RowCount  int       `json:"row_count"`
}

// Operations recorded in version manifests.
const (
	OpInit    = "init"
	OpIngest  = "ingest"
	OpDelete  = "delete"
	OpRestore = "restore"
	OpReindex = "reindex"
)

// ScoredRecord pairs a chunk record with a relevance score.
// Scores are always higher-is-better at this level; distance-ranked
// results are transformed before they get here.
type ScoredRecord struct {
	Record ChunkRecord `json:"record"`
	Score  float64     `json:"score"`
}

// SearchMode selects the ranking strategy.
type SearchMode string

const (
	SearchFTS    SearchMode = "fts"
	SearchVector SearchMode = "vector"
	SearchHybrid SearchMode = "hybrid"
)

// Valid reports whether the mode is one of the supported strategies.
func (m SearchMode) Valid() bool {
	return m == SearchFTS || m == SearchVector || m == SearchHybrid
}

// Filter restricts search and view results to rows matching a single
// field equality. The zero value matches everything.
type Filter struct {
	SourceFile string
	ID         string
}

// IsZero reports whether the filter matches all rows.
func (f Filter) IsZero() bool {
	return f.SourceFile == "" && f.ID == ""
}

// Matches reports whether the record satisfies the filter.
func (f Filter) Matches(r ChunkRecord) bool {
	if f.SourceFile != "" && r.SourceFile != f.SourceFile {
		return false
	}
	if f.ID != "" && r.ID != f.ID {
		return false
	}
	return true
}

// SourceStat is the per-document slice of the chunk distribution.
type SourceStat struct {
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
}

// Stats is the read-only aggregate over one knowledge base.
// Initialized false means no knowledge base exists yet; the other
// fields are zero in that case.
type Stats struct {
	Initialized   bool         `json:"initialized"`
	RowCount      int          `json:"row_count"`
	Version       uint64       `json:"version"`
	SizeBytes     int64        `json:"size_bytes"`
	Sources       []SourceStat `json:"sources,omitempty"`
	UniqueSources int          `json:"unique_sources"`
}

// Posting is one full-text index entry: a term occurs TF times in a row.
type Posting struct {
	RowID string `json:"row_id"`
	TF    int    `json:"tf"`
}

// EmbeddingSettings is the resolved embedding configuration a knowledge
// base was created with. Dimensions is fixed for the store's lifetime.
type EmbeddingSettings struct {
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	BaseURL    string `json:"base_url,omitempty"`
}
