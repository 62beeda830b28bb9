package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"kb/internal/adapter/analyzer"
	"kb/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")
	st, err := Open(path, analyzer.NewTokenizer(true))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func initTestStore(t *testing.T) *Store {
	t.Helper()
	st := openTestStore(t)
	created, version, err := st.CreateTable(domain.EmbeddingSettings{Model: "mock", Dimensions: 4})
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if !created || version != 1 {
		t.Fatalf("CreateTable = (%v, %d), want (true, 1)", created, version)
	}
	return st
}

func testRecord(id, text, source string, idx int) domain.ChunkRecord {
	return domain.ChunkRecord{
		ID:         id,
		Text:       text,
		Vector:     []float32{1, 0, 0, 0},
		SourceFile: source,
		Page:       1,
		ChunkIndex: idx,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestCreateTableIdempotent(t *testing.T) {
	st := initTestStore(t)

	created, version, err := st.CreateTable(domain.EmbeddingSettings{Model: "mock", Dimensions: 4})
	if err != nil {
		t.Fatalf("second CreateTable: %v", err)
	}
	if created {
		t.Error("second CreateTable reported created=true")
	}
	if version != 1 {
		t.Errorf("second CreateTable version = %d, want 1", version)
	}

	initialized, err := st.Initialized()
	if err != nil {
		t.Fatalf("Initialized: %v", err)
	}
	if !initialized {
		t.Error("Initialized = false after CreateTable")
	}
}

func TestCreateTableRequiresDimensions(t *testing.T) {
	st := openTestStore(t)
	_, _, err := st.CreateTable(domain.EmbeddingSettings{Model: "mock"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("CreateTable with zero dimensions: err = %v, want ErrInvalidArgument", err)
	}
}

func TestUninitializedStore(t *testing.T) {
	st := openTestStore(t)

	if _, err := st.LiveRecords(); !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("LiveRecords: err = %v, want ErrNotInitialized", err)
	}
	if _, err := st.Append([]domain.ChunkRecord{testRecord("a", "x", "f.md", 0)}); !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("Append: err = %v, want ErrNotInitialized", err)
	}
	if _, err := st.EmbeddingSettings(); !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("EmbeddingSettings: err = %v, want ErrNotInitialized", err)
	}
}

func TestAppendBumpsVersion(t *testing.T) {
	st := initTestStore(t)

	v, err := st.Append([]domain.ChunkRecord{
		testRecord("a1", "postgres tuning notes", "db.md", 0),
		testRecord("a2", "index maintenance guide", "db.md", 1),
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if v != 2 {
		t.Errorf("version after first append = %d, want 2", v)
	}

	v, err = st.Append([]domain.ChunkRecord{testRecord("b1", "kafka consumer groups", "mq.md", 0)})
	if err != nil {
		t.Fatalf("second Append: %v", err)
	}
	if v != 3 {
		t.Errorf("version after second append = %d, want 3", v)
	}

	records, err := st.LiveRecords()
	if err != nil {
		t.Fatalf("LiveRecords: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("live records = %d, want 3", len(records))
	}
}

func TestAppendDimensionMismatch(t *testing.T) {
	st := initTestStore(t)

	rec := testRecord("a1", "text", "f.md", 0)
	rec.Vector = []float32{1, 0}
	if _, err := st.Append([]domain.ChunkRecord{rec}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Append with wrong dimensions: err = %v, want ErrInvalidArgument", err)
	}
}

func TestAppendSupersedesSameSource(t *testing.T) {
	st := initTestStore(t)

	if _, err := st.Append([]domain.ChunkRecord{
		testRecord("old1", "first draft", "doc.md", 0),
		testRecord("old2", "first draft part two", "doc.md", 1),
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := st.Append([]domain.ChunkRecord{
		testRecord("new1", "second draft", "doc.md", 0),
	}); err != nil {
		t.Fatalf("re-ingest Append: %v", err)
	}

	records, err := st.LiveRecords()
	if err != nil {
		t.Fatalf("LiveRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("live records after re-ingest = %d, want 1", len(records))
	}
	if records[0].ID != "new1" {
		t.Errorf("surviving record = %q, want new1", records[0].ID)
	}

	// Superseded rows stay reachable through their version's manifest.
	if _, _, err := st.Restore(2); err != nil {
		t.Errorf("Restore(2) after supersede: %v", err)
	}
}

func TestDeleteWhereBySource(t *testing.T) {
	st := initTestStore(t)

	if _, err := st.Append([]domain.ChunkRecord{
		testRecord("a1", "keep me", "keep.md", 0),
		testRecord("b1", "drop me", "drop.md", 0),
		testRecord("b2", "drop me too", "drop.md", 1),
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	removed, version, err := st.DeleteWhere(domain.Filter{SourceFile: "drop.md"})
	if err != nil {
		t.Fatalf("DeleteWhere: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if version != 3 {
		t.Errorf("version after delete = %d, want 3", version)
	}

	records, err := st.LiveRecords()
	if err != nil {
		t.Fatalf("LiveRecords: %v", err)
	}
	if len(records) != 1 || records[0].SourceFile != "keep.md" {
		t.Errorf("live records after delete = %+v, want only keep.md", records)
	}
}

func TestDeleteWhereRequiresFilter(t *testing.T) {
	st := initTestStore(t)
	if _, _, err := st.DeleteWhere(domain.Filter{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("DeleteWhere with empty filter: err = %v, want ErrInvalidArgument", err)
	}
}

func TestDeleteWhereNoMatchStillBumps(t *testing.T) {
	st := initTestStore(t)
	if _, err := st.Append([]domain.ChunkRecord{testRecord("a1", "text", "f.md", 0)}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	removed, version, err := st.DeleteWhere(domain.Filter{SourceFile: "missing.md"})
	if err != nil {
		t.Fatalf("DeleteWhere: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	if version != 3 {
		t.Errorf("version = %d, want 3", version)
	}
}

func TestRestoreCreatesNewVersion(t *testing.T) {
	st := initTestStore(t)

	if _, err := st.Append([]domain.ChunkRecord{testRecord("a1", "original", "f.md", 0)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, _, err := st.DeleteWhere(domain.Filter{SourceFile: "f.md"}); err != nil {
		t.Fatalf("DeleteWhere: %v", err)
	}

	records, err := st.LiveRecords()
	if err != nil {
		t.Fatalf("LiveRecords: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("live records after delete = %d, want 0", len(records))
	}

	newVersion, rowCount, err := st.Restore(2)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if newVersion != 4 {
		t.Errorf("restored version = %d, want 4", newVersion)
	}
	if rowCount != 1 {
		t.Errorf("restored row count = %d, want 1", rowCount)
	}

	records, err = st.LiveRecords()
	if err != nil {
		t.Fatalf("LiveRecords after restore: %v", err)
	}
	if len(records) != 1 || records[0].Text != "original" {
		t.Errorf("records after restore = %+v, want the original row", records)
	}
}

func TestRestoreUnknownVersion(t *testing.T) {
	st := initTestStore(t)
	if _, _, err := st.Restore(42); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Restore(42): err = %v, want ErrInvalidArgument", err)
	}
}

func TestVersionsHistory(t *testing.T) {
	st := initTestStore(t)

	if _, err := st.Append([]domain.ChunkRecord{testRecord("a1", "text", "f.md", 0)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, _, err := st.DeleteWhere(domain.Filter{ID: "a1"}); err != nil {
		t.Fatalf("DeleteWhere: %v", err)
	}

	versions, err := st.Versions()
	if err != nil {
		t.Fatalf("Versions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("len(versions) = %d, want 3", len(versions))
	}

	wantOps := []string{domain.OpInit, domain.OpIngest, domain.OpDelete}
	for i, v := range versions {
		if v.Version != uint64(i+1) {
			t.Errorf("versions[%d].Version = %d, want %d", i, v.Version, i+1)
		}
		if v.Operation != wantOps[i] {
			t.Errorf("versions[%d].Operation = %q, want %q", i, v.Operation, wantOps[i])
		}
	}
	if versions[1].RowCount != 1 {
		t.Errorf("ingest version row count = %d, want 1", versions[1].RowCount)
	}
	if versions[2].RowCount != 0 {
		t.Errorf("delete version row count = %d, want 0", versions[2].RowCount)
	}
}

func TestPostingsFollowMutations(t *testing.T) {
	st := initTestStore(t)

	if _, err := st.Append([]domain.ChunkRecord{
		testRecord("a1", "replication lag monitoring", "ops.md", 0),
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	tok := analyzer.NewTokenizer(true)
	term := tok.Tokenize("replication")[0]

	postings, err := st.Postings(term)
	if err != nil {
		t.Fatalf("Postings: %v", err)
	}
	if len(postings) != 1 || postings[0].RowID != "a1" {
		t.Fatalf("postings = %+v, want one entry for a1", postings)
	}

	if _, _, err := st.DeleteWhere(domain.Filter{ID: "a1"}); err != nil {
		t.Fatalf("DeleteWhere: %v", err)
	}

	postings, err = st.Postings(term)
	if err != nil {
		t.Fatalf("Postings after delete: %v", err)
	}
	if len(postings) != 0 {
		t.Errorf("postings after delete = %+v, want none", postings)
	}
}

func TestIndexStats(t *testing.T) {
	st := initTestStore(t)

	if _, err := st.Append([]domain.ChunkRecord{
		testRecord("a1", "database schema migration", "f.md", 0),
		testRecord("a2", "rollback strategy", "f.md", 1),
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rowCount, avgLen, err := st.IndexStats()
	if err != nil {
		t.Fatalf("IndexStats: %v", err)
	}
	if rowCount != 2 {
		t.Errorf("rowCount = %d, want 2", rowCount)
	}
	if avgLen <= 0 {
		t.Errorf("avgChunkLen = %f, want > 0", avgLen)
	}
}

func TestReindexPreservesRows(t *testing.T) {
	st := initTestStore(t)

	if _, err := st.Append([]domain.ChunkRecord{
		testRecord("a1", "connection pooling", "f.md", 0),
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	version, rebuilt, err := st.Reindex()
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if version != 3 {
		t.Errorf("version after reindex = %d, want 3", version)
	}
	if !rebuilt {
		t.Error("ftsRebuilt = false, want true")
	}

	records, err := st.LiveRecords()
	if err != nil {
		t.Fatalf("LiveRecords: %v", err)
	}
	if len(records) != 1 || records[0].ID != "a1" {
		t.Errorf("records after reindex = %+v, want a1 intact", records)
	}

	tok := analyzer.NewTokenizer(true)
	term := tok.Tokenize("pooling")[0]
	postings, err := st.Postings(term)
	if err != nil {
		t.Fatalf("Postings: %v", err)
	}
	if len(postings) != 1 {
		t.Errorf("postings after reindex = %+v, want one entry", postings)
	}
}

func TestGetRecordLiveMembership(t *testing.T) {
	st := initTestStore(t)

	if _, err := st.Append([]domain.ChunkRecord{testRecord("a1", "text", "f.md", 0)}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rec, err := st.GetRecord("a1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.ID != "a1" {
		t.Errorf("GetRecord ID = %q, want a1", rec.ID)
	}

	if _, _, err := st.DeleteWhere(domain.Filter{ID: "a1"}); err != nil {
		t.Fatalf("DeleteWhere: %v", err)
	}
	if _, err := st.GetRecord("a1"); !errors.Is(err, domain.ErrNoContent) {
		t.Errorf("GetRecord after delete: err = %v, want ErrNoContent", err)
	}
}

func TestRecordsPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.db")
	tok := analyzer.NewTokenizer(true)

	st, err := Open(path, tok)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, _, err := st.CreateTable(domain.EmbeddingSettings{Model: "mock", Dimensions: 4}); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	for i := 0; i < 3; i++ {
		rec := testRecord(fmt.Sprintf("r%d", i), fmt.Sprintf("chunk %d", i), "f.md", i)
		if _, err := st.Append([]domain.ChunkRecord{rec}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err = Open(path, tok)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	version, err := st.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if version != 4 {
		t.Errorf("version after reopen = %d, want 4", version)
	}
	count, err := st.RowCount()
	if err != nil {
		t.Fatalf("RowCount: %v", err)
	}
	if count != 3 {
		t.Errorf("row count after reopen = %d, want 3", count)
	}
}
