package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunk.MaxWords != 500 || cfg.Chunk.Overlap != 100 {
		t.Errorf("chunk defaults = %+v", cfg.Chunk)
	}
	if cfg.Search.Limit != 10 || cfg.Search.Mode != "hybrid" {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if cfg.Search.K1 != 1.2 || cfg.Search.B != 0.75 || cfg.Search.RRFK != 60 {
		t.Errorf("ranking defaults = %+v", cfg.Search)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("embedding model default = %q", cfg.Embedding.Model)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chunk.MaxWords != 500 {
		t.Errorf("MaxWords = %d, want default", cfg.Chunk.MaxWords)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.yaml")
	content := "chunk:\n  max_words: 200\nsearch:\n  limit: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chunk.MaxWords != 200 {
		t.Errorf("MaxWords = %d, want 200", cfg.Chunk.MaxWords)
	}
	if cfg.Search.Limit != 5 {
		t.Errorf("Limit = %d, want 5", cfg.Search.Limit)
	}
	// Untouched sections keep defaults.
	if cfg.Chunk.Overlap != 100 {
		t.Errorf("Overlap = %d, want default 100", cfg.Chunk.Overlap)
	}
}

func TestLoadFromDirPrecedence(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".kb"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".kb", "config.yaml"), []byte("search:\n  limit: 3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "kb.yaml"), []byte("search:\n  limit: 7\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if cfg.Search.Limit != 7 {
		t.Errorf("Limit = %d, want 7 from kb.yaml", cfg.Search.Limit)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.yaml")

	cfg := DefaultConfig()
	cfg.Chunk.MaxWords = 64
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Chunk.MaxWords != 64 {
		t.Errorf("MaxWords = %d, want 64", loaded.Chunk.MaxWords)
	}
}

func TestStorePaths(t *testing.T) {
	if got := StorePath("/ws"); got != filepath.Join("/ws", ".kb", "store.db") {
		t.Errorf("StorePath = %q", got)
	}
	if got := StoreDir("/ws"); got != filepath.Join("/ws", ".kb") {
		t.Errorf("StoreDir = %q", got)
	}
}
