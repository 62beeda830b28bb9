package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Default patterns for directory ingest. Only plain-text document
// formats: binary formats need extraction first.
var (
	defaultIncludes = []string{"**/*.md", "**/*.txt", "**/*.rst"}
	defaultExcludes = []string{".git/**", ".kb/**", "node_modules/**"}
)

// Document is one ingestable file found under a root. Path is relative
// to the walked root and doubles as the record's source identifier.
type Document struct {
	Path string
	Size int64
}

// Walker collects ingestable documents under a directory, matching
// doublestar glob patterns against root-relative paths.
type Walker struct {
	includes []string
	excludes []string
}

// NewWalker creates a walker. Empty pattern lists select the defaults.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = defaultIncludes
	}
	if len(excludes) == 0 {
		excludes = defaultExcludes
	}
	return &Walker{includes: includes, excludes: excludes}
}

// Walk returns all documents under root that match the include patterns
// and none of the exclude patterns, in lexical path order.
func (w *Walker) Walk(root string) ([]Document, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var docs []Document
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			// Pruning is an optimization; files are checked on their own.
			if rel != "." && w.excludesDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !w.matchAny(w.includes, rel) || w.matchAny(w.excludes, rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		docs = append(docs, Document{Path: rel, Size: info.Size()})
		return nil
	})
	return docs, err
}

func (w *Walker) excludesDir(rel string) bool {
	for _, pattern := range w.excludes {
		dirPattern := strings.TrimSuffix(pattern, "/**")
		if ok, err := doublestar.Match(dirPattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Walker) matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// ReadDocument reads a document's full text.
func ReadDocument(root, rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
