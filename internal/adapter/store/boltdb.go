// Package store implements the knowledge-base storage engine on bbolt:
// an append-only versioned table of chunk records with a maintained
// full-text posting index. Each mutation commits a new immutable version
// manifest; prior versions stay readable until the store is destroyed.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"kb/internal/domain"
	"kb/internal/port"
)

var (
	bucketRows      = []byte("rows")      // row id -> json ChunkRecord, immutable
	bucketManifests = []byte("manifests") // 8-byte version -> json manifest
	bucketPostings  = []byte("postings")  // term -> json []Posting, live version only
	bucketMeta      = []byte("meta")

	keyCurrentVersion = []byte("current_version")
	keyEmbedding      = []byte("embedding_settings")
	keyStats          = []byte("index_stats")
)

// openTimeout bounds the wait for the bbolt file lock. A second writer
// holding the file is a retryable conflict, not corruption.
const openTimeout = time.Second

// Store is a versioned chunk table backed by a single bbolt file.
type Store struct {
	db        *bbolt.DB
	path      string
	tokenizer port.Tokenizer
}

// manifest records the full row membership of one version.
type manifest struct {
	Version   uint64   `json:"version"`
	Timestamp int64    `json:"timestamp"`
	Operation string   `json:"operation"`
	RowIDs    []string `json:"row_ids"`
}

// indexStats backs BM25 length normalization for the live version.
type indexStats struct {
	RowCount    int `json:"row_count"`
	TotalTokens int `json:"total_tokens"`
}

// Open opens (creating if needed) the store file. The tokenizer must
// match the one used for queries or full-text scoring degrades silently.
func Open(path string, tokenizer port.Tokenizer) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConflict, path)
		}
		return nil, fmt.Errorf("%w: failed to open %s: %v", domain.ErrStorageEngine, path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRows, bucketManifests, bucketPostings, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageEngine, err)
	}

	return &Store{db: db, path: path, tokenizer: tokenizer}, nil
}

// Close releases the store file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Initialized reports whether a table has been created in this store.
func (s *Store) Initialized() (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(bucketMeta).Get(keyEmbedding) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStorageEngine, err)
	}
	return ok, nil
}

// CreateTable provisions the table with its embedding settings and
// records version 1. Calling it on an existing table is a no-op that
// reports created=false.
func (s *Store) CreateTable(settings domain.EmbeddingSettings) (created bool, version uint64, err error) {
	if settings.Dimensions <= 0 {
		return false, 0, fmt.Errorf("%w: embedding dimensions must be resolved before table creation", domain.ErrInvalidArgument)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta.Get(keyEmbedding) != nil {
			version = currentVersion(tx)
			return nil
		}

		data, err := json.Marshal(settings)
		if err != nil {
			return err
		}
		if err := meta.Put(keyEmbedding, data); err != nil {
			return err
		}

		m := manifest{
			Version:   1,
			Timestamp: time.Now().UTC().UnixNano(),
			Operation: domain.OpInit,
		}
		if err := putManifest(tx, m); err != nil {
			return err
		}
		if err := setCurrentVersion(tx, 1); err != nil {
			return err
		}
		if err := putStats(tx, indexStats{}); err != nil {
			return err
		}

		created = true
		version = 1
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("%w: %v", domain.ErrStorageEngine, err)
	}
	return created, version, nil
}

// EmbeddingSettings returns the settings the table was created with.
func (s *Store) EmbeddingSettings() (domain.EmbeddingSettings, error) {
	var settings domain.EmbeddingSettings
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyEmbedding)
		if data == nil {
			return domain.ErrNotInitialized
		}
		return json.Unmarshal(data, &settings)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotInitialized) {
			return settings, err
		}
		return settings, fmt.Errorf("%w: %v", domain.ErrStorageEngine, err)
	}
	return settings, nil
}

// CurrentVersion returns the live version number.
func (s *Store) CurrentVersion() (uint64, error) {
	var v uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		v = currentVersion(tx)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageEngine, err)
	}
	return v, nil
}

// LiveRecords returns all records in the live version, vectors included.
func (s *Store) LiveRecords() ([]domain.ChunkRecord, error) {
	var records []domain.ChunkRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		m, err := getManifest(tx, currentVersion(tx))
		if err != nil {
			return err
		}
		records = make([]domain.ChunkRecord, 0, len(m.RowIDs))
		rows := tx.Bucket(bucketRows)
		for _, id := range m.RowIDs {
			data := rows.Get([]byte(id))
			if data == nil {
				continue
			}
			var r domain.ChunkRecord
			if err := json.Unmarshal(data, &r); err != nil {
				continue
			}
			records = append(records, r)
		}
		return nil
	})
	if err != nil {
		return nil, wrapEngine(err)
	}
	return records, nil
}

// GetRecord returns a record from the live version by id.
func (s *Store) GetRecord(id string) (domain.ChunkRecord, error) {
	var record domain.ChunkRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		m, err := getManifest(tx, currentVersion(tx))
		if err != nil {
			return err
		}
		live := false
		for _, rid := range m.RowIDs {
			if rid == id {
				live = true
				break
			}
		}
		if !live {
			return fmt.Errorf("%w: row %s", domain.ErrNoContent, id)
		}
		data := tx.Bucket(bucketRows).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: row %s", domain.ErrNoContent, id)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return record, wrapEngine(err)
	}
	return record, nil
}

// RowCount returns the number of rows in the live version.
func (s *Store) RowCount() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		m, err := getManifest(tx, currentVersion(tx))
		if err != nil {
			return err
		}
		n = len(m.RowIDs)
		return nil
	})
	if err != nil {
		return 0, wrapEngine(err)
	}
	return n, nil
}

// SizeOnDisk returns the store file size in bytes.
func (s *Store) SizeOnDisk() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageEngine, err)
	}
	return info.Size(), nil
}

func currentVersion(tx *bbolt.Tx) uint64 {
	data := tx.Bucket(bucketMeta).Get(keyCurrentVersion)
	if data == nil {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

func setCurrentVersion(tx *bbolt.Tx, v uint64) error {
	return tx.Bucket(bucketMeta).Put(keyCurrentVersion, versionKey(v))
}

func versionKey(v uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, v)
	return key
}

func putManifest(tx *bbolt.Tx, m manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketManifests).Put(versionKey(m.Version), data)
}

func getManifest(tx *bbolt.Tx, v uint64) (manifest, error) {
	var m manifest
	if v == 0 {
		return m, domain.ErrNotInitialized
	}
	data := tx.Bucket(bucketManifests).Get(versionKey(v))
	if data == nil {
		return m, fmt.Errorf("version not found: %d", v)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, err
	}
	return m, nil
}

func putStats(tx *bbolt.Tx, st indexStats) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketMeta).Put(keyStats, data)
}

func getStats(tx *bbolt.Tx) indexStats {
	var st indexStats
	if data := tx.Bucket(bucketMeta).Get(keyStats); data != nil {
		json.Unmarshal(data, &st)
	}
	return st
}
