package store

import (
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"

	"kb/internal/domain"
)

// mergePostings folds the terms of newly appended records into the live
// posting lists. Only valid when no existing rows were superseded.
func (s *Store) mergePostings(tx *bbolt.Tx, records []domain.ChunkRecord) error {
	postings := tx.Bucket(bucketPostings)
	st := getStats(tx)

	perTerm := make(map[string][]domain.Posting)
	for _, r := range records {
		tf := make(map[string]int)
		terms := s.tokenizer.Tokenize(r.Text)
		for _, term := range terms {
			tf[term]++
		}
		for term, n := range tf {
			perTerm[term] = append(perTerm[term], domain.Posting{RowID: r.ID, TF: n})
		}
		st.RowCount++
		st.TotalTokens += len(terms)
	}

	for term, added := range perTerm {
		var existing []domain.Posting
		if data := postings.Get([]byte(term)); data != nil {
			json.Unmarshal(data, &existing)
		}
		existing = append(existing, added...)
		data, err := json.Marshal(existing)
		if err != nil {
			return err
		}
		if err := postings.Put([]byte(term), data); err != nil {
			return err
		}
	}

	return putStats(tx, st)
}

// rebuildPostings recomputes the posting lists and index stats from
// scratch for the given live row set.
func (s *Store) rebuildPostings(tx *bbolt.Tx, rowIDs []string) error {
	postings := tx.Bucket(bucketPostings)

	c := postings.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if err := postings.Delete(k); err != nil {
			return err
		}
	}

	perTerm := make(map[string][]domain.Posting)
	st := indexStats{}
	for _, id := range rowIDs {
		r, err := readRow(tx, id)
		if err != nil {
			continue
		}
		tf := make(map[string]int)
		terms := s.tokenizer.Tokenize(r.Text)
		for _, term := range terms {
			tf[term]++
		}
		for term, n := range tf {
			perTerm[term] = append(perTerm[term], domain.Posting{RowID: id, TF: n})
		}
		st.RowCount++
		st.TotalTokens += len(terms)
	}

	for term, list := range perTerm {
		data, err := json.Marshal(list)
		if err != nil {
			return err
		}
		if err := postings.Put([]byte(term), data); err != nil {
			return err
		}
	}

	return putStats(tx, st)
}

// Postings returns the live posting list for a term.
func (s *Store) Postings(term string) ([]domain.Posting, error) {
	var list []domain.Posting
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPostings).Get([]byte(term))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &list)
	})
	if err != nil {
		return nil, wrapEngine(err)
	}
	return list, nil
}

// IndexStats returns corpus-level aggregates used by BM25 scoring.
func (s *Store) IndexStats() (rowCount int, avgChunkLen float64, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		st := getStats(tx)
		rowCount = st.RowCount
		if st.RowCount > 0 {
			avgChunkLen = float64(st.TotalTokens) / float64(st.RowCount)
		}
		return nil
	})
	if err != nil {
		return 0, 0, wrapEngine(err)
	}
	return rowCount, avgChunkLen, nil
}

// Reindex commits a new version with unchanged content, then rebuilds
// the posting lists for it. A rebuild failure leaves the table usable
// for vector search; the caller reports it as a degraded outcome rather
// than failing the operation.
func (s *Store) Reindex() (version uint64, ftsRebuilt bool, err error) {
	var rowIDs []string
	err = s.db.Update(func(tx *bbolt.Tx) error {
		cur := currentVersion(tx)
		m, err := getManifest(tx, cur)
		if err != nil {
			return err
		}
		rowIDs = m.RowIDs

		version = cur + 1
		next := manifest{
			Version:   version,
			Timestamp: time.Now().UTC().UnixNano(),
			Operation: domain.OpReindex,
			RowIDs:    rowIDs,
		}
		if err := putManifest(tx, next); err != nil {
			return err
		}
		return setCurrentVersion(tx, version)
	})
	if err != nil {
		return 0, false, wrapEngine(err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return s.rebuildPostings(tx, rowIDs)
	})
	if err != nil {
		// Degraded: version committed, full-text index stale.
		return version, false, nil
	}
	return version, true, nil
}

func readRow(tx *bbolt.Tx, id string) (domain.ChunkRecord, error) {
	var r domain.ChunkRecord
	data := tx.Bucket(bucketRows).Get([]byte(id))
	if data == nil {
		return r, domain.ErrStorageEngine
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, err
	}
	return r, nil
}

func marshalRow(r domain.ChunkRecord) ([]byte, error) {
	return json.Marshal(r)
}

func unmarshalManifest(data []byte, m *manifest) error {
	return json.Unmarshal(data, m)
}

func unmarshalSettings(data []byte, settings *domain.EmbeddingSettings) error {
	return json.Unmarshal(data, settings)
}
