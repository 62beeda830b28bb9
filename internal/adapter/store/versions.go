package store

import (
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"kb/internal/domain"
)

// Append writes records as one new version. Rows whose source file is
// being re-ingested are superseded in the same version so that
// (source_file, chunk_index) stays unique; the old rows remain reachable
// through earlier manifests.
func (s *Store) Append(records []domain.ChunkRecord) (uint64, error) {
	if len(records) == 0 {
		return 0, domain.ErrNoContent
	}

	var version uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		cur := currentVersion(tx)
		m, err := getManifest(tx, cur)
		if err != nil {
			return err
		}

		settings, err := embeddingSettings(tx)
		if err != nil {
			return err
		}
		for _, r := range records {
			if len(r.Vector) != settings.Dimensions {
				return fmt.Errorf("%w: vector dimension mismatch: expected %d, got %d",
					domain.ErrInvalidArgument, settings.Dimensions, len(r.Vector))
			}
		}

		incoming := make(map[string]struct{}, 1)
		for _, r := range records {
			incoming[r.SourceFile] = struct{}{}
		}

		rows := tx.Bucket(bucketRows)
		replaced := false
		newIDs := make([]string, 0, len(m.RowIDs)+len(records))
		for _, id := range m.RowIDs {
			old, err := readRow(tx, id)
			if err != nil {
				continue
			}
			if _, hit := incoming[old.SourceFile]; hit {
				replaced = true
				continue
			}
			newIDs = append(newIDs, id)
		}

		for _, r := range records {
			data, err := marshalRow(r)
			if err != nil {
				return err
			}
			if err := rows.Put([]byte(r.ID), data); err != nil {
				return err
			}
			newIDs = append(newIDs, r.ID)
		}

		version = cur + 1
		next := manifest{
			Version:   version,
			Timestamp: time.Now().UTC().UnixNano(),
			Operation: domain.OpIngest,
			RowIDs:    newIDs,
		}
		if err := putManifest(tx, next); err != nil {
			return err
		}
		if err := setCurrentVersion(tx, version); err != nil {
			return err
		}

		if replaced {
			return s.rebuildPostings(tx, newIDs)
		}
		return s.mergePostings(tx, records)
	})
	if err != nil {
		return 0, wrapEngine(err)
	}
	return version, nil
}

// DeleteWhere removes live rows matching the filter and commits a new
// version. A filter matching nothing still commits; the removed count
// tells the caller whether anything changed.
func (s *Store) DeleteWhere(f domain.Filter) (removed int, version uint64, err error) {
	if f.IsZero() {
		return 0, 0, fmt.Errorf("%w: delete requires a source file or id predicate", domain.ErrInvalidArgument)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		cur := currentVersion(tx)
		m, err := getManifest(tx, cur)
		if err != nil {
			return err
		}

		kept := make([]string, 0, len(m.RowIDs))
		for _, id := range m.RowIDs {
			r, err := readRow(tx, id)
			if err != nil {
				continue
			}
			if f.Matches(r) {
				removed++
				continue
			}
			kept = append(kept, id)
		}

		version = cur + 1
		next := manifest{
			Version:   version,
			Timestamp: time.Now().UTC().UnixNano(),
			Operation: domain.OpDelete,
			RowIDs:    kept,
		}
		if err := putManifest(tx, next); err != nil {
			return err
		}
		if err := setCurrentVersion(tx, version); err != nil {
			return err
		}
		return s.rebuildPostings(tx, kept)
	})
	if err != nil {
		return 0, 0, wrapEngine(err)
	}
	return removed, version, nil
}

// Restore makes the content of historical version v live again by
// committing a new version with v's row set. History is never rewound;
// the new version number is strictly greater than the current one.
func (s *Store) Restore(v uint64) (newVersion uint64, rowCount int, err error) {
	err = s.db.Update(func(tx *bbolt.Tx) error {
		target, err := getManifest(tx, v)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}

		cur := currentVersion(tx)
		newVersion = cur + 1
		rowCount = len(target.RowIDs)

		next := manifest{
			Version:   newVersion,
			Timestamp: time.Now().UTC().UnixNano(),
			Operation: domain.OpRestore,
			RowIDs:    target.RowIDs,
		}
		if err := putManifest(tx, next); err != nil {
			return err
		}
		if err := setCurrentVersion(tx, newVersion); err != nil {
			return err
		}
		return s.rebuildPostings(tx, target.RowIDs)
	})
	if err != nil {
		return 0, 0, wrapEngine(err)
	}
	return newVersion, rowCount, nil
}

// Versions lists the full append-only history, oldest first.
func (s *Store) Versions() ([]domain.VersionInfo, error) {
	var versions []domain.VersionInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketManifests).ForEach(func(k, v []byte) error {
			var m manifest
			if err := unmarshalManifest(v, &m); err != nil {
				return nil
			}
			versions = append(versions, domain.VersionInfo{
				Version:   m.Version,
				Timestamp: time.Unix(0, m.Timestamp).UTC(),
				Operation: m.Operation,
				RowCount:  len(m.RowIDs),
			})
			return nil
		})
	})
	if err != nil {
		return nil, wrapEngine(err)
	}
	return versions, nil
}

func embeddingSettings(tx *bbolt.Tx) (domain.EmbeddingSettings, error) {
	var settings domain.EmbeddingSettings
	data := tx.Bucket(bucketMeta).Get(keyEmbedding)
	if data == nil {
		return settings, domain.ErrNotInitialized
	}
	if err := unmarshalSettings(data, &settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// wrapEngine keeps domain sentinels intact and wraps everything else as
// a storage engine failure.
func wrapEngine(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotInitialized),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrNoContent),
		errors.Is(err, domain.ErrConflict):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrStorageEngine, err)
	}
}
