package usecase

import (
	"fmt"
	"os"
	"sort"

	"kb/internal/adapter/store"
	"kb/internal/domain"
	"kb/internal/logger"
)

// AdminUseCase covers maintenance of the knowledge base: deletion,
// version history, restore, reindex, stats and teardown.
type AdminUseCase struct {
	store    *store.Store
	storeDir string
}

// NewAdminUseCase creates a new admin use case. storeDir is the
// directory removed by Clear.
func NewAdminUseCase(st *store.Store, storeDir string) *AdminUseCase {
	return &AdminUseCase{store: st, storeDir: storeDir}
}

// DeleteResult describes one delete operation.
type DeleteResult struct {
	Removed int    `json:"removed"`
	Version uint64 `json:"version"`
}

// Delete removes records matching the filter and commits a new version.
func (u *AdminUseCase) Delete(filter domain.Filter) (*DeleteResult, error) {
	if filter.IsZero() {
		return nil, fmt.Errorf("%w: delete requires --id or --source", domain.ErrInvalidArgument)
	}
	removed, version, err := u.store.DeleteWhere(filter)
	if err != nil {
		return nil, err
	}
	logger.Info("deleted %d records (version %d)", removed, version)
	return &DeleteResult{Removed: removed, Version: version}, nil
}

// ReindexResult describes one reindex operation.
type ReindexResult struct {
	Version    uint64 `json:"version"`
	FTSRebuilt bool   `json:"fts_rebuilt"`
}

// Reindex compacts the store into a fresh version and rebuilds the
// full-text index. A failed index rebuild degrades to vector-only
// search rather than failing the operation.
func (u *AdminUseCase) Reindex() (*ReindexResult, error) {
	version, rebuilt, err := u.store.Reindex()
	if err != nil {
		return nil, err
	}
	if !rebuilt {
		logger.Warn("full-text index rebuild failed; lexical search degraded until the next reindex")
	}
	return &ReindexResult{Version: version, FTSRebuilt: rebuilt}, nil
}

// Versions lists the store's version history, oldest first.
func (u *AdminUseCase) Versions() ([]domain.VersionInfo, error) {
	return u.store.Versions()
}

// RestoreResult describes one restore operation.
type RestoreResult struct {
	RestoredFrom uint64 `json:"restored_from"`
	Version      uint64 `json:"version"`
	RowCount     int    `json:"row_count"`
}

// Restore brings back a historical version's content as a new version.
func (u *AdminUseCase) Restore(v uint64) (*RestoreResult, error) {
	newVersion, rowCount, err := u.store.Restore(v)
	if err != nil {
		return nil, err
	}
	logger.Info("restored version %d as version %d (%d rows)", v, newVersion, rowCount)
	return &RestoreResult{RestoredFrom: v, Version: newVersion, RowCount: rowCount}, nil
}

// Stats aggregates the live version: row count, current version, size
// on disk and the per-source chunk distribution.
func (u *AdminUseCase) Stats() (*domain.Stats, error) {
	records, err := u.store.LiveRecords()
	if err != nil {
		return nil, err
	}
	version, err := u.store.CurrentVersion()
	if err != nil {
		return nil, err
	}
	size, err := u.store.SizeOnDisk()
	if err != nil {
		return nil, err
	}

	perSource := make(map[string]int)
	for _, rec := range records {
		perSource[rec.SourceFile]++
	}
	sources := make([]domain.SourceStat, 0, len(perSource))
	for file, chunks := range perSource {
		sources = append(sources, domain.SourceStat{File: file, Chunks: chunks})
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Chunks != sources[j].Chunks {
			return sources[i].Chunks > sources[j].Chunks
		}
		return sources[i].File < sources[j].File
	})

	return &domain.Stats{
		Initialized:   true,
		RowCount:      len(records),
		Version:       version,
		SizeBytes:     size,
		Sources:       sources,
		UniqueSources: len(sources),
	}, nil
}

// Clear deletes the entire knowledge base directory. Refuses to act
// without explicit confirmation.
func (u *AdminUseCase) Clear(confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("%w: pass --confirm to remove %s", domain.ErrConfirmationRequired, u.storeDir)
	}
	if err := u.store.Close(); err != nil {
		return fmt.Errorf("%w: close store: %v", domain.ErrStorageEngine, err)
	}
	if err := os.RemoveAll(u.storeDir); err != nil {
		return fmt.Errorf("%w: remove %s: %v", domain.ErrStorageEngine, u.storeDir, err)
	}
	logger.Info("removed knowledge base at %s", u.storeDir)
	return nil
}
