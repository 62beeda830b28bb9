package usecase

import (
	"fmt"

	"kb/internal/adapter/store"
	"kb/internal/domain"
	"kb/internal/logger"
	"kb/internal/port"
)

// InitUseCase creates a workspace's knowledge base.
type InitUseCase struct {
	store    *store.Store
	embedder port.Embedder
}

// NewInitUseCase creates a new init use case.
func NewInitUseCase(st *store.Store, embedder port.Embedder) *InitUseCase {
	return &InitUseCase{store: st, embedder: embedder}
}

// InitResult describes the outcome of initialization.
type InitResult struct {
	Created    bool   `json:"created"`
	Version    uint64 `json:"version"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	Path       string `json:"path"`
}

// Init creates the store's table if it does not exist. Re-running
// against an initialized workspace reports the existing state.
func (u *InitUseCase) Init() (*InitResult, error) {
	settings := domain.EmbeddingSettings{
		Model:      u.embedder.ModelName(),
		Dimensions: u.embedder.Dimensions(),
	}
	if settings.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: embedder reports no dimensionality", domain.ErrEmbeddingProvider)
	}

	created, version, err := u.store.CreateTable(settings)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("initialized knowledge base at %s (model=%s dims=%d)", u.store.Path(), settings.Model, settings.Dimensions)
	} else {
		existing, err := u.store.EmbeddingSettings()
		if err != nil {
			return nil, err
		}
		settings = existing
		logger.Debug("knowledge base already initialized at %s", u.store.Path())
	}

	return &InitResult{
		Created:    created,
		Version:    version,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
		Path:       u.store.Path(),
	}, nil
}
