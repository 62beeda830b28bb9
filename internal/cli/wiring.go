package cli

import (
	"fmt"
	"os"
	"time"

	"kb/config"
	"kb/internal/adapter/analyzer"
	"kb/internal/adapter/cache"
	"kb/internal/adapter/embedding"
	"kb/internal/adapter/retriever"
	"kb/internal/adapter/store"
	"kb/internal/domain"
	"kb/internal/port"
)

const mockModel = "mock"

// openStore opens the workspace store, creating files as needed. Only
// init should call this; everything else goes through openExistingStore.
func openStore() (*store.Store, error) {
	tok := analyzer.NewTokenizer(cfg.Search.Stemming)
	return store.Open(config.StorePath(workspace), tok)
}

// openExistingStore opens the workspace store and fails with the
// not-initialized error when no store file exists yet.
func openExistingStore() (*store.Store, error) {
	path := config.StorePath(workspace)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no knowledge base in %s, run 'kb init' first", domain.ErrNotInitialized, workspace)
	}
	return openStore()
}

// configuredSettings is the embedding configuration before a store
// exists: config file values with environment overrides.
func configuredSettings() domain.EmbeddingSettings {
	base := domain.EmbeddingSettings{
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BaseURL:    cfg.Embedding.BaseURL,
	}
	return embedding.SettingsFromEnv(base)
}

// newEmbedder builds the embedder for the given settings. The mock
// model runs offline with deterministic vectors; anything else needs
// provider credentials in the environment.
func newEmbedder(settings domain.EmbeddingSettings) (port.Embedder, error) {
	if settings.Model == mockModel {
		dims := settings.Dimensions
		if dims <= 0 {
			dims = 8
		}
		return embedding.NewMockEmbedder(dims), nil
	}

	apiKey, err := embedding.CredentialsFromEnv()
	if err != nil {
		return nil, err
	}
	e, err := embedding.NewOpenAIEmbedder(apiKey, settings)
	if err != nil {
		return nil, err
	}
	// Probes the provider only when the model's dimensionality is
	// unknown.
	if _, err := e.ResolveSettings(); err != nil {
		return nil, err
	}
	return cache.NewCachedEmbedder(e, cache.NewEmbeddingCache(cfg.Embedding.CacheSize, 15*time.Minute)), nil
}

// storeEmbedder builds an embedder matching an initialized store's
// settings, so query vectors stay in the space the rows were embedded
// in.
func storeEmbedder(st *store.Store) (port.Embedder, error) {
	settings, err := st.EmbeddingSettings()
	if err != nil {
		return nil, err
	}
	return newEmbedder(settings)
}

func newRetrievers(st *store.Store, embedder port.Embedder) (fts, semantic, hybrid port.Retriever) {
	tok := analyzer.NewTokenizer(cfg.Search.Stemming)
	fts = retriever.NewBM25Retriever(st, tok, cfg.Search.K1, cfg.Search.B)
	semantic = retriever.NewSemanticRetriever(st, embedder)
	hybrid = retriever.NewHybridRetriever(fts, semantic, cfg.Search.RRFK)
	return fts, semantic, hybrid
}
