package domain

import "errors"

// Sentinel errors for the knowledge store. Every operation converts its
// failure to one of these at the boundary so callers can match with
// errors.Is instead of parsing messages.
var (
	// ErrNotInitialized indicates the workspace has no knowledge base yet.
	ErrNotInitialized = errors.New("knowledge base not initialized")

	// ErrInvalidArgument indicates bad chunk parameters, an unknown search
	// mode, or a malformed filter expression.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingCredentials indicates vector or hybrid search was requested
	// without an embedding API key configured.
	ErrMissingCredentials = errors.New("embedding credentials not set")

	// ErrEmbeddingProvider indicates the external embedding provider call
	// failed (network, auth, quota).
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrConfirmationRequired indicates a destructive operation was invoked
	// without the explicit confirmation flag.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrConflict indicates a concurrent writer holds the store; the
	// operation is retryable.
	ErrConflict = errors.New("store is locked by another writer")

	// ErrStorageEngine wraps failures from the underlying storage engine.
	ErrStorageEngine = errors.New("storage engine error")

	// ErrNoContent indicates chunking produced nothing to ingest.
	ErrNoContent = errors.New("no content to ingest")
)
