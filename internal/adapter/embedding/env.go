package embedding

import (
	"os"
	"strconv"

	"kb/internal/domain"
)

// Environment variables the embedding provider is configured from.
// EMBEDDING_API_KEY takes precedence; OPENAI_API_KEY is the fallback so
// plain OpenAI setups work without extra configuration.
const (
	EnvAPIKey     = "EMBEDDING_API_KEY"
	EnvAPIKeyAlt  = "OPENAI_API_KEY"
	EnvBaseURL    = "EMBEDDING_API_BASE"
	EnvModel      = "EMBEDDING_MODEL"
	EnvDimensions = "EMBEDDING_DIMENSIONS"
)

// CredentialsFromEnv resolves the provider API key from the ambient
// environment. All environment reads for credentials go through here;
// nothing else in the codebase touches these variables.
func CredentialsFromEnv() (string, error) {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key, nil
	}
	if key := os.Getenv(EnvAPIKeyAlt); key != "" {
		return key, nil
	}
	return "", domain.ErrMissingCredentials
}

// SettingsFromEnv overlays environment overrides onto settings, typically
// the ones a knowledge base was created with. Explicit environment values
// win; empty fields fall back to the provider defaults.
func SettingsFromEnv(base domain.EmbeddingSettings) domain.EmbeddingSettings {
	if model := os.Getenv(EnvModel); model != "" {
		base.Model = model
	}
	if url := os.Getenv(EnvBaseURL); url != "" {
		base.BaseURL = url
	}
	if dims := os.Getenv(EnvDimensions); dims != "" {
		if n, err := strconv.Atoi(dims); err == nil && n > 0 {
			base.Dimensions = n
		}
	}
	return base
}
