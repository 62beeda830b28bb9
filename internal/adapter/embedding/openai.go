package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"kb/internal/domain"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "text-embedding-3-small"

	// Provider-side input limit per request.
	maxBatch = 100
)

// Dimensions of known embedding models. Unknown models are probed with a
// live call instead.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
}

// OpenAIEmbedder talks to an OpenAI-compatible /embeddings endpoint.
// Works against api.openai.com and any compatible gateway (Azure,
// LiteLLM, Ollama's OpenAI shim) via a custom base URL.
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	baseURL    string
	dimensions int
	client     *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAIEmbedder creates an embedder from resolved settings. The API
// key must already be present; resolution from the environment lives in
// CredentialsFromEnv.
func NewOpenAIEmbedder(apiKey string, settings domain.EmbeddingSettings) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, domain.ErrMissingCredentials
	}

	model := settings.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	e := &OpenAIEmbedder{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		dimensions: settings.Dimensions,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	if e.dimensions == 0 {
		e.dimensions = modelDimensions[model]
	}

	return e, nil
}

// ResolveSettings completes the embedding configuration before any table
// is created: when the dimensionality is not known for the model, it is
// discovered by embedding a probe string and measuring the result.
func (e *OpenAIEmbedder) ResolveSettings() (domain.EmbeddingSettings, error) {
	if e.dimensions == 0 {
		vec, err := e.EmbedQuery("dimension probe")
		if err != nil {
			return domain.EmbeddingSettings{}, err
		}
		e.dimensions = len(vec)
	}

	settings := domain.EmbeddingSettings{
		Model:      e.model,
		Dimensions: e.dimensions,
	}
	if e.baseURL != defaultBaseURL {
		settings.BaseURL = e.baseURL
	}
	return settings, nil
}

// Embed generates embeddings for the given texts, batching requests to
// stay under the provider's input limit.
func (e *OpenAIEmbedder) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += maxBatch {
		end := i + maxBatch
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.embedBatch(texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}

	return all, nil
}

// EmbedQuery generates an embedding for a single search query.
func (e *OpenAIEmbedder) EmbedQuery(text string) ([]float32, error) {
	vecs, err := e.embedBatch([]string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || vecs[0] == nil {
		return nil, fmt.Errorf("%w: provider returned no embedding", domain.ErrEmbeddingProvider)
	}
	return vecs[0], nil
}

func (e *OpenAIEmbedder) embedBatch(texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Input: texts,
		Model: e.model,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", domain.ErrEmbeddingProvider, err)
	}

	req, err := http.NewRequest(http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", domain.ErrEmbeddingProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrEmbeddingProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrEmbeddingProvider, resp.StatusCode, preview)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", domain.ErrEmbeddingProvider, err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingProvider, embResp.Error.Message)
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index >= 0 && data.Index < len(embeddings) {
			embeddings[data.Index] = data.Embedding
		}
	}

	return embeddings, nil
}

// Dimensions returns the embedding vector dimensionality. Zero means not
// yet resolved; call ResolveSettings first.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the embedding model name.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}
