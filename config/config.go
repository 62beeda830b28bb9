package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the knowledge base tool.
type Config struct {
	Chunk     ChunkConfig     `yaml:"chunk"`
	Search    SearchConfig    `yaml:"search"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Embedding EmbeddingConfig `yaml:"embedding"`
}

// ChunkConfig holds text chunking configuration.
type ChunkConfig struct {
	MaxWords int `yaml:"max_words"`
	Overlap  int `yaml:"overlap"`
}

// SearchConfig holds retrieval configuration.
type SearchConfig struct {
	Limit    int     `yaml:"limit"`
	Mode     string  `yaml:"mode"`
	K1       float64 `yaml:"k1"`
	B        float64 `yaml:"b"`
	RRFK     int     `yaml:"rrf_k"`
	Stemming bool    `yaml:"stemming"`
}

// IngestConfig holds directory ingest configuration.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// EmbeddingConfig holds embedding provider configuration. API
// credentials come from the environment, never from this file.
type EmbeddingConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BaseURL    string `yaml:"base_url"`
	CacheSize  int    `yaml:"cache_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunk: ChunkConfig{
			MaxWords: 500,
			Overlap:  100,
		},
		Search: SearchConfig{
			Limit:    10,
			Mode:     "hybrid",
			K1:       1.2,
			B:        0.75,
			RRFK:     60,
			Stemming: true,
		},
		Ingest: IngestConfig{
			Includes: []string{"**/*.md", "**/*.txt", "**/*.rst"},
			Excludes: []string{".git/**", ".kb/**", "node_modules/**"},
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			CacheSize: 256,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration for a workspace, checking kb.yaml
// then .kb/config.yaml.
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "kb.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	path = filepath.Join(dir, ".kb", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// StoreDir returns the workspace's knowledge base directory.
func StoreDir(dir string) string {
	return filepath.Join(dir, ".kb")
}

// StorePath returns the path to the store database file.
func StorePath(dir string) string {
	return filepath.Join(dir, ".kb", "store.db")
}

// EnsureStoreDir creates the knowledge base directory if needed.
func EnsureStoreDir(dir string) error {
	return os.MkdirAll(StoreDir(dir), 0o755)
}
