package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the knowledge base.
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ChunkingConfig holds document chunking configuration.
type ChunkingConfig struct {
	// MaxChars bounds chunk size in characters, not tokens. A known
	// approximation of true model input limits.
	MaxChars int `yaml:"max_chars"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g. "text-embedding-ada-002"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string `yaml:"base_url"`    // Override for OpenAI-compatible endpoints
	Dimension int    `yaml:"dimension"`
}

// RetrieveConfig holds retrieval policy. These are defaults, not
// hard-coded physics.
type RetrieveConfig struct {
	MinSimilarity float64 `yaml:"min_similarity"` // Keep rows strictly above this
	Limit         int     `yaml:"limit"`          // Max passages per query
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			MaxChars: 5000,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-ada-002",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
		},
		Retrieve: RetrieveConfig{
			MinSimilarity: 0.5,
			Limit:         4,
		},
		Logging: LoggingConfig{
			Level: "info",
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

// LoadFromDir loads configuration from a directory (looks for
// knowbase.yaml, then .knowbase/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "knowbase.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".knowbase", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StoreDBPath returns the path to the knowledge base database.
func StoreDBPath(dir string) string {
	return filepath.Join(dir, ".knowbase", "knowbase.db")
}

// EnsureDataDir ensures the .knowbase directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".knowbase"), 0755)
}
