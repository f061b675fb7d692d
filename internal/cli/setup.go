package cli

import (
	"fmt"
	"os"

	"knowbase/config"
	"knowbase/internal/adapter/embedding"
	"knowbase/internal/adapter/store"
	"knowbase/internal/port"
)

// newEmbedder builds the configured embedding client.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.BaseURL != "" {
			return embedding.NewOpenAICompatibleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
		}
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// openStore opens the durable store under dir, creating the data
// directory on first use.
func openStore(dir string, cfg *config.Config, embedder port.Embedder) (*store.BoltStore, error) {
	if err := config.EnsureDataDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return store.NewBoltStore(config.StoreDBPath(dir), embedder.ModelName(), embedder.Dimension())
}

// requireStore fails when no knowledge base exists yet under dir.
func requireStore(dir string) error {
	if _, err := os.Stat(config.StoreDBPath(dir)); os.IsNotExist(err) {
		return fmt.Errorf("no knowledge base found. Run 'knowbase ingest' first")
	}
	return nil
}
