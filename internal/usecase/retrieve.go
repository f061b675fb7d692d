package usecase

import (
	"go.uber.org/zap"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// Retrieval policy defaults. Configuration, not hard-coded physics.
const (
	DefaultMinSimilarity = 0.5
	DefaultLimit         = 4
)

// RetrieveUseCase answers natural-language queries with the most
// semantically similar stored passages.
type RetrieveUseCase struct {
	store         port.ResourceStore
	embedder      port.Embedder
	minSimilarity float64
	limit         int
	log           *zap.Logger
}

func NewRetrieveUseCase(store port.ResourceStore, embedder port.Embedder, minSimilarity float64, limit int, log *zap.Logger) *RetrieveUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &RetrieveUseCase{
		store:         store,
		embedder:      embedder,
		minSimilarity: minSimilarity,
		limit:         limit,
		log:           log,
	}
}

// FindRelevantContent embeds the query, scores it against every stored
// embedding, and returns the ranked passages above the similarity
// threshold: possibly empty, already ordered, already filtered. No
// re-ranking, no dedup: multiple chunks of one resource may appear.
func (u *RetrieveUseCase) FindRelevantContent(query string) ([]domain.RankedPassage, error) {
	vector, err := u.embedder.EmbedQuery(query)
	if err != nil {
		u.log.Warn("query embedding failed", zap.Error(err))
		return nil, domain.ProviderError("failed to embed query", err)
	}

	passages, err := u.store.SimilaritySearch(vector, u.minSimilarity, u.limit)
	if err != nil {
		u.log.Error("similarity search failed", zap.Error(err))
		return nil, domain.StoreError("similarity search failed", err)
	}

	u.log.Info("query answered", zap.Int("passages", len(passages)))
	return passages, nil
}
