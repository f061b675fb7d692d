package memstore

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"knowbase/internal/domain"
)

// MemoryStore is an in-memory ResourceStore with the same semantics as
// the BoltDB store. Used by tests and ephemeral runs.
type MemoryStore struct {
	mu         sync.RWMutex
	resources  map[string]domain.Resource
	embeddings []domain.Embedding

	// FailInserts makes every write fail, for exercising store-error
	// paths in tests.
	FailInserts bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resources: make(map[string]domain.Resource),
	}
}

func (s *MemoryStore) InsertResource(name, content string) (domain.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInserts {
		return domain.Resource{}, fmt.Errorf("store unavailable")
	}

	resource := domain.Resource{
		ID:        uuid.NewString(),
		Name:      name,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.resources[resource.ID] = resource
	return resource, nil
}

func (s *MemoryStore) InsertEmbeddings(resourceID string, chunks []domain.EmbeddedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInserts {
		return fmt.Errorf("store unavailable")
	}
	if _, ok := s.resources[resourceID]; !ok {
		return fmt.Errorf("resource not found: %s", resourceID)
	}

	for _, chunk := range chunks {
		s.embeddings = append(s.embeddings, domain.Embedding{
			ID:         uuid.NewString(),
			ResourceID: resourceID,
			Content:    chunk.Content,
			Vector:     chunk.Vector,
		})
	}
	return nil
}

func (s *MemoryStore) SimilaritySearch(query []float32, minSimilarity float64, limit int) ([]domain.RankedPassage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]domain.RankedPassage, 0, len(s.embeddings))
	for _, e := range s.embeddings {
		sim := cosineSimilarity(query, e.Vector)
		if sim > minSimilarity {
			matches = append(matches, domain.RankedPassage{Content: e.Content, Similarity: sim})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *MemoryStore) GetResource(id string) (domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.resources[id]
	if !ok {
		return domain.Resource{}, fmt.Errorf("resource not found: %s", id)
	}
	return resource, nil
}

func (s *MemoryStore) ListResources() ([]domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := make([]domain.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		resources = append(resources, r)
	}
	sort.Slice(resources, func(i, j int) bool {
		return resources[i].CreatedAt.Before(resources[j].CreatedAt)
	})
	return resources, nil
}

func (s *MemoryStore) CountEmbeddings(resourceID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.embeddings {
		if e.ResourceID == resourceID {
			count++
		}
	}
	return count, nil
}

// Embeddings returns a snapshot of all stored embedding rows, for
// asserting referential integrity in tests.
func (s *MemoryStore) Embeddings() []domain.Embedding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Embedding(nil), s.embeddings...)
}

func (s *MemoryStore) Close() error { return nil }

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
