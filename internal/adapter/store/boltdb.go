package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"knowbase/internal/domain"
)

var (
	bucketResources     = []byte("resources")
	bucketEmbeddings    = []byte("embeddings")
	bucketResourceIndex = []byte("resource_embeddings")
	bucketMeta          = []byte("meta")
	keySchema           = []byte("schema")
)

// BoltStore is the durable resource store backed by BoltDB. Embedding
// vectors are mirrored in memory for brute-force similarity search;
// writes go through to disk first. Safe for concurrent use.
type BoltStore struct {
	db        *bbolt.DB
	dimension int

	mu    sync.RWMutex
	cache []cachedEmbedding
}

type cachedEmbedding struct {
	id      string
	content string
	vector  []float32
}

type resourceRow struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

type embeddingRow struct {
	ResourceID string    `json:"resource_id"`
	Content    string    `json:"content"`
	Vector     []float32 `json:"vector"`
}

type schemaStamp struct {
	Version   int    `json:"version"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

const schemaVersion = 1

// NewBoltStore opens (or creates) the store at path. The embedding model
// name and dimension are stamped into the database on first open; a
// later open with a different dimension fails, since stored vectors
// would be incomparable with new ones.
func NewBoltStore(path, model string, dimension int) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketResources, bucketEmbeddings, bucketResourceIndex, bucketMeta}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}

		meta := tx.Bucket(bucketMeta)
		if data := meta.Get(keySchema); data != nil {
			var stamp schemaStamp
			if err := json.Unmarshal(data, &stamp); err != nil {
				return fmt.Errorf("failed to read schema stamp: %w", err)
			}
			if stamp.Dimension != dimension {
				return fmt.Errorf("store was built with %d-dimension embeddings (model %s), got %d; re-ingest into a fresh store",
					stamp.Dimension, stamp.Model, dimension)
			}
			return nil
		}

		stamp := schemaStamp{Version: schemaVersion, Model: model, Dimension: dimension}
		data, err := json.Marshal(stamp)
		if err != nil {
			return err
		}
		return meta.Put(keySchema, data)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{db: db, dimension: dimension}
	if err := s.loadEmbeddings(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}

	return s, nil
}

// loadEmbeddings fills the in-memory search cache from disk.
func (s *BoltStore) loadEmbeddings() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		return b.ForEach(func(k, v []byte) error {
			var row embeddingRow
			if err := json.Unmarshal(v, &row); err != nil {
				return nil // skip corrupted entries
			}
			s.cache = append(s.cache, cachedEmbedding{
				id:      string(k),
				content: row.Content,
				vector:  row.Vector,
			})
			return nil
		})
	})
}

func (s *BoltStore) InsertResource(name, content string) (domain.Resource, error) {
	resource := domain.Resource{
		ID:        uuid.NewString(),
		Name:      name,
		Content:   content,
		CreatedAt: time.Now(),
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		row := resourceRow{
			Name:      resource.Name,
			Content:   resource.Content,
			CreatedAt: resource.CreatedAt.Unix(),
		}
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketResources).Put([]byte(resource.ID), data)
	})
	if err != nil {
		return domain.Resource{}, fmt.Errorf("failed to insert resource: %w", err)
	}

	return resource, nil
}

// InsertEmbeddings bulk-inserts all rows for one resource in a single
// transaction, then mirrors them into the search cache.
func (s *BoltStore) InsertEmbeddings(resourceID string, chunks []domain.EmbeddedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]cachedEmbedding, 0, len(chunks))

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketResources).Get([]byte(resourceID)) == nil {
			return fmt.Errorf("resource not found: %s", resourceID)
		}

		embBucket := tx.Bucket(bucketEmbeddings)
		ids := make([]string, 0, len(chunks))

		for _, chunk := range chunks {
			if len(chunk.Vector) != s.dimension {
				return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(chunk.Vector))
			}

			id := uuid.NewString()
			row := embeddingRow{
				ResourceID: resourceID,
				Content:    chunk.Content,
				Vector:     chunk.Vector,
			}
			data, err := json.Marshal(row)
			if err != nil {
				return err
			}
			if err := embBucket.Put([]byte(id), data); err != nil {
				return err
			}

			ids = append(ids, id)
			added = append(added, cachedEmbedding{id: id, content: chunk.Content, vector: chunk.Vector})
		}

		index := tx.Bucket(bucketResourceIndex)
		var existing []string
		if data := index.Get([]byte(resourceID)); data != nil {
			json.Unmarshal(data, &existing)
		}
		existing = append(existing, ids...)
		data, err := json.Marshal(existing)
		if err != nil {
			return err
		}
		return index.Put([]byte(resourceID), data)
	})
	if err != nil {
		return err
	}

	s.cache = append(s.cache, added...)
	return nil
}

// SimilaritySearch scores every stored embedding against the query
// vector (brute force), keeps rows strictly above minSimilarity, and
// returns at most limit rows in descending similarity order.
func (s *BoltStore) SimilaritySearch(query []float32, minSimilarity float64, limit int) ([]domain.RankedPassage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}

	matches := make([]domain.RankedPassage, 0, len(s.cache))
	for _, entry := range s.cache {
		sim := cosineSimilarity(query, entry.vector)
		if sim > minSimilarity {
			matches = append(matches, domain.RankedPassage{
				Content:    entry.content,
				Similarity: sim,
			})
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

func (s *BoltStore) GetResource(id string) (domain.Resource, error) {
	var resource domain.Resource
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketResources).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("resource not found: %s", id)
		}
		var row resourceRow
		if err := json.Unmarshal(data, &row); err != nil {
			return err
		}
		resource = domain.Resource{
			ID:        id,
			Name:      row.Name,
			Content:   row.Content,
			CreatedAt: time.Unix(row.CreatedAt, 0),
		}
		return nil
	})
	return resource, err
}

func (s *BoltStore) ListResources() ([]domain.Resource, error) {
	var resources []domain.Resource
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketResources)
		return b.ForEach(func(k, v []byte) error {
			var row resourceRow
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			resources = append(resources, domain.Resource{
				ID:        string(k),
				Name:      row.Name,
				Content:   row.Content,
				CreatedAt: time.Unix(row.CreatedAt, 0),
			})
			return nil
		})
	})
	return resources, err
}

func (s *BoltStore) CountEmbeddings(resourceID string) (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketResourceIndex).Get([]byte(resourceID))
		if data == nil {
			return nil
		}
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		count = len(ids)
		return nil
	})
	return count, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// cosineSimilarity calculates the cosine similarity between two vectors.
// Equivalent to 1 - cosineDistance: identical direction yields 1.0,
// orthogonal vectors yield 0.0.
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
