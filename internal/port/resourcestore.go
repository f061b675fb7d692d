package port

import "knowbase/internal/domain"

// ResourceStore owns the resource and embedding tables. All access goes
// through these operations; callers never mutate rows directly.
type ResourceStore interface {
	// InsertResource persists a new resource, generating its ID, and
	// returns the full row.
	InsertResource(name, content string) (domain.Resource, error)

	// InsertEmbeddings bulk-inserts embedding rows for one resource as
	// a single write. The resource must already be persisted.
	InsertEmbeddings(resourceID string, chunks []domain.EmbeddedChunk) error

	// SimilaritySearch scores every stored embedding against the query
	// vector with cosine similarity, keeps rows strictly above
	// minSimilarity, and returns at most limit rows in descending
	// similarity order.
	SimilaritySearch(query []float32, minSimilarity float64, limit int) ([]domain.RankedPassage, error)

	// GetResource returns a resource by ID.
	GetResource(id string) (domain.Resource, error)

	// ListResources returns all stored resources.
	ListResources() ([]domain.Resource, error)

	// CountEmbeddings returns the number of embedding rows referencing
	// the resource. Zero marks a repairable partial ingest.
	CountEmbeddings(resourceID string) (int, error)

	Close() error
}
