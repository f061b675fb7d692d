package domain

import "time"

// Resource is a stored document: identity, display name, and full
// extracted text. Content is immutable once stored.
type Resource struct {
	ID        string
	Name      string
	Content   string
	CreatedAt time.Time
}

// Embedding is one chunk of a resource's content together with its
// vector representation. Many embeddings reference one resource.
type Embedding struct {
	ID         string
	ResourceID string
	Content    string
	Vector     []float32
}

// EmbeddedChunk pairs a chunk of text with its vector before the rows
// are persisted under a resource.
type EmbeddedChunk struct {
	Content string
	Vector  []float32
}

// RankedPassage is a retrieval result: a stored chunk and its cosine
// similarity to the query, in [-1, 1].
type RankedPassage struct {
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// ResourceHealth reports how many embedding rows back a resource.
// EmbeddingCount == 0 marks the accepted partial-ingest state that
// doctor can repair.
type ResourceHealth struct {
	Resource       Resource
	EmbeddingCount int
}
