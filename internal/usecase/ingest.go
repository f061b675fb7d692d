package usecase

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// Validation limits, held as data so the contract is inspectable.
const (
	MaxNameLength    = 255
	MaxContentLength = 1 << 20 // 1 MiB of extracted text
)

// NewResource is the ingestion input: a display name and the raw
// extracted text, produced by an external document-decoding collaborator.
type NewResource struct {
	Name    string
	Content string
}

// ValidateNewResource checks the ingestion input before any store write.
func ValidateNewResource(input NewResource) error {
	if strings.TrimSpace(input.Name) == "" {
		return domain.ValidationError("resource name is required")
	}
	if len(input.Name) > MaxNameLength {
		return domain.ValidationError(fmt.Sprintf("resource name exceeds %d characters", MaxNameLength))
	}
	if input.Content == "" {
		return domain.ValidationError("resource content is empty")
	}
	if len(input.Content) > MaxContentLength {
		return domain.ValidationError(fmt.Sprintf("resource content exceeds %d bytes", MaxContentLength))
	}
	return nil
}

// IngestUseCase coordinates ingestion: validate, persist the resource,
// chunk, embed the chunks in one batch, persist the embedding rows.
type IngestUseCase struct {
	store    port.ResourceStore
	chunker  port.Chunker
	embedder port.Embedder
	log      *zap.Logger
}

func NewIngestUseCase(store port.ResourceStore, chunker port.Chunker, embedder port.Embedder, log *zap.Logger) *IngestUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &IngestUseCase{
		store:    store,
		chunker:  chunker,
		embedder: embedder,
		log:      log,
	}
}

// CreateResource runs the full ingestion pipeline and returns the
// persisted resource. The resource row is committed before embeddings
// are generated; if embedding or the embedding insert fails, the
// resource is deliberately NOT rolled back. A resource with zero
// embedding rows is a valid, detectable partial state that doctor can
// repair; callers must treat it as recoverable, not as corruption.
//
// All failures come back as *domain.PipelineError, classified by kind,
// carrying a short human-readable message.
func (u *IngestUseCase) CreateResource(input NewResource) (domain.Resource, error) {
	if err := ValidateNewResource(input); err != nil {
		return domain.Resource{}, err
	}

	resource, err := u.store.InsertResource(input.Name, input.Content)
	if err != nil {
		u.log.Error("resource insert failed", zap.String("name", input.Name), zap.Error(err))
		return domain.Resource{}, domain.StoreError("failed to store resource", err)
	}

	u.log.Info("resource created",
		zap.String("id", resource.ID),
		zap.String("name", resource.Name),
		zap.Int("content_bytes", len(resource.Content)))

	if err := u.embedResource(resource); err != nil {
		return domain.Resource{}, err
	}

	return resource, nil
}

// embedResource chunks a persisted resource, embeds all chunks in one
// batched call, and bulk-inserts the embedding rows. Also used by
// doctor to repair resources left without embeddings.
func (u *IngestUseCase) embedResource(resource domain.Resource) error {
	chunks := u.chunker.Chunk(resource.Content)

	vectors, err := u.embedder.Embed(chunks)
	if err != nil {
		u.log.Warn("embedding failed, resource left without embeddings",
			zap.String("id", resource.ID), zap.Error(err))
		return domain.ProviderError("failed to generate embeddings", err)
	}
	if len(vectors) != len(chunks) {
		return domain.ProviderError(
			fmt.Sprintf("embedding provider returned %d vectors for %d chunks", len(vectors), len(chunks)), nil)
	}

	rows := make([]domain.EmbeddedChunk, len(chunks))
	for i := range chunks {
		rows[i] = domain.EmbeddedChunk{Content: chunks[i], Vector: vectors[i]}
	}

	if err := u.store.InsertEmbeddings(resource.ID, rows); err != nil {
		u.log.Error("embedding insert failed", zap.String("id", resource.ID), zap.Error(err))
		return domain.StoreError("failed to store embeddings", err)
	}

	u.log.Info("embeddings stored", zap.String("id", resource.ID), zap.Int("chunks", len(rows)))
	return nil
}
