package usecase

import (
	"go.uber.org/zap"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// DoctorUseCase makes the accepted partial-write state observable and
// repairable: a resource whose embedding call failed after the resource
// row committed has zero embedding rows and is unsearchable until
// repaired.
type DoctorUseCase struct {
	store  port.ResourceStore
	ingest *IngestUseCase
	log    *zap.Logger
}

func NewDoctorUseCase(store port.ResourceStore, ingest *IngestUseCase, log *zap.Logger) *DoctorUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &DoctorUseCase{store: store, ingest: ingest, log: log}
}

// Check reports every stored resource with its embedding count.
func (u *DoctorUseCase) Check() ([]domain.ResourceHealth, error) {
	resources, err := u.store.ListResources()
	if err != nil {
		return nil, domain.StoreError("failed to list resources", err)
	}

	health := make([]domain.ResourceHealth, 0, len(resources))
	for _, r := range resources {
		count, err := u.store.CountEmbeddings(r.ID)
		if err != nil {
			return nil, domain.StoreError("failed to count embeddings", err)
		}
		health = append(health, domain.ResourceHealth{Resource: r, EmbeddingCount: count})
	}
	return health, nil
}

// Unembedded returns the resources stuck in the partial state.
func (u *DoctorUseCase) Unembedded() ([]domain.Resource, error) {
	health, err := u.Check()
	if err != nil {
		return nil, err
	}

	var stuck []domain.Resource
	for _, h := range health {
		if h.EmbeddingCount == 0 {
			stuck = append(stuck, h.Resource)
		}
	}
	return stuck, nil
}

// Repair re-chunks and re-embeds a resource that has no embedding rows.
func (u *DoctorUseCase) Repair(resourceID string) error {
	resource, err := u.store.GetResource(resourceID)
	if err != nil {
		return domain.StoreError("resource not found", err)
	}

	count, err := u.store.CountEmbeddings(resourceID)
	if err != nil {
		return domain.StoreError("failed to count embeddings", err)
	}
	if count > 0 {
		u.log.Info("resource already embedded, skipping repair",
			zap.String("id", resourceID), zap.Int("embeddings", count))
		return nil
	}

	u.log.Info("repairing resource", zap.String("id", resourceID), zap.String("name", resource.Name))
	return u.ingest.embedResource(resource)
}
