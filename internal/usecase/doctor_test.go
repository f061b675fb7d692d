package usecase

import (
	"testing"

	"knowbase/internal/adapter/chunker"
	"knowbase/internal/adapter/memstore"
)

func TestDoctorDetectsAndRepairsPartialIngest(t *testing.T) {
	store := memstore.NewMemoryStore()

	// Ingest with a failing provider leaves the partial state behind.
	broken := NewIngestUseCase(store, chunker.NewParagraphChunker(5000), failingEmbedder{}, nil)
	if _, err := broken.CreateResource(NewResource{Name: "doc.txt", Content: "orphaned content"}); err == nil {
		t.Fatal("expected embedding failure")
	}

	working := newIngest(store)
	doctor := NewDoctorUseCase(store, working, nil)

	stuck, err := doctor.Unembedded()
	if err != nil {
		t.Fatal(err)
	}
	if len(stuck) != 1 {
		t.Fatalf("expected 1 unembedded resource, got %d", len(stuck))
	}
	if stuck[0].Name != "doc.txt" {
		t.Errorf("unexpected resource flagged: %q", stuck[0].Name)
	}

	if err := doctor.Repair(stuck[0].ID); err != nil {
		t.Fatalf("repair failed: %v", err)
	}

	count, err := store.CountEmbeddings(stuck[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 embedding row after repair, got %d", count)
	}

	stuck, err = doctor.Unembedded()
	if err != nil {
		t.Fatal(err)
	}
	if len(stuck) != 0 {
		t.Errorf("expected no unembedded resources after repair, got %d", len(stuck))
	}
}

func TestDoctorRepairSkipsHealthyResource(t *testing.T) {
	store := memstore.NewMemoryStore()
	ingest := newIngest(store)

	resource, err := ingest.CreateResource(NewResource{Name: "ok.txt", Content: "healthy content"})
	if err != nil {
		t.Fatal(err)
	}

	doctor := NewDoctorUseCase(store, ingest, nil)
	if err := doctor.Repair(resource.ID); err != nil {
		t.Fatal(err)
	}

	count, err := store.CountEmbeddings(resource.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("repair of a healthy resource must not duplicate rows, got %d", count)
	}
}

func TestDoctorCheckReportsCounts(t *testing.T) {
	store := memstore.NewMemoryStore()
	ingest := newIngest(store)

	if _, err := ingest.CreateResource(NewResource{Name: "a.txt", Content: "alpha"}); err != nil {
		t.Fatal(err)
	}
	if _, err := ingest.CreateResource(NewResource{Name: "b.txt", Content: "bravo"}); err != nil {
		t.Fatal(err)
	}

	doctor := NewDoctorUseCase(store, ingest, nil)
	health, err := doctor.Check()
	if err != nil {
		t.Fatal(err)
	}
	if len(health) != 2 {
		t.Fatalf("expected health for 2 resources, got %d", len(health))
	}
	for _, h := range health {
		if h.EmbeddingCount != 1 {
			t.Errorf("resource %q: expected 1 embedding, got %d", h.Resource.Name, h.EmbeddingCount)
		}
	}
}
