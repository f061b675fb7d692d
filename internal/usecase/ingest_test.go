package usecase

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"knowbase/internal/adapter/chunker"
	"knowbase/internal/adapter/embedding"
	"knowbase/internal/adapter/memstore"
	"knowbase/internal/domain"
)

// failingEmbedder simulates an unavailable embedding provider.
type failingEmbedder struct{}

func (failingEmbedder) Embed(texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("provider unavailable")
}

func (failingEmbedder) EmbedQuery(text string) ([]float32, error) {
	return nil, fmt.Errorf("provider unavailable")
}

func (failingEmbedder) Dimension() int    { return 8 }
func (failingEmbedder) ModelName() string { return "failing" }

func newIngest(store *memstore.MemoryStore) *IngestUseCase {
	return NewIngestUseCase(store, chunker.NewParagraphChunker(5000), embedding.NewMockEmbedder(8), nil)
}

func TestCreateResourceSingleChunk(t *testing.T) {
	store := memstore.NewMemoryStore()
	ingest := newIngest(store)

	resource, err := ingest.CreateResource(NewResource{
		Name:    "guide.txt",
		Content: "Paragraph one.\n\nParagraph two.",
	})
	if err != nil {
		t.Fatal(err)
	}

	if resource.ID == "" {
		t.Fatal("expected generated resource ID")
	}

	rows := store.Embeddings()
	if len(rows) != 1 {
		t.Fatalf("expected 1 embedding row, got %d", len(rows))
	}
	if rows[0].Content != "Paragraph one.\n\nParagraph two." {
		t.Errorf("unexpected chunk content: %q", rows[0].Content)
	}

	resources, err := store.ListResources()
	if err != nil {
		t.Fatal(err)
	}
	if len(resources) != 1 {
		t.Fatalf("expected 1 resource row, got %d", len(resources))
	}
}

func TestCreateResourceReferentialIntegrity(t *testing.T) {
	store := memstore.NewMemoryStore()
	ingest := newIngest(store)

	p1 := strings.Repeat("a", 4000)
	p2 := strings.Repeat("b", 4000)
	resource, err := ingest.CreateResource(NewResource{
		Name:    "big.txt",
		Content: p1 + "\n\n" + p2,
	})
	if err != nil {
		t.Fatal(err)
	}

	rows := store.Embeddings()
	if len(rows) != 2 {
		t.Fatalf("expected 2 embedding rows (split forced at 5000 chars), got %d", len(rows))
	}
	for i, row := range rows {
		if row.ResourceID != resource.ID {
			t.Errorf("row %d references %q, want %q", i, row.ResourceID, resource.ID)
		}
		if len(row.Vector) != 8 {
			t.Errorf("row %d has vector of dimension %d, want 8", i, len(row.Vector))
		}
	}
}

func TestCreateResourceValidation(t *testing.T) {
	store := memstore.NewMemoryStore()
	ingest := newIngest(store)

	cases := []struct {
		name  string
		input NewResource
	}{
		{"empty name", NewResource{Name: "", Content: "text"}},
		{"blank name", NewResource{Name: "   ", Content: "text"}},
		{"empty content", NewResource{Name: "doc.txt", Content: ""}},
		{"oversized name", NewResource{Name: strings.Repeat("n", 300), Content: "text"}},
		{"oversized content", NewResource{Name: "doc.txt", Content: strings.Repeat("c", MaxContentLength+1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ingest.CreateResource(tc.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			kind, ok := domain.KindOf(err)
			if !ok || kind != domain.KindValidation {
				t.Errorf("expected validation error kind, got %v", err)
			}
		})
	}

	if resources, _ := store.ListResources(); len(resources) != 0 {
		t.Errorf("validation failures must not write to the store, found %d resources", len(resources))
	}
}

func TestCreateResourcePartialFailure(t *testing.T) {
	store := memstore.NewMemoryStore()
	ingest := NewIngestUseCase(store, chunker.NewParagraphChunker(5000), failingEmbedder{}, nil)

	_, err := ingest.CreateResource(NewResource{Name: "doc.txt", Content: "some content"})
	if err == nil {
		t.Fatal("expected provider error, not silent success")
	}
	kind, ok := domain.KindOf(err)
	if !ok || kind != domain.KindProvider {
		t.Errorf("expected provider error kind, got %v", err)
	}

	// The resource row stays committed; zero embedding rows exist.
	resources, err := store.ListResources()
	if err != nil {
		t.Fatal(err)
	}
	if len(resources) != 1 {
		t.Fatalf("expected the resource row to survive embedding failure, got %d rows", len(resources))
	}
	if rows := store.Embeddings(); len(rows) != 0 {
		t.Errorf("expected zero embedding rows, got %d", len(rows))
	}
}

func TestCreateResourceStoreFailure(t *testing.T) {
	store := memstore.NewMemoryStore()
	store.FailInserts = true
	ingest := newIngest(store)

	_, err := ingest.CreateResource(NewResource{Name: "doc.txt", Content: "some content"})
	if err == nil {
		t.Fatal("expected store error")
	}
	kind, ok := domain.KindOf(err)
	if !ok || kind != domain.KindStore {
		t.Errorf("expected store error kind, got %v", err)
	}
}

func TestPipelineErrorMessageIsClean(t *testing.T) {
	store := memstore.NewMemoryStore()
	ingest := NewIngestUseCase(store, chunker.NewParagraphChunker(5000), failingEmbedder{}, nil)

	_, err := ingest.CreateResource(NewResource{Name: "doc.txt", Content: "some content"})
	if err == nil {
		t.Fatal("expected error")
	}

	msg := domain.Describe(err)
	if strings.Contains(msg, "provider unavailable") {
		t.Errorf("caller-facing message leaks internals: %q", msg)
	}
	if msg == "" {
		t.Error("expected a human-readable message")
	}

	// The cause stays reachable for logs.
	var pe *domain.PipelineError
	if !errors.As(err, &pe) || pe.Unwrap() == nil {
		t.Error("expected wrapped cause on provider error")
	}
}
