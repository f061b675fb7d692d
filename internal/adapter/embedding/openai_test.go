package embedding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testKeyEnv = "KNOWBASE_TEST_API_KEY"

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) *OpenAIEmbedder {
	t.Helper()
	t.Setenv(testKeyEnv, "test-key")

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	e, err := NewOpenAICompatibleEmbedder(testKeyEnv, "text-embedding-ada-002", srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEmbedBatchOrder(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}

		// Respond in reverse order; Index must restore input order.
		resp := embeddingResponse{}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingData{
				Index:     i,
				Embedding: []float32{float32(i), float32(len(req.Input[i]))},
			})
		}
		json.NewEncoder(w).Encode(resp)
	})

	texts := []string{"first", "second", "third"}
	vectors, err := e.Embed(texts)
	if err != nil {
		t.Fatal(err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Errorf("vector %d out of order: got index marker %v", i, v[0])
		}
		if v[1] != float32(len(texts[i])) {
			t.Errorf("vector %d does not correspond to texts[%d]", i, i)
		}
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	vectors, err := e.Embed(nil)
	if err != nil {
		t.Fatal(err)
	}
	if vectors != nil {
		t.Errorf("expected nil result for empty input, got %v", vectors)
	}
}

func TestEmbedAPIError(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingResponse{
			Error: &apiError{Message: "rate limit exceeded", Type: "rate_limit_error"},
		})
	})

	_, err := e.Embed([]string{"text"})
	if err == nil {
		t.Fatal("expected error from API error response")
	}
}

func TestEmbedStatusError(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := e.Embed([]string{"text"})
	if err == nil {
		t.Fatal("expected error from non-200 status")
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Index: 0, Embedding: []float32{1}}},
		})
	})

	_, err := e.Embed([]string{"one", "two"})
	if err == nil {
		t.Fatal("expected error when API returns fewer embeddings than inputs")
	}
}

func TestEmbedQueryNormalizesEscapes(t *testing.T) {
	var received string
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) == 1 {
			received = req.Input[0]
		}
		json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Index: 0, Embedding: []float32{0.5}}},
		})
	})

	if _, err := e.EmbedQuery(`line one\nline two`); err != nil {
		t.Fatal(err)
	}

	if received != "line one line two" {
		t.Errorf("expected normalized query, got %q", received)
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(8)

	a, err := e.Embed([]string{"same text"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed([]string{"same text"})
	if err != nil {
		t.Fatal(err)
	}

	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("mock embedder not deterministic at dim %d", i)
		}
	}
	if len(a[0]) != 8 {
		t.Errorf("expected dimension 8, got %d", len(a[0]))
	}
}
