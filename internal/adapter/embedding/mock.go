package embedding

import "strings"

// MockEmbedder produces deterministic vectors without network access.
// Used by tests and dry runs.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, e.dimension)

		for j, r := range texts[i] {
			if j < e.dimension {
				vectors[i][j] = float32(r) / 1000.0
			}
		}
	}
	return vectors, nil
}

func (e *MockEmbedder) EmbedQuery(text string) ([]float32, error) {
	normalized := strings.ReplaceAll(text, `\n`, " ")

	vectors, err := e.Embed([]string{normalized})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
