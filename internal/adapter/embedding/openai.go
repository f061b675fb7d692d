package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
// The provider is fallible and possibly rate-limited; every failure is
// returned to the caller, never retried here.
type OpenAIEmbedder struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	client    *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewOpenAIEmbedder(apiKeyEnv, model string) (*OpenAIEmbedder, error) {
	return NewOpenAICompatibleEmbedder(apiKeyEnv, model, "https://api.openai.com/v1")
}

func NewOllamaEmbedder(model, baseURL string) (*OpenAIEmbedder, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}

	dimension := 768
	switch model {
	case "nomic-embed-text":
		dimension = 768
	case "mxbai-embed-large":
		dimension = 1024
	case "all-minilm":
		dimension = 384
	}

	return &OpenAIEmbedder{
		apiKey:    "ollama",
		model:     model,
		baseURL:   baseURL,
		dimension: dimension,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func NewOpenAICompatibleEmbedder(apiKeyEnv, model, baseURL string) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	dimension := 1536
	switch model {
	case "text-embedding-ada-002":
		dimension = 1536
	case "text-embedding-3-small":
		dimension = 1536
	case "text-embedding-3-large":
		dimension = 3072
	}

	return &OpenAIEmbedder{
		apiKey:    apiKey,
		model:     model,
		baseURL:   baseURL,
		dimension: dimension,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Embed generates embeddings for all texts, batching requests at 100
// inputs. The result has one vector per input text, in input order.
func (e *OpenAIEmbedder) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	const maxBatch = 100
	var all [][]float32

	for i := 0; i < len(texts); i += maxBatch {
		end := i + maxBatch
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := e.embedBatch(texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}

	return all, nil
}

// EmbedQuery embeds a single interactive query. Literal "\n" escape
// sequences are replaced with spaces before sending.
func (e *OpenAIEmbedder) EmbedQuery(text string) ([]float32, error) {
	normalized := strings.ReplaceAll(text, `\n`, " ")

	vectors, err := e.embedBatch([]string{normalized})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || vectors[0] == nil {
		return nil, fmt.Errorf("embedding API returned no vector for query")
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) embedBatch(texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Input: texts,
		Model: e.model,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", e.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, fmt.Errorf("failed to parse response (body: %s): %w", preview, err)
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", embResp.Error.Message)
	}

	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("API returned %d embeddings for %d inputs", len(embResp.Data), len(texts))
	}

	// The API may return data out of order; Index restores input order.
	vectors := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("API returned out-of-range embedding index %d", data.Index)
		}
		vectors[data.Index] = data.Embedding
	}

	return vectors, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}
