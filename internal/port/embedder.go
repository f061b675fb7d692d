package port

// Embedder generates vector embeddings for text via an external model.
type Embedder interface {
	// Embed generates embeddings for the given texts in one batched
	// call. Returns one vector per input text, in input order.
	Embed(texts []string) ([][]float32, error)

	// EmbedQuery embeds a single interactive query. Literal "\n" escape
	// sequences are normalized to spaces before sending.
	EmbedQuery(text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
