package port

type Chunker interface {
	// Chunk splits raw document text into ordered bounded-size segments.
	// Chunk order always equals document order.
	Chunk(text string) []string
}
