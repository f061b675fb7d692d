package chunker

import "strings"

// ParagraphChunker splits text on paragraph boundaries (double newline)
// and accumulates paragraphs into chunks of at most maxLen characters.
// A single paragraph longer than maxLen is emitted whole rather than
// split mid-paragraph, so one oversized chunk can exceed the bound.
type ParagraphChunker struct {
	maxLen int
}

func NewParagraphChunker(maxLen int) *ParagraphChunker {
	return &ParagraphChunker{maxLen: maxLen}
}

// Chunk splits text into ordered chunks. The paragraph separator counts
// toward the running length. Empty input produces exactly one empty
// chunk; downstream must tolerate it.
func (c *ParagraphChunker) Chunk(text string) []string {
	paragraphs := strings.Split(text, "\n\n")

	chunks := make([]string, 0, 1)
	var buf strings.Builder

	for _, p := range paragraphs {
		if buf.Len() > 0 && buf.Len()+len(p) > c.maxLen {
			chunks = append(chunks, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
		buf.WriteString(p)
		buf.WriteString("\n\n")
	}

	tail := strings.TrimSpace(buf.String())
	if tail != "" || len(chunks) == 0 {
		chunks = append(chunks, tail)
	}

	return chunks
}
