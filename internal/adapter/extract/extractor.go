// Package extract provides plain-text extraction from uploaded document
// files. The knowledge pipeline itself only ever consumes the resulting
// {name, content} pair; binary parsing stays here at the edge.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Extractor extracts plain text from document files.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
// PDF text is extracted from the binary format; .txt and .md content is
// returned as-is after UTF-8 validation.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractBytes extracts text from content based on the file extension.
// ext includes the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".txt", ".md", "":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(content), nil
}
