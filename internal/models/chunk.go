// Package models defines core data structures for chunks, queries, rankings, and reports.
package models

// Chunk is a unit of indexable text extracted from one source file.
// A chunk belongs to exactly one file; a file may own many chunks.
type Chunk struct {
	ID        string    `json:"id"`
	FilePath  string    `json:"file_path"`
	Text      string    `json:"text"`
	Index     int       `json:"index"`
	TokenLen  int       `json:"token_len"`
	Embedding []float32 `json:"-"`
}

// SourceFile is one discovered project source file with its text content.
type SourceFile struct {
	Path string
	Text string
}
