// Package vector provides a dense vector index over chunk embeddings with
// exact inner-product search.
package vector

import "context"

// Index defines vector storage and similarity search. Implementations are
// immutable after the owning project's build completes and safe for
// concurrent reads.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	IDs() []string
	Size() int
	Dimensions() int
	Save(path string) error
	Load(path string) error
}

// Result is a single vector search hit; ID is a chunk ID.
type Result struct {
	ID    string
	Score float64 // inner product; equals cosine similarity for unit vectors
}
