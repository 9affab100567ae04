// Package embedding provides the injected text-embedding capability.
package embedding

import "context"

// Embedder produces vector embeddings for text. The engine consumes this as a
// capability: the same embedder must be used for indexing and for queries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
