// Package indexer builds aligned lexical and vector index pairs for a project.
package indexer

import (
	"fmt"
	"strings"

	"github.com/bugloc/bugloc/internal/models"
)

// Chunker splits file text into overlapping word-based chunks.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits text into chunks with overlapping windows. Chunk IDs embed the
// owning file path and the window ordinal, so rebuilds over an unchanged
// corpus assign identical IDs.
func (c *Chunker) Chunk(filePath, text string) []*models.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	var chunks []*models.Chunk
	chunkIndex := 0
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, &models.Chunk{
			ID:       ChunkID(filePath, chunkIndex),
			FilePath: filePath,
			Text:     strings.Join(words[i:end], " "),
			Index:    chunkIndex,
		})
		chunkIndex++
		if end >= len(words) {
			break
		}
	}
	return chunks
}

// ChunkID returns the deterministic ID of the idx-th chunk of filePath.
func ChunkID(filePath string, idx int) string {
	return fmt.Sprintf("%s#%04d", filePath, idx)
}

// FileOfChunkID recovers the owning file path from a chunk ID.
func FileOfChunkID(chunkID string) string {
	if i := strings.LastIndex(chunkID, "#"); i >= 0 {
		return chunkID[:i]
	}
	return chunkID
}
