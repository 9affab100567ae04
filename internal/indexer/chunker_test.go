package indexer

import (
	"strings"
	"testing"
)

func TestChunkSplitsWithOverlap(t *testing.T) {
	c := NewChunker(4, 2)
	words := []string{"w0", "w1", "w2", "w3", "w4", "w5", "w6", "w7", "w8", "w9"}
	chunks := c.Chunk("pkg/file.go", strings.Join(words, " "))
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "w0 w1 w2 w3" {
		t.Errorf("unexpected first chunk: %q", chunks[0].Text)
	}
	if chunks[1].Text != "w2 w3 w4 w5" {
		t.Errorf("overlap missing in second chunk: %q", chunks[1].Text)
	}
	if chunks[3].Text != "w6 w7 w8 w9" {
		t.Errorf("unexpected last chunk: %q", chunks[3].Text)
	}
}

func TestChunkIDsDeterministic(t *testing.T) {
	c := NewChunker(3, 1)
	text := "a b c d e f"
	first := c.Chunk("src/main.go", text)
	second := c.Chunk("src/main.go", text)
	if len(first) != len(second) {
		t.Fatalf("chunk count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d ID differs: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
	if first[0].ID != "src/main.go#0000" {
		t.Errorf("unexpected ID format: %s", first[0].ID)
	}
}

func TestChunkIDFileRoundTrip(t *testing.T) {
	id := ChunkID("a/b/c.go", 12)
	if got := FileOfChunkID(id); got != "a/b/c.go" {
		t.Errorf("FileOfChunkID(%s) = %s", id, got)
	}
	if got := FileOfChunkID("plain"); got != "plain" {
		t.Errorf("ID without separator should pass through, got %s", got)
	}
}

func TestChunkEmptyText(t *testing.T) {
	c := NewChunker(4, 2)
	if chunks := c.Chunk("empty.go", "   \n\t "); chunks != nil {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestChunkShortText(t *testing.T) {
	c := NewChunker(100, 10)
	chunks := c.Chunk("short.go", "just three words")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
}

func TestChunkDegenerateOverlap(t *testing.T) {
	// Overlap >= size would loop forever without the step floor.
	c := NewChunker(2, 2)
	chunks := c.Chunk("f.go", "a b c d")
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if len(chunks) > 4 {
		t.Errorf("step floor violated, got %d chunks", len(chunks))
	}
}
