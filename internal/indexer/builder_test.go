package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bugloc/bugloc/internal/config"
	"github.com/bugloc/bugloc/internal/embedding"
	"github.com/bugloc/bugloc/internal/lexical"
	"github.com/bugloc/bugloc/internal/models"
)

func testConfig(dimensions int) *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Dimensions = dimensions
	cfg.Embedding.MaxRetries = 1
	cfg.Retrieval.ChunkSize = 8
	cfg.Retrieval.ChunkOverlap = 2
	return cfg
}

func testFiles() []models.SourceFile {
	return []models.SourceFile{
		{Path: "auth/login.go", Text: "func validateSession(token string) error { return checkToken(token) }"},
		{Path: "db/conn.go", Text: "func openConnection(dsn string) (*Conn, error) { return dial(dsn) }"},
	}
}

func newTestBuilder(t *testing.T, e embedding.Embedder, cfg *config.Config) *Builder {
	t.Helper()
	analyzer, err := lexical.NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer failed: %v", err)
	}
	return NewBuilder(analyzer, e, cfg)
}

func TestBuildAlignedPair(t *testing.T) {
	cfg := testConfig(16)
	b := newTestBuilder(t, embedding.NewMockEmbedder(16), cfg)

	proj, err := b.Build(context.Background(), "demo", testFiles())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proj.Name != "demo" {
		t.Errorf("unexpected project name %q", proj.Name)
	}
	if proj.Lexical.Len() == 0 {
		t.Fatal("lexical index is empty")
	}
	if proj.Vectors.Size() != proj.Lexical.Len() {
		t.Errorf("vector index should cover every chunk: %d vs %d",
			proj.Vectors.Size(), proj.Lexical.Len())
	}
	if err := proj.Validate(); err != nil {
		t.Errorf("built pair should validate: %v", err)
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	cfg := testConfig(16)
	b := newTestBuilder(t, embedding.NewMockEmbedder(16), cfg)
	proj, err := b.Build(context.Background(), "empty", nil)
	if err != nil {
		t.Fatalf("empty corpus should not error: %v", err)
	}
	if proj.Lexical.Len() != 0 || proj.Vectors.Size() != 0 {
		t.Errorf("expected empty indexes, got %d/%d", proj.Lexical.Len(), proj.Vectors.Size())
	}
}

// poisonEmbedder fails for texts containing a marker word.
type poisonEmbedder struct {
	*embedding.MockEmbedder
	marker string
}

func (p *poisonEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.Contains(text, p.marker) {
		return nil, fmt.Errorf("provider rejected text")
	}
	return p.MockEmbedder.Embed(ctx, text)
}

func TestBuildDegradesFailedChunksToLexicalOnly(t *testing.T) {
	cfg := testConfig(16)
	e := &poisonEmbedder{MockEmbedder: embedding.NewMockEmbedder(16), marker: "validateSession"}
	b := newTestBuilder(t, e, cfg)

	proj, err := b.Build(context.Background(), "demo", testFiles())
	if err != nil {
		t.Fatalf("exhausted retries should degrade, not abort: %v", err)
	}
	if proj.Vectors.Size() >= proj.Lexical.Len() {
		t.Errorf("failed chunk should be missing from the vector index: %d vs %d",
			proj.Vectors.Size(), proj.Lexical.Len())
	}
	if proj.Vectors.Size() == 0 {
		t.Error("unaffected chunks should still be embedded")
	}
	if err := proj.Validate(); err != nil {
		t.Errorf("degraded pair should still validate: %v", err)
	}
}

// wrongDimEmbedder reports one dimension but produces another.
type wrongDimEmbedder struct {
	*embedding.MockEmbedder
}

func (w *wrongDimEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, w.Dimensions()+1), nil
}

func TestBuildAbortsOnDimensionMismatch(t *testing.T) {
	cfg := testConfig(16)
	b := newTestBuilder(t, &wrongDimEmbedder{embedding.NewMockEmbedder(16)}, cfg)
	_, err := b.Build(context.Background(), "demo", testFiles())
	if !errors.Is(err, models.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestProjectSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(16)
	b := newTestBuilder(t, embedding.NewMockEmbedder(16), cfg)

	proj, err := b.Build(context.Background(), "demo", testFiles())
	if err != nil {
		t.Fatal(err)
	}
	if err := proj.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadProject(dir, "demo", 16)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if loaded.Lexical.Len() != proj.Lexical.Len() {
		t.Errorf("lexical size differs: %d vs %d", loaded.Lexical.Len(), proj.Lexical.Len())
	}
	if loaded.Vectors.Size() != proj.Vectors.Size() {
		t.Errorf("vector size differs: %d vs %d", loaded.Vectors.Size(), proj.Vectors.Size())
	}
}

func TestProjectValidateMisalignment(t *testing.T) {
	cfg := testConfig(16)
	b := newTestBuilder(t, embedding.NewMockEmbedder(16), cfg)
	proj, err := b.Build(context.Background(), "demo", testFiles())
	if err != nil {
		t.Fatal(err)
	}
	// A vector for a chunk the lexical index never saw breaks alignment.
	if err := proj.Vectors.Add(context.Background(), []string{"ghost#0000"}, [][]float32{make([]float32, 16)}); err != nil {
		t.Fatal(err)
	}
	if err := proj.Validate(); !errors.Is(err, models.ErrIndexMisaligned) {
		t.Errorf("expected ErrIndexMisaligned, got %v", err)
	}
}
