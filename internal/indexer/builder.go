package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bugloc/bugloc/internal/config"
	"github.com/bugloc/bugloc/internal/embedding"
	"github.com/bugloc/bugloc/internal/lexical"
	"github.com/bugloc/bugloc/internal/models"
	"github.com/bugloc/bugloc/internal/vector"
)

// Builder builds a project's lexical and vector indexes from its source
// files. The two indexes are always built together from the same chunk set.
type Builder struct {
	analyzer    *lexical.Analyzer
	embedder    embedding.Embedder
	chunker     *Chunker
	retry       embedding.RetryConfig
	parallelism int
	logger      *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets a logger for build events.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a builder using the retrieval and embedding settings
// from cfg.
func NewBuilder(analyzer *lexical.Analyzer, embedder embedding.Embedder, cfg *config.Config, opts ...BuilderOption) *Builder {
	b := &Builder{
		analyzer:    analyzer,
		embedder:    embedder,
		chunker:     NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap),
		retry:       embedding.DefaultRetryConfig().WithAttempts(cfg.Embedding.MaxRetries),
		parallelism: cfg.Embedding.Parallelism,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build chunks the files, builds the lexical index, embeds every chunk, and
// builds the vector index. On any fatal error (dimension mismatch,
// cancellation) nothing is returned; the caller never sees a partial pair.
// An empty corpus yields empty indexes, not an error.
//
// Embedding failures are retried with bounded backoff; a chunk whose retries
// are exhausted is excluded from the vector index with a warning and keeps
// lexical-only coverage.
func (b *Builder) Build(ctx context.Context, project string, files []models.SourceFile) (*Project, error) {
	var chunks []*models.Chunk
	for _, f := range files {
		chunks = append(chunks, b.chunker.Chunk(f.Path, f.Text)...)
	}

	lex := lexical.NewIndex()
	for _, ch := range chunks {
		terms := b.analyzer.Analyze(ch.Text)
		ch.TokenLen = len(terms)
		lex.Add(ch.ID, ch.FilePath, terms)
	}

	vec, err := vector.NewMemoryIndex(b.embedder.Dimensions())
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &Project{Name: project, Lexical: lex, Vectors: vec}, nil
	}

	embeddings := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i, ch := range chunks {
		i, ch := i, ch
		g.Go(func() error {
			emb, embErr := embedding.EmbedWithRetry(gctx, b.embedder, ch.Text, b.retry)
			if embErr != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if b.logger != nil {
					b.logger.Warn("embedding failed, chunk degraded to lexical-only",
						zap.String("chunk_id", ch.ID), zap.Error(embErr))
				}
				return nil
			}
			if len(emb) != b.embedder.Dimensions() {
				return fmt.Errorf("chunk %q: got %d dimensions, expected %d: %w",
					ch.ID, len(emb), b.embedder.Dimensions(), models.ErrDimensionMismatch)
			}
			embeddings[i] = emb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("index build for %q aborted: %w", project, err)
	}

	var ids []string
	var vecs [][]float32
	for i, ch := range chunks {
		if embeddings[i] == nil {
			continue
		}
		ids = append(ids, ch.ID)
		vecs = append(vecs, embeddings[i])
	}
	if err := vec.Add(ctx, ids, vecs); err != nil {
		return nil, fmt.Errorf("populate vector index: %w", err)
	}

	p := &Project{Name: project, Lexical: lex, Vectors: vec}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if b.logger != nil {
		b.logger.Info("index pair built",
			zap.String("project", project),
			zap.Int("files", len(files)),
			zap.Int("chunks", lex.Len()),
			zap.Int("embedded", vec.Size()),
			zap.Int("terms", lex.Terms()),
		)
	}
	return p, nil
}
