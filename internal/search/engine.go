package search

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/bugloc/bugloc/internal/config"
	"github.com/bugloc/bugloc/internal/embedding"
	"github.com/bugloc/bugloc/internal/indexer"
	"github.com/bugloc/bugloc/internal/lexical"
	"github.com/bugloc/bugloc/internal/models"
	"github.com/bugloc/bugloc/pkg/utils"
)

// Engine ranks queries against a project's index pair. The engine itself is
// stateless with respect to projects: the index pair is passed into every
// call, so concurrent batches over different projects never share state.
type Engine struct {
	analyzer *lexical.Analyzer
	embedder embedding.Embedder
	cfg      *config.RetrievalConfig
	logger   *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for scoring events.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine with the given dependencies. The embedder must
// be the same capability the project's vector index was built with.
func NewEngine(analyzer *lexical.Analyzer, embedder embedding.Embedder, cfg *config.RetrievalConfig, opts ...EngineOption) *Engine {
	e := &Engine{analyzer: analyzer, embedder: embedder, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Options overrides per-run tunables. Zero values fall back to the engine's
// configuration.
type Options struct {
	LexicalWeight *float64 // fusion α in [0,1]
	TopN          int
}

func (e *Engine) alpha(opts *Options) float64 {
	if opts != nil && opts.LexicalWeight != nil {
		return *opts.LexicalWeight
	}
	return e.cfg.LexicalWeight
}

func (e *Engine) topN(opts *Options) int {
	if opts != nil && opts.TopN > 0 {
		return opts.TopN
	}
	return e.cfg.TopN
}

// Score computes the raw lexical and semantic score per chunk over the union
// of candidates surfaced by either signal. The result is sorted by chunk ID;
// given identical index state and query text it is bit-reproducible.
func (e *Engine) Score(ctx context.Context, proj *indexer.Project, queryText string) ([]ChunkScore, error) {
	var (
		lexScores map[string]float64
		semScores = make(map[string]float64)
		wg        sync.WaitGroup
		semErr    error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		terms := e.analyzer.Analyze(queryText)
		lexScores = proj.Lexical.Score(terms, e.cfg.BM25K1, e.cfg.BM25B)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		queryEmb, err := e.embedder.Embed(ctx, queryText)
		if err != nil {
			semErr = fmt.Errorf("embed query: %w", err)
			return
		}
		hits, err := proj.Vectors.Search(ctx, queryEmb, e.cfg.TopKCandidates)
		if err != nil {
			semErr = fmt.Errorf("vector search: %w", err)
			return
		}
		for _, h := range hits {
			semScores[h.ID] = h.Score
		}
	}()
	wg.Wait()

	if semErr != nil {
		// Embedding is a capability failure, not a ranking failure: degrade
		// the query to lexical-only coverage.
		if e.logger != nil {
			e.logger.Warn("semantic scoring unavailable", zap.Error(semErr))
		}
		semScores = make(map[string]float64)
	}

	union := make(map[string]bool, len(lexScores)+len(semScores))
	for id := range lexScores {
		union[id] = true
	}
	for id := range semScores {
		union[id] = true
	}
	scores := make([]ChunkScore, 0, len(union))
	for id := range union {
		scores = append(scores, ChunkScore{
			ChunkID:  id,
			Lexical:  lexScores[id],
			Semantic: semScores[id],
		})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].ChunkID < scores[j].ChunkID })
	return scores, nil
}

// Rank scores the query, fuses both signals, aggregates to file level, and
// returns the deterministic top-N ranked list.
func (e *Engine) Rank(ctx context.Context, proj *indexer.Project, q *models.Query, opts *Options) (*models.RankedList, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmptyQuery, err)
	}
	if e.logger != nil {
		e.logger.Debug("ranking query",
			zap.String("bug_id", q.BugID),
			zap.String("family", string(q.Family)),
			zap.String("variant", string(q.Variant)),
			zap.String("text", utils.Truncate(q.Text, 120)),
		)
	}
	chunkScores, err := e.Score(ctx, proj, q.Text)
	if err != nil {
		return nil, err
	}

	// Both streams are normalized over the same candidate union, zeros
	// included, so a chunk one signal never surfaced still anchors the min.
	lexRaw := make(map[string]float64, len(chunkScores))
	semRaw := make(map[string]float64, len(chunkScores))
	for _, cs := range chunkScores {
		lexRaw[cs.ChunkID] = cs.Lexical
		semRaw[cs.ChunkID] = cs.Semantic
	}

	alpha := e.alpha(opts)
	fused := Fuse(MinMaxNormalize(lexRaw), MinMaxNormalize(semRaw), alpha)
	ownership := proj.Lexical.FileOwnership()
	results := AggregateByFile(fused, ownership, alpha)

	// Complete-miss fallback: the caller must still receive a list so the
	// evaluation can record the miss, so rank every indexed file by path.
	if len(results) == 0 {
		files := proj.Lexical.Files()
		sort.Strings(files)
		results = make([]models.ScoredResult, len(files))
		for i, f := range files {
			results[i] = models.ScoredResult{FilePath: f}
		}
	}

	if topN := e.topN(opts); len(results) > topN {
		results = results[:topN]
	}
	return &models.RankedList{
		BugID:   q.BugID,
		Family:  q.Family,
		Variant: q.Variant,
		Results: results,
	}, nil
}
