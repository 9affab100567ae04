// Package search scores queries against a project's index pair and fuses the
// lexical and semantic signals into one deterministic ranking.
package search

import (
	"sort"

	"github.com/bugloc/bugloc/internal/models"
)

// normEpsilon pads the min-max denominator so a degenerate candidate set
// (all scores equal) normalizes to zero instead of dividing by zero.
const normEpsilon = 1e-8

// ChunkScore holds both raw similarity signals for one chunk.
type ChunkScore struct {
	ChunkID  string
	Lexical  float64
	Semantic float64
}

// MinMaxNormalize rescales scores to [0,1] across the candidate set of a
// single query. The map is rebuilt, not modified in place.
func MinMaxNormalize(scores map[string]float64) map[string]float64 {
	normalized := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return normalized
	}
	first := true
	var min, max float64
	for _, s := range scores {
		if first {
			min, max = s, s
			first = false
			continue
		}
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	span := max - min + normEpsilon
	for id, s := range scores {
		normalized[id] = (s - min) / span
	}
	return normalized
}

// Fuse combines normalized per-chunk lexical and semantic scores over the
// union of both candidate sets: fused = α·lexical + (1−α)·semantic. A chunk
// surfaced by only one signal keeps 0 for the other.
func Fuse(lexical, semantic map[string]float64, alpha float64) map[string]ChunkScore {
	fused := make(map[string]ChunkScore, len(lexical)+len(semantic))
	for id, s := range lexical {
		fused[id] = ChunkScore{ChunkID: id, Lexical: s}
	}
	for id, s := range semantic {
		cs := fused[id]
		cs.ChunkID = id
		cs.Semantic = s
		fused[id] = cs
	}
	return fused
}

// AggregateByFile reduces chunk scores to file scores: a file is hit by its
// best-matching chunk, so every component takes the max over owned chunks.
func AggregateByFile(chunkScores map[string]ChunkScore, ownership map[string]string, alpha float64) []models.ScoredResult {
	byFile := make(map[string]models.ScoredResult)
	for id, cs := range chunkScores {
		path, ok := ownership[id]
		if !ok {
			continue
		}
		agg := byFile[path]
		agg.FilePath = path
		if cs.Lexical > agg.LexicalScore {
			agg.LexicalScore = cs.Lexical
		}
		if cs.Semantic > agg.SemanticScore {
			agg.SemanticScore = cs.Semantic
		}
		fused := alpha*cs.Lexical + (1-alpha)*cs.Semantic
		if fused > agg.FusedScore {
			agg.FusedScore = fused
		}
		byFile[path] = agg
	}
	results := make([]models.ScoredResult, 0, len(byFile))
	for _, r := range byFile {
		results = append(results, r)
	}
	SortResults(results)
	return results
}

// SortResults orders by fused score descending; equal fused scores are broken
// by ascending file path so rankings are byte-reproducible.
func SortResults(results []models.ScoredResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].FusedScore != results[j].FusedScore {
			return results[i].FusedScore > results[j].FusedScore
		}
		return results[i].FilePath < results[j].FilePath
	})
}
