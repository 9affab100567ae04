package lexical

import "math"

// Score computes BM25 scores for the query terms against every chunk that
// shares at least one term with the query. Chunks with no overlap are absent
// from the result (lexical score 0); they stay eligible for ranking through
// the semantic side.
//
// idf(t) = ln(1 + (N - df + 0.5) / (df + 0.5)), which is non-negative for any
// df <= N, so a term in most chunks can dampen but never invert a score.
func (ix *Index) Score(queryTerms []string, k1, b float64) map[string]float64 {
	scores := make(map[string]float64)
	n := float64(ix.Len())
	if n == 0 {
		return scores
	}
	avg := ix.AvgChunkLen()

	// Collapse duplicate query terms; BM25 sums per distinct term with the
	// query-side frequency folded into idf weighting by repetition.
	counts := make(map[string]int, len(queryTerms))
	for _, t := range queryTerms {
		counts[t]++
	}

	acc := make(map[int]float64)
	for term, qf := range counts {
		plist, ok := ix.postings[term]
		if !ok {
			continue
		}
		df := float64(len(plist))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		for _, p := range plist {
			tf := float64(p.TF)
			norm := 1 - b + b*float64(ix.chunkLens[p.Chunk])/avg
			acc[p.Chunk] += float64(qf) * idf * (tf * (k1 + 1)) / (tf + k1*norm)
		}
	}
	for ord, s := range acc {
		scores[ix.chunkIDs[ord]] = s
	}
	return scores
}
