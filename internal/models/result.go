package models

// ScoredResult is one file's scores for one query. When a file owns multiple
// chunks, per-chunk scores are aggregated (max) before fusion.
type ScoredResult struct {
	FilePath      string  `json:"file_path"`
	LexicalScore  float64 `json:"lexical_score"`
	SemanticScore float64 `json:"semantic_score"`
	FusedScore    float64 `json:"fused_score"`
}

// RankedList is the ordered result of ranking one query: sorted by fused score
// descending, ties broken by ascending file path. Immutable once produced.
type RankedList struct {
	BugID   string         `json:"bug_id"`
	Family  QueryFamily    `json:"family"`
	Variant QueryVariant   `json:"variant"`
	Results []ScoredResult `json:"results"`
}

// Key identifies this ranked list.
func (r *RankedList) Key() QueryKey {
	return QueryKey{BugID: r.BugID, Family: r.Family, Variant: r.Variant}
}

// FilePaths returns the ranked file paths in order.
func (r *RankedList) FilePaths() []string {
	paths := make([]string, len(r.Results))
	for i, res := range r.Results {
		paths[i] = res.FilePath
	}
	return paths
}
