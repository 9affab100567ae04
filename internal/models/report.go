package models

// MetricSet holds the rank-based metrics for one query type
// (one family × variant over all considered bugs of a project).
type MetricSet struct {
	MRR   float64         `json:"mrr" yaml:"mrr"`
	MAP   float64         `json:"map" yaml:"map"`
	HitAt map[int]float64 `json:"hit_at" yaml:"hit_at"`
}

// BugRanks records the ranks of all relevant files for one bug, for both
// variants. A nil slice means no relevant file appeared in that ranked list.
type BugRanks struct {
	BugID         string `json:"bug_id" yaml:"bug_id"`
	BaselineRanks []int  `json:"baseline_ranks" yaml:"baseline_ranks"`
	ExtendedRanks []int  `json:"extended_ranks" yaml:"extended_ranks"`
}

// MetricReport aggregates evaluation results for one (project, family).
// Coverage gaps are reported separately from accuracy: a bug excluded from the
// denominators appears in one of the gap lists, never as a silent miss.
type MetricReport struct {
	Project string      `json:"project" yaml:"project"`
	Family  QueryFamily `json:"family" yaml:"family"`

	Baseline MetricSet `json:"baseline" yaml:"baseline"`
	Extended MetricSet `json:"extended" yaml:"extended"`

	// Improvement classification of extended vs baseline per bug.
	Improved int `json:"improved" yaml:"improved"`
	Same     int `json:"same" yaml:"same"`
	Degraded int `json:"degraded" yaml:"degraded"`

	// ConsideredBugs is the denominator of every metric above.
	ConsideredBugs int `json:"considered_bugs" yaml:"considered_bugs"`

	// GapsNoRankedList lists bugs with ground truth but no ranked query pair.
	GapsNoRankedList []string `json:"gaps_no_ranked_list" yaml:"gaps_no_ranked_list"`
	// GapsNoGroundTruth lists ranked bugs without any ground-truth entry.
	GapsNoGroundTruth []string `json:"gaps_no_ground_truth" yaml:"gaps_no_ground_truth"`

	Ranks []BugRanks `json:"ranks" yaml:"ranks"`
}
