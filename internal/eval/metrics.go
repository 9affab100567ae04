package eval

import (
	"math"
	"sort"

	"github.com/bugloc/bugloc/internal/models"
)

// ReciprocalRank returns 1/rank of the first relevant file, or 0 when no
// relevant file appears in the list. Ranks are 1-based.
func ReciprocalRank(ranked []string, relevant map[string]bool) float64 {
	for i, path := range ranked {
		if relevant[path] {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// AveragePrecision returns the mean of precision@rank over the positions of
// the relevant files found in the list, divided by the total number of
// relevant files. Relevant files absent from the list contribute zero.
func AveragePrecision(ranked []string, relevant map[string]bool) float64 {
	if len(relevant) == 0 {
		return 0
	}
	var sum float64
	hits := 0
	for i, path := range ranked {
		if relevant[path] {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	return sum / float64(len(relevant))
}

// HitAtK reports whether any of the top k entries is relevant.
func HitAtK(ranked []string, relevant map[string]bool, k int) bool {
	if k > len(ranked) {
		k = len(ranked)
	}
	for _, path := range ranked[:k] {
		if relevant[path] {
			return true
		}
	}
	return false
}

// relevantRanks returns the 1-based ranks of every relevant file present in
// the list, ascending. Nil when none appear.
func relevantRanks(ranked []string, relevant map[string]bool) []int {
	var ranks []int
	for i, path := range ranked {
		if relevant[path] {
			ranks = append(ranks, i+1)
		}
	}
	return ranks
}

// firstRank returns the rank of the first relevant file, or +Inf when the
// list contains none. The infinity keeps the improvement comparison total:
// finding any hit beats finding nothing, and two total misses tie.
func firstRank(ranked []string, relevant map[string]bool) float64 {
	for i, path := range ranked {
		if relevant[path] {
			return float64(i + 1)
		}
	}
	return math.Inf(1)
}

// Evaluate scores one (project, family) pair: baseline and extended metrics
// over the considered bugs, the per-bug improvement classification, and the
// coverage gaps.
//
// A bug is considered only when it has ground truth and ranked lists for both
// variants. Bugs with ground truth but a missing ranked pair land in
// GapsNoRankedList; bugs ranked without ground truth land in
// GapsNoGroundTruth. Neither gap enters any metric denominator.
func Evaluate(project string, family models.QueryFamily, lists map[models.QueryKey][]string, gt models.GroundTruth, hitKs []int) *models.MetricReport {
	report := &models.MetricReport{
		Project: project,
		Family:  family,
		Baseline: models.MetricSet{
			HitAt: make(map[int]float64, len(hitKs)),
		},
		Extended: models.MetricSet{
			HitAt: make(map[int]float64, len(hitKs)),
		},
	}

	rankedBugs := make(map[string]bool)
	for key := range lists {
		if key.Family == family {
			rankedBugs[key.BugID] = true
		}
	}
	for bug := range rankedBugs {
		if len(gt[bug]) == 0 {
			report.GapsNoGroundTruth = append(report.GapsNoGroundTruth, bug)
		}
	}
	sort.Strings(report.GapsNoGroundTruth)

	var considered []string
	for _, bug := range gt.Bugs() {
		_, hasBase := lists[models.QueryKey{BugID: bug, Family: family, Variant: models.VariantBaseline}]
		_, hasExt := lists[models.QueryKey{BugID: bug, Family: family, Variant: models.VariantExtended}]
		if hasBase && hasExt {
			considered = append(considered, bug)
		} else {
			report.GapsNoRankedList = append(report.GapsNoRankedList, bug)
		}
	}
	sort.Strings(considered)
	sort.Strings(report.GapsNoRankedList)

	report.ConsideredBugs = len(considered)
	if len(considered) == 0 {
		return report
	}

	hitBase := make(map[int]int, len(hitKs))
	hitExt := make(map[int]int, len(hitKs))
	for _, bug := range considered {
		relevant := gt[bug]
		base := lists[models.QueryKey{BugID: bug, Family: family, Variant: models.VariantBaseline}]
		ext := lists[models.QueryKey{BugID: bug, Family: family, Variant: models.VariantExtended}]

		report.Baseline.MRR += ReciprocalRank(base, relevant)
		report.Extended.MRR += ReciprocalRank(ext, relevant)
		report.Baseline.MAP += AveragePrecision(base, relevant)
		report.Extended.MAP += AveragePrecision(ext, relevant)
		for _, k := range hitKs {
			if HitAtK(base, relevant, k) {
				hitBase[k]++
			}
			if HitAtK(ext, relevant, k) {
				hitExt[k]++
			}
		}

		baseFirst := firstRank(base, relevant)
		extFirst := firstRank(ext, relevant)
		switch {
		case extFirst < baseFirst:
			report.Improved++
		case extFirst > baseFirst:
			report.Degraded++
		default:
			report.Same++
		}

		report.Ranks = append(report.Ranks, models.BugRanks{
			BugID:         bug,
			BaselineRanks: relevantRanks(base, relevant),
			ExtendedRanks: relevantRanks(ext, relevant),
		})
	}

	n := float64(len(considered))
	report.Baseline.MRR /= n
	report.Extended.MRR /= n
	report.Baseline.MAP /= n
	report.Extended.MAP /= n
	for _, k := range hitKs {
		report.Baseline.HitAt[k] = float64(hitBase[k]) / n
		report.Extended.HitAt[k] = float64(hitExt[k]) / n
	}
	return report
}
