// Package cli provides output helpers for the bugloc command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bugloc/bugloc/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputYAML matches the report files written to disk.
	OutputYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "text", "":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	case "yaml":
		return OutputYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, json, or yaml", s)
}

// WriteRankedList writes one ranked list to w in the given format.
func WriteRankedList(w io.Writer, rl *models.RankedList, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rl)
	case OutputYAML:
		return yaml.NewEncoder(w).Encode(rl)
	default:
		fmt.Fprintf(w, "%s (%s/%s): %d files\n", rl.BugID, rl.Family, rl.Variant, len(rl.Results))
		for i, r := range rl.Results {
			fmt.Fprintf(w, "%4d  %.4f  %s  (lex %.4f, sem %.4f)\n",
				i+1, r.FusedScore, r.FilePath, r.LexicalScore, r.SemanticScore)
		}
		return nil
	}
}

// WriteReport writes a metric report to w in the given format.
func WriteReport(w io.Writer, report *models.MetricReport, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case OutputYAML:
		return yaml.NewEncoder(w).Encode(report)
	default:
		writeReportText(w, report)
		return nil
	}
}

func writeReportText(w io.Writer, r *models.MetricReport) {
	fmt.Fprintf(w, "project:         %s\n", r.Project)
	fmt.Fprintf(w, "family:          %s\n", r.Family)
	fmt.Fprintf(w, "considered bugs: %d\n", r.ConsideredBugs)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-12s %10s %10s\n", "metric", "baseline", "extended")
	fmt.Fprintf(w, "%-12s %10.4f %10.4f\n", "MRR", r.Baseline.MRR, r.Extended.MRR)
	fmt.Fprintf(w, "%-12s %10.4f %10.4f\n", "MAP", r.Baseline.MAP, r.Extended.MAP)
	ks := make([]int, 0, len(r.Baseline.HitAt))
	for k := range r.Baseline.HitAt {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	for _, k := range ks {
		fmt.Fprintf(w, "%-12s %10.4f %10.4f\n", fmt.Sprintf("Hit@%d", k), r.Baseline.HitAt[k], r.Extended.HitAt[k])
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "improved: %d  same: %d  degraded: %d\n", r.Improved, r.Same, r.Degraded)
	if len(r.GapsNoRankedList) > 0 {
		fmt.Fprintf(w, "bugs without ranked lists (%d): %v\n", len(r.GapsNoRankedList), r.GapsNoRankedList)
	}
	if len(r.GapsNoGroundTruth) > 0 {
		fmt.Fprintf(w, "ranked bugs without ground truth (%d): %v\n", len(r.GapsNoGroundTruth), r.GapsNoGroundTruth)
	}
}
