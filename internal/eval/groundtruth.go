// Package eval scores ranked lists against ground truth with rank-based
// information-retrieval metrics.
package eval

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/bugloc/bugloc/internal/models"
)

// LoadGroundTruth parses the benchmark ground-truth format:
//
//	<bug_id> <count>
//	<file path in dot notation> × count
//
// Dot notation ("src.app.Data.php") is converted to slash paths
// ("src/app/Data.php"); the final dot is the extension separator.
// Malformed header lines are skipped so one bad record cannot sink the file.
func LoadGroundTruth(filePath string) (models.GroundTruth, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open ground truth: %w", err)
	}
	defer f.Close()

	gt := make(models.GroundTruth)
	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ground truth: %w", err)
	}

	for i := 0; i < len(lines); {
		line := lines[i]
		if line == "" {
			i++
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			i++
			continue
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			i++
			continue
		}
		bugID := parts[0]
		files := make(map[string]bool)
		for j := i + 1; j < len(lines) && j <= i+count; j++ {
			if lines[j] != "" {
				files[NormalizeDotPath(lines[j])] = true
			}
		}
		gt[bugID] = files
		i += 1 + count
	}
	return gt, nil
}

// NormalizeDotPath converts a dot-notation file reference to a slash path,
// keeping the last segment as the file extension.
func NormalizeDotPath(p string) string {
	p = strings.TrimSpace(p)
	parts := strings.Split(p, ".")
	if len(parts) < 3 {
		return p
	}
	ext := parts[len(parts)-1]
	return path.Join(parts[:len(parts)-1]...) + "." + ext
}
