package eval

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bugloc/bugloc/internal/models"
)

// Ranked-list text artifact, one per query:
//
//	<root>/<bugID>/<bugID>_<variant>_<family>_query_result.txt
//
// with one "rank,file_path,score" line per result. This is the file the
// dashboard consumes and the format Evaluate reads back.
var resultFileRe = regexp.MustCompile(`^(.+)_(baseline|extended)_([A-Za-z]+)_query_result\.txt$`)

// ResultFileName returns the artifact name for a query key.
func ResultFileName(key models.QueryKey) string {
	return fmt.Sprintf("%s_%s_%s_query_result.txt", key.BugID, key.Variant, key.Family)
}

// WriteRankedList writes the ranked list artifact under root/<bugID>/.
func WriteRankedList(root string, rl *models.RankedList) error {
	dir := filepath.Join(root, rl.BugID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	var b strings.Builder
	for i, r := range rl.Results {
		fmt.Fprintf(&b, "%d,%s,%.3f\n", i+1, r.FilePath, r.FusedScore)
	}
	path := filepath.Join(dir, ResultFileName(rl.Key()))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write ranked list: %w", err)
	}
	return nil
}

// ReadRankedLists loads every ranked-list artifact under root, keyed by
// (bug, family, variant). Only the ordered file paths are recovered; fused
// scores in the artifact are informational.
func ReadRankedLists(root string) (map[models.QueryKey][]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read results dir: %w", err)
	}
	lists := make(map[models.QueryKey][]string)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		bugDir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(bugDir)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(files))
		for _, f := range files {
			if !f.IsDir() {
				names = append(names, f.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			m := resultFileRe.FindStringSubmatch(name)
			if m == nil {
				continue
			}
			family, ferr := models.ParseFamily(m[3])
			if ferr != nil {
				continue
			}
			variant, verr := models.ParseVariant(m[2])
			if verr != nil {
				continue
			}
			paths, rerr := readResultFile(filepath.Join(bugDir, name))
			if rerr != nil {
				continue
			}
			lists[models.QueryKey{BugID: m[1], Family: family, Variant: variant}] = paths
		}
	}
	return lists, nil
}

func readResultFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		paths = append(paths, strings.TrimSpace(parts[1]))
	}
	return paths, scanner.Err()
}
