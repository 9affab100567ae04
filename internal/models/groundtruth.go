package models

// GroundTruth maps bug IDs to the set of file paths known to be the fix
// locations for that bug. Supplied externally; read-only.
type GroundTruth map[string]map[string]bool

// Relevant reports whether path is a known fix location for bugID.
func (g GroundTruth) Relevant(bugID, path string) bool {
	return g[bugID][path]
}

// Bugs returns the bug IDs that have at least one ground-truth file.
func (g GroundTruth) Bugs() []string {
	bugs := make([]string, 0, len(g))
	for id, files := range g {
		if len(files) > 0 {
			bugs = append(bugs, id)
		}
	}
	return bugs
}
