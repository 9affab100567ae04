package queries

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bugloc/bugloc/internal/models"
)

func writeQuery(t *testing.T, root, bug, name, text string) {
	t.Helper()
	dir := filepath.Join(root, bug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	writeQuery(t, root, "bug1", "bug1_baseline_basic_query.txt", "session crash on login")
	writeQuery(t, root, "bug1", "bug1_extended_basic_query.txt", "session crash on login with stack trace")
	writeQuery(t, root, "bug2", "bug2_baseline_keyBERT_query.txt", "token refresh expiry")

	ld := NewLoader()
	qs, err := ld.LoadDir(root)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(qs))
	}
	if qs[0].BugID != "bug1" || qs[0].Variant != models.VariantBaseline {
		t.Errorf("unexpected first query %+v", qs[0])
	}
	// Pipeline alias keyBERT must map onto the canonical family.
	var keybert *models.Query
	for _, q := range qs {
		if q.BugID == "bug2" {
			keybert = q
		}
	}
	if keybert == nil || keybert.Family != models.FamilyKeybert {
		t.Errorf("keyBERT alias not normalized: %+v", keybert)
	}
	if keybert.Text != "token refresh expiry" {
		t.Errorf("unexpected query text %q", keybert.Text)
	}
}

func TestLoadDirSkipsInvalidFiles(t *testing.T) {
	root := t.TempDir()
	writeQuery(t, root, "bug1", "bug1_baseline_basic_query.txt", "valid query")
	writeQuery(t, root, "bug1", "bug1_baseline_martian_query.txt", "unknown family")
	writeQuery(t, root, "bug1", "bug1_baseline_basic_query_result.txt", "1,a.go,0.5")
	writeQuery(t, root, "bug1", "bug1_extended_basic_query.txt", "   \n ")
	writeQuery(t, root, "bug1", "README.txt", "not a query")

	ld := NewLoader()
	qs, err := ld.LoadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 1 {
		t.Fatalf("expected only the valid query, got %d: %+v", len(qs), qs)
	}
	if qs[0].Text != "valid query" {
		t.Errorf("unexpected text %q", qs[0].Text)
	}
}

func TestLoadDirMissingRoot(t *testing.T) {
	ld := NewLoader()
	if _, err := ld.LoadDir(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing root")
	}
}
