package eval

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDotPath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"src.app.Data.php", "src/app/Data.php"},
		{"core.auth.session_manager.py", "core/auth/session_manager.py"},
		{"Data.php", "Data.php"},
		{"README", "README"},
		{"  src.Main.java  ", "src/Main.java"},
	}
	for _, c := range cases {
		if got := NormalizeDotPath(c.in); got != c.want {
			t.Errorf("NormalizeDotPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLoadGroundTruth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ground_truth.txt")
	content := "bug1 2\nsrc.app.Data.php\nsrc.app.Helper.php\n\nbug2 1\ncore.Main.java\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	gt, err := LoadGroundTruth(path)
	if err != nil {
		t.Fatalf("LoadGroundTruth failed: %v", err)
	}
	if len(gt) != 2 {
		t.Fatalf("expected 2 bugs, got %d", len(gt))
	}
	if !gt.Relevant("bug1", "src/app/Data.php") || !gt.Relevant("bug1", "src/app/Helper.php") {
		t.Errorf("bug1 files wrong: %v", gt["bug1"])
	}
	if !gt.Relevant("bug2", "core/Main.java") {
		t.Errorf("bug2 files wrong: %v", gt["bug2"])
	}
	if gt.Relevant("bug1", "core/Main.java") {
		t.Error("cross-bug relevance leak")
	}
}

func TestLoadGroundTruthSkipsMalformedHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ground_truth.txt")
	content := "not a header line\nbug1 one\nbug2 1\nsrc.Main.java\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	gt, err := LoadGroundTruth(path)
	if err != nil {
		t.Fatalf("malformed lines should be skipped, got %v", err)
	}
	if len(gt) != 1 || !gt.Relevant("bug2", "src/Main.java") {
		t.Errorf("expected only bug2, got %v", gt)
	}
}

func TestLoadGroundTruthMissingFile(t *testing.T) {
	if _, err := LoadGroundTruth(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
