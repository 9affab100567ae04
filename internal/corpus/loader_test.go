package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFiltersAndOrders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.go", []byte("package b"))
	writeFile(t, root, "a.go", []byte("package a"))
	writeFile(t, root, "sub/c.go", []byte("package c"))
	writeFile(t, root, "notes.md", []byte("# notes"))

	ld := NewLoader([]string{".go"})
	files, err := ld.Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	want := []string{"a.go", "b.go", "sub/c.go"}
	for i, f := range files {
		if f.Path != want[i] {
			t.Errorf("position %d: got %s, want %s", i, f.Path, want[i])
		}
	}
	if files[0].Text != "package a" {
		t.Errorf("unexpected content %q", files[0].Text)
	}
}

func TestLoadSkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "good.go", []byte("package good"))
	writeFile(t, root, "compiled.go", []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01})
	writeFile(t, root, "invalid.go", []byte{0xff, 0xfe, 0xfd})

	ld := NewLoader([]string{".go"})
	files, err := ld.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Path != "good.go" {
		t.Errorf("binary files should be skipped, got %v", files)
	}
}

func TestLoadExtensionNormalization(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Main.JAVA", []byte("class Main {}"))

	ld := NewLoader([]string{"java"})
	files, err := ld.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("extension match should ignore case and dots, got %v", files)
	}
}

func TestLoadRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.go", []byte("package x"))
	ld := NewLoader(nil)
	if _, err := ld.Load(filepath.Join(root, "file.go")); err == nil {
		t.Error("expected error for non-directory root")
	}
	if _, err := ld.Load(filepath.Join(root, "absent")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestLoadEmptyDir(t *testing.T) {
	ld := NewLoader([]string{".go"})
	files, err := ld.Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}
