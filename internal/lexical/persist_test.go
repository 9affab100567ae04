package lexical

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexical.idx")

	ix := buildSmallIndex()
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Len() != ix.Len() || loaded.Terms() != ix.Terms() {
		t.Errorf("stats differ: %d/%d vs %d/%d", loaded.Len(), loaded.Terms(), ix.Len(), ix.Terms())
	}
	if !reflect.DeepEqual(loaded.ChunkIDs(), ix.ChunkIDs()) {
		t.Errorf("chunk IDs differ: %v vs %v", loaded.ChunkIDs(), ix.ChunkIDs())
	}
	query := []string{"alpha", "beta", "delta"}
	want := ix.Score(query, 1.2, 0.75)
	got := loaded.Score(query, 1.2, 0.75)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scores differ after round trip: %v vs %v", got, want)
	}
}

func TestSaveByteDeterministic(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "first.idx")
	p2 := filepath.Join(dir, "second.idx")

	ix := buildSmallIndex()
	if err := ix.Save(p1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(p1)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := loaded.Save(p2); err != nil {
		t.Fatalf("re-Save failed: %v", err)
	}

	b1, err := os.ReadFile(p1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := os.ReadFile(p2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1, b2) {
		t.Error("save after load should produce a byte-identical file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.idx")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRejectsDanglingPosting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexical.idx")
	ix := NewIndex()
	ix.Add("only", "only.go", []string{"word"})
	if err := ix.Save(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// The last 8 bytes are the single posting (chunk ordinal, tf). Point the
	// ordinal past the chunk table.
	data[len(data)-8] = 0xFF
	bad := filepath.Join(dir, "bad.idx")
	if err := os.WriteFile(bad, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for posting that references a missing chunk")
	}
}
