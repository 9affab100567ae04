package lexical

import (
	"math"
	"reflect"
	"testing"
)

func buildSmallIndex() *Index {
	ix := NewIndex()
	ix.Add("a.go#0000", "a.go", []string{"alpha", "beta", "alpha"})
	ix.Add("a.go#0001", "a.go", []string{"alpha", "gamma"})
	ix.Add("b.go#0000", "b.go", []string{"delta", "epsilon", "zeta"})
	return ix
}

func TestIndexStats(t *testing.T) {
	ix := buildSmallIndex()
	if ix.Len() != 3 {
		t.Errorf("expected 3 chunks, got %d", ix.Len())
	}
	if ix.Terms() != 6 {
		t.Errorf("expected 6 distinct terms, got %d", ix.Terms())
	}
	if df := ix.DocFreq("alpha"); df != 2 {
		t.Errorf("alpha df should be 2, got %d", df)
	}
	if df := ix.DocFreq("missing"); df != 0 {
		t.Errorf("missing term df should be 0, got %d", df)
	}
	want := (3.0 + 2.0 + 3.0) / 3.0
	if got := ix.AvgChunkLen(); math.Abs(got-want) > 1e-12 {
		t.Errorf("avg chunk len: got %v, want %v", got, want)
	}
}

func TestIndexFileOwnership(t *testing.T) {
	ix := buildSmallIndex()
	path, ok := ix.FileOf("a.go#0001")
	if !ok || path != "a.go" {
		t.Errorf("FileOf: got %q, %v", path, ok)
	}
	if _, ok := ix.FileOf("nope"); ok {
		t.Error("FileOf should miss for unknown chunk")
	}
	if !ix.HasChunk("b.go#0000") || ix.HasChunk("nope") {
		t.Error("HasChunk mismatch")
	}
	own := ix.FileOwnership()
	if len(own) != 3 || own["b.go#0000"] != "b.go" {
		t.Errorf("unexpected ownership %v", own)
	}
	if files := ix.Files(); !reflect.DeepEqual(files, []string{"a.go", "b.go"}) {
		t.Errorf("unexpected files %v", files)
	}
}

func TestScoreOrdersByOverlap(t *testing.T) {
	ix := buildSmallIndex()
	scores := ix.Score([]string{"alpha", "beta"}, 1.2, 0.75)
	if len(scores) != 2 {
		t.Fatalf("expected 2 scored chunks, got %d: %v", len(scores), scores)
	}
	if _, ok := scores["b.go#0000"]; ok {
		t.Error("chunk without query overlap should be absent")
	}
	if scores["a.go#0000"] <= scores["a.go#0001"] {
		t.Errorf("chunk with both terms should outscore single-term chunk: %v", scores)
	}
}

func TestScoreNonNegative(t *testing.T) {
	ix := NewIndex()
	// "common" appears in every chunk; the Lucene idf variant keeps it positive.
	ix.Add("c1", "a.go", []string{"common", "one"})
	ix.Add("c2", "a.go", []string{"common", "two"})
	ix.Add("c3", "b.go", []string{"common", "three"})
	scores := ix.Score([]string{"common"}, 1.2, 0.75)
	if len(scores) != 3 {
		t.Fatalf("expected 3 scored chunks, got %d", len(scores))
	}
	for id, s := range scores {
		if s <= 0 {
			t.Errorf("score for %s should stay positive, got %v", id, s)
		}
	}
}

func TestScoreDuplicateQueryTerms(t *testing.T) {
	ix := buildSmallIndex()
	single := ix.Score([]string{"gamma"}, 1.2, 0.75)
	double := ix.Score([]string{"gamma", "gamma"}, 1.2, 0.75)
	if math.Abs(double["a.go#0001"]-2*single["a.go#0001"]) > 1e-12 {
		t.Errorf("repeated query term should double the contribution: %v vs %v", double, single)
	}
}

func TestScoreEmptyIndex(t *testing.T) {
	ix := NewIndex()
	if scores := ix.Score([]string{"alpha"}, 1.2, 0.75); len(scores) != 0 {
		t.Errorf("empty index should score nothing, got %v", scores)
	}
}

func TestScoreDeterministic(t *testing.T) {
	ix := buildSmallIndex()
	first := ix.Score([]string{"alpha", "delta"}, 1.2, 0.75)
	for i := 0; i < 5; i++ {
		if got := ix.Score([]string{"alpha", "delta"}, 1.2, 0.75); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}
