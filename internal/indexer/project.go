package indexer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bugloc/bugloc/internal/lexical"
	"github.com/bugloc/bugloc/internal/models"
	"github.com/bugloc/bugloc/internal/vector"
)

const (
	lexicalFileName = "lexical.idx"
	vectorFileName  = "vectors.idx"
)

// Project bundles one project's index pair. It is the explicit context object
// passed into every scoring call; after Build it is immutable and safe to
// share across concurrent query evaluations. The vector side is held behind
// the vector.Index interface; builds and loads currently produce the
// in-memory implementation.
type Project struct {
	Name    string
	Lexical *lexical.Index
	Vectors vector.Index
}

// Validate checks the alignment invariant: every vector chunk ID must exist
// in the lexical index. (The converse is allowed: chunks whose embedding
// failed degrade to lexical-only coverage.)
func (p *Project) Validate() error {
	for _, id := range p.Vectors.IDs() {
		if !p.Lexical.HasChunk(id) {
			return fmt.Errorf("chunk %q in vector index only: %w", id, models.ErrIndexMisaligned)
		}
	}
	return nil
}

// Save persists both indexes under dir/<name>/. The pair is written together;
// a partially written pair is never left behind on error because writes go to
// a temp directory first.
func (p *Project) Save(dir string) error {
	target := filepath.Join(dir, p.Name)
	tmp := target + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return fmt.Errorf("clear temp index dir: %w", err)
	}
	if err := p.Lexical.Save(filepath.Join(tmp, lexicalFileName)); err != nil {
		return err
	}
	if err := p.Vectors.Save(filepath.Join(tmp, vectorFileName)); err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("replace index dir: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("rename index dir: %w", err)
	}
	return nil
}

// LoadProject reads a persisted index pair and validates alignment. A pair
// that fails to load or validate is unusable as a whole.
func LoadProject(dir, name string, dimensions int) (*Project, error) {
	base := filepath.Join(dir, name)
	lex, err := lexical.Load(filepath.Join(base, lexicalFileName))
	if err != nil {
		return nil, fmt.Errorf("load lexical index: %w", err)
	}
	vec, err := vector.NewMemoryIndex(dimensions)
	if err != nil {
		return nil, err
	}
	if err := vec.Load(filepath.Join(base, vectorFileName)); err != nil {
		return nil, fmt.Errorf("load vector index: %w", err)
	}
	p := &Project{Name: name, Lexical: lex, Vectors: vec}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
