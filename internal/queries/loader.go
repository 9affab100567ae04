// Package queries loads constructed queries produced by the external
// query-construction pipelines.
package queries

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/bugloc/bugloc/internal/models"
)

// File layout, one directory per bug:
//
//	<root>/<bugID>/<bugID>_<variant>_<family>_query.txt
//
// where variant is baseline|extended and family is basic|keybert|reason
// (pipeline aliases keyBERT/reasoning accepted).
var queryFileRe = regexp.MustCompile(`^(.+)_(baseline|extended)_([A-Za-z]+)_query\.txt$`)

// Loader reads constructed query files.
type Loader struct {
	logger *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for skip events.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader creates a query loader.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadDir reads every query file under root, in sorted order. Files with
// unrecognized names or empty text are skipped with a warning; a missing or
// unreadable bug directory never aborts the batch.
func (ld *Loader) LoadDir(root string) ([]*models.Query, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read queries dir: %w", err)
	}
	var queries []*models.Query
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		bugDir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(bugDir)
		if err != nil {
			ld.warn("unreadable bug directory skipped", bugDir, err)
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
			q, ok := ld.parseFile(bugDir, name)
			if ok {
				queries = append(queries, q)
			}
		}
	}
	return queries, nil
}

func (ld *Loader) parseFile(dir, name string) (*models.Query, bool) {
	m := queryFileRe.FindStringSubmatch(name)
	if m == nil {
		return nil, false
	}
	family, err := models.ParseFamily(m[3])
	if err != nil {
		ld.warn("unknown query family skipped", filepath.Join(dir, name), err)
		return nil, false
	}
	variant, err := models.ParseVariant(m[2])
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		ld.warn("unreadable query file skipped", filepath.Join(dir, name), err)
		return nil, false
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		ld.warn("empty query file skipped", filepath.Join(dir, name), nil)
		return nil, false
	}
	return &models.Query{
		BugID:   m[1],
		Family:  family,
		Variant: variant,
		Text:    text,
	}, true
}

func (ld *Loader) warn(msg, path string, err error) {
	if ld.logger == nil {
		return
	}
	fields := []zap.Field{zap.String("path", path)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ld.logger.Warn(msg, fields...)
}
