// Package corpus discovers a project's indexable source files.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bugloc/bugloc/internal/models"
)

// Loader walks a project directory and returns its source files in a
// deterministic (lexicographic) order.
type Loader struct {
	extensions map[string]bool
	logger     *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for skip events.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader creates a loader that keeps files whose extension is in
// extensions (case-insensitive, leading dot optional).
func NewLoader(extensions []string, opts ...LoaderOption) *Loader {
	ld := &Loader{extensions: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		ld.extensions[normalizeExt(ext)] = true
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load returns the project's source files with paths relative to root.
// Unreadable or binary files are skipped with a logged warning; they never
// fail the walk. filepath.WalkDir visits entries in lexical order, so the
// returned sequence is reproducible across runs.
func (ld *Loader) Load(root string) ([]models.SourceFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absRoot)
	}

	var files []models.SourceFile
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			ld.warn("walk error", path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if len(ld.extensions) > 0 && !ld.extensions[normalizeExt(filepath.Ext(path))] {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			ld.warn("unreadable file skipped", path, readErr)
			return nil
		}
		if isBinary(data) {
			ld.warn("binary file skipped", path, nil)
			return nil
		}
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			rel = path
		}
		files = append(files, models.SourceFile{
			Path: filepath.ToSlash(rel),
			Text: string(data),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
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

// isBinary treats content with NUL bytes or invalid UTF-8 as binary.
func isBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for _, b := range data {
		if b == 0 {
			return true
		}
	}
	return !utf8.Valid(data)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
