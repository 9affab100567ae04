package models

import "errors"

// Sentinel errors for the failure classes that abort or degrade an operation.
// Input problems (unreadable file, empty query) are handled by skip-and-log at
// the call site and do not need sentinels.
var (
	// ErrDimensionMismatch: an embedding came back with a different dimension
	// than the rest of the corpus. Fatal for the project's index build.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexMisaligned: the vector index references chunk IDs the lexical
	// index does not know. The index pair must be rebuilt from scratch.
	ErrIndexMisaligned = errors.New("lexical and vector indexes are misaligned")

	// ErrEmptyQuery: a query with no usable text was submitted for ranking.
	ErrEmptyQuery = errors.New("query text is empty")
)
