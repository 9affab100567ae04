package lexical

// Posting records one chunk's term frequency for a term.
type Posting struct {
	Chunk int // ordinal of the chunk in insertion order
	TF    int
}

// Index is a per-project inverted index with the statistics BM25 needs:
// per-chunk term frequencies, document frequencies, and chunk lengths.
// It is mutable during a build and treated as immutable afterwards; concurrent
// reads are safe once no more chunks are added.
type Index struct {
	postings  map[string][]Posting
	chunkIDs  []string
	filePaths []string // parallel to chunkIDs
	chunkLens []int    // parallel to chunkIDs
	byID      map[string]int
	totalLen  int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		postings: make(map[string][]Posting),
		byID:     make(map[string]int),
	}
}

// Add indexes one chunk's terms. Chunk IDs must be unique; Add keeps the
// insertion order, which makes rebuilds over an unchanged corpus reproducible.
func (ix *Index) Add(chunkID, filePath string, terms []string) {
	ord := len(ix.chunkIDs)
	ix.chunkIDs = append(ix.chunkIDs, chunkID)
	ix.filePaths = append(ix.filePaths, filePath)
	ix.chunkLens = append(ix.chunkLens, len(terms))
	ix.byID[chunkID] = ord
	ix.totalLen += len(terms)

	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	for term, n := range tf {
		ix.postings[term] = append(ix.postings[term], Posting{Chunk: ord, TF: n})
	}
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.chunkIDs) }

// Terms returns the number of distinct terms.
func (ix *Index) Terms() int { return len(ix.postings) }

// AvgChunkLen returns the corpus-average chunk length in terms.
func (ix *Index) AvgChunkLen() float64 {
	if len(ix.chunkIDs) == 0 {
		return 0
	}
	return float64(ix.totalLen) / float64(len(ix.chunkIDs))
}

// DocFreq returns the number of chunks containing term.
func (ix *Index) DocFreq(term string) int {
	return len(ix.postings[term])
}

// ChunkIDs returns the chunk IDs in insertion order. Callers must not modify
// the returned slice.
func (ix *Index) ChunkIDs() []string { return ix.chunkIDs }

// FileOf returns the owning file path of a chunk ID.
func (ix *Index) FileOf(chunkID string) (string, bool) {
	ord, ok := ix.byID[chunkID]
	if !ok {
		return "", false
	}
	return ix.filePaths[ord], true
}

// HasChunk reports whether chunkID is indexed.
func (ix *Index) HasChunk(chunkID string) bool {
	_, ok := ix.byID[chunkID]
	return ok
}

// FileOwnership returns the chunk ID -> file path map for ranking.
func (ix *Index) FileOwnership() map[string]string {
	m := make(map[string]string, len(ix.chunkIDs))
	for i, id := range ix.chunkIDs {
		m[id] = ix.filePaths[i]
	}
	return m
}

// Files returns the distinct indexed file paths in first-seen order.
func (ix *Index) Files() []string {
	seen := make(map[string]bool, len(ix.filePaths))
	files := make([]string, 0, len(ix.filePaths))
	for _, p := range ix.filePaths {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	return files
}
