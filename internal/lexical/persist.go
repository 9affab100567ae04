package lexical

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Save persists the index to path. Directory is created if needed.
// The format is deterministic: chunks in insertion order, terms sorted, all
// integers little-endian. Rebuilding an unchanged corpus and saving again
// produces a byte-identical file.
func (ix *Index) Save(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if err := binary.Write(w, binary.LittleEndian, uint32(len(ix.chunkIDs))); err != nil {
		return fmt.Errorf("write chunk count: %w", err)
	}
	for i, id := range ix.chunkIDs {
		if err := writeString(w, id); err != nil {
			return fmt.Errorf("write chunk id: %w", err)
		}
		if err := writeString(w, ix.filePaths[i]); err != nil {
			return fmt.Errorf("write file path: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(ix.chunkLens[i])); err != nil {
			return fmt.Errorf("write chunk len: %w", err)
		}
	}

	terms := make([]string, 0, len(ix.postings))
	for t := range ix.postings {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(terms))); err != nil {
		return fmt.Errorf("write term count: %w", err)
	}
	for _, t := range terms {
		if err := writeString(w, t); err != nil {
			return fmt.Errorf("write term: %w", err)
		}
		plist := ix.postings[t]
		if err := binary.Write(w, binary.LittleEndian, uint32(len(plist))); err != nil {
			return fmt.Errorf("write posting count: %w", err)
		}
		for _, p := range plist {
			if err := binary.Write(w, binary.LittleEndian, uint32(p.Chunk)); err != nil {
				return fmt.Errorf("write posting chunk: %w", err)
			}
			if err := binary.Write(w, binary.LittleEndian, uint32(p.TF)); err != nil {
				return fmt.Errorf("write posting tf: %w", err)
			}
		}
	}
	return w.Flush()
}

// Load reads an index from path, replacing the receiver's contents.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	ix := NewIndex()
	var chunkCount uint32
	if err := binary.Read(r, binary.LittleEndian, &chunkCount); err != nil {
		return nil, fmt.Errorf("read chunk count: %w", err)
	}
	ix.chunkIDs = make([]string, chunkCount)
	ix.filePaths = make([]string, chunkCount)
	ix.chunkLens = make([]int, chunkCount)
	for i := uint32(0); i < chunkCount; i++ {
		id, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("read chunk id: %w", err)
		}
		path, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("read file path: %w", err)
		}
		var clen uint32
		if err := binary.Read(r, binary.LittleEndian, &clen); err != nil {
			return nil, fmt.Errorf("read chunk len: %w", err)
		}
		ix.chunkIDs[i] = id
		ix.filePaths[i] = path
		ix.chunkLens[i] = int(clen)
		ix.byID[id] = int(i)
		ix.totalLen += int(clen)
	}

	var termCount uint32
	if err := binary.Read(r, binary.LittleEndian, &termCount); err != nil {
		return nil, fmt.Errorf("read term count: %w", err)
	}
	for i := uint32(0); i < termCount; i++ {
		term, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("read term: %w", err)
		}
		var plen uint32
		if err := binary.Read(r, binary.LittleEndian, &plen); err != nil {
			return nil, fmt.Errorf("read posting count: %w", err)
		}
		plist := make([]Posting, plen)
		for j := uint32(0); j < plen; j++ {
			var chunk, tf uint32
			if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
				return nil, fmt.Errorf("read posting chunk: %w", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &tf); err != nil {
				return nil, fmt.Errorf("read posting tf: %w", err)
			}
			if int(chunk) >= int(chunkCount) {
				return nil, fmt.Errorf("posting references chunk %d of %d", chunk, chunkCount)
			}
			plist[j] = Posting{Chunk: int(chunk), TF: int(tf)}
		}
		ix.postings[term] = plist
	}
	return ix, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
