// Package merge implements the k-way merge that combines sorted SPIMI block
// files into a single final inverted index file.
package merge

import (
	"container/heap"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/standardbeagle/invidx/internal/blockstore"
)

// Block describes one flushed SPIMI block file to be merged.
type Block struct {
	Path     string
	Checksum uint64 // 0 means no checksum was recorded for this block
}

// Result reports what the merge produced, for callers that want to surface
// build statistics (distinct term count, number of blocks merged, block
// files that could not be removed).
type Result struct {
	TermCount    int
	BlocksMerged int
	CleanupErrs  []error // non-fatal: temp files/dir that could not be removed
}

// Merge performs the min-heap k-way merge described by spec.md §4.3: pop the
// lexicographically smallest pending term across all open blocks,
// accumulate postings for repeats of that term into a set (collapsing
// duplicates across blocks), and emit one line per distinct term in strictly
// increasing order. On success every block file is removed; failures to
// remove are collected in Result.CleanupErrs rather than returned as errors.
func Merge(blocks []Block, outputPath string) (Result, error) {
	var res Result
	if len(blocks) == 0 {
		return res, nil
	}

	for _, b := range blocks {
		if b.Checksum == 0 {
			continue
		}
		sum, err := blockstore.Checksum(b.Path)
		if err != nil {
			return res, fmt.Errorf("merge: verifying block %s: %w", b.Path, err)
		}
		if sum != b.Checksum {
			return res, fmt.Errorf("merge: block %s is corrupt (checksum mismatch, crashed build?)", b.Path)
		}
	}

	readers := make([]*blockstore.Reader, len(blocks))
	for i, b := range blocks {
		r, err := blockstore.OpenReader(b.Path)
		if err != nil {
			for _, opened := range readers[:i] {
				if opened != nil {
					opened.Close()
				}
			}
			return res, fmt.Errorf("merge: opening block %s: %w", b.Path, err)
		}
		readers[i] = r
	}
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return res, fmt.Errorf("merge: creating output directory: %w", err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return res, fmt.Errorf("merge: creating output file %s: %w", outputPath, err)
	}
	defer out.Close()

	pq := &termHeap{}
	heap.Init(pq)
	for idx, r := range readers {
		if line, ok := r.Next(); ok {
			heap.Push(pq, termEntry{term: line.Term, postings: line.Postings, block: idx})
		} else if err := r.Err(); err != nil {
			return res, fmt.Errorf("merge: reading block %s: %w", blocks[idx].Path, err)
		}
	}

	var currentTerm string
	currentPostings := make(map[string]struct{})
	haveCurrent := false

	flush := func() error {
		if !haveCurrent {
			return nil
		}
		sorted := make([]string, 0, len(currentPostings))
		for p := range currentPostings {
			sorted = append(sorted, p)
		}
		sort.Strings(sorted)
		line := currentTerm + "\t"
		for i, p := range sorted {
			if i > 0 {
				line += ","
			}
			line += p
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
		res.TermCount++
		return nil
	}

	for pq.Len() > 0 {
		entry := heap.Pop(pq).(termEntry)

		if haveCurrent && currentTerm != entry.term {
			if err := flush(); err != nil {
				return res, fmt.Errorf("merge: writing output: %w", err)
			}
			currentPostings = make(map[string]struct{})
		}
		currentTerm = entry.term
		haveCurrent = true
		for _, p := range entry.postings {
			currentPostings[p] = struct{}{}
		}

		r := readers[entry.block]
		if line, ok := r.Next(); ok {
			heap.Push(pq, termEntry{term: line.Term, postings: line.Postings, block: entry.block})
		} else if err := r.Err(); err != nil {
			return res, fmt.Errorf("merge: reading block %s: %w", blocks[entry.block].Path, err)
		}
	}
	if err := flush(); err != nil {
		return res, fmt.Errorf("merge: writing output: %w", err)
	}

	for _, r := range readers {
		r.Close()
	}
	for _, b := range blocks {
		if err := os.Remove(b.Path); err != nil {
			res.CleanupErrs = append(res.CleanupErrs, err)
		}
	}
	if dir := filepath.Dir(blocks[0].Path); dir != "." {
		_ = os.Remove(dir) // only succeeds if now empty; non-fatal either way
	}

	res.BlocksMerged = len(blocks)
	return res, nil
}

// termEntry is one pending (term, postings, source block) heap node.
type termEntry struct {
	term     string
	postings []string
	block    int
}

// termHeap orders entries lexicographically by term; ties are broken
// arbitrarily since equal terms are merged together regardless of pop order.
type termHeap []termEntry

func (h termHeap) Len() int            { return len(h) }
func (h termHeap) Less(i, j int) bool  { return h[i].term < h[j].term }
func (h termHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *termHeap) Push(x interface{}) { *h = append(*h, x.(termEntry)) }
func (h *termHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}
