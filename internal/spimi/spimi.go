// Package spimi implements the Single-Pass In-Memory Indexing builder:
// stream (term, doc) pairs, buffer them in memory up to a token-count
// budget, flush sorted blocks to disk, and merge the blocks into the final
// index file.
package spimi

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardbeagle/invidx/internal/blockstore"
	"github.com/standardbeagle/invidx/internal/merge"
	"github.com/standardbeagle/invidx/internal/postinglist"
)

// state is the builder's internal state machine, per spec.md §4.2.
type state int

const (
	stateBuilding state = iota
	stateFlushing
	stateFinalized
)

// Builder accumulates tokens in memory and periodically flushes sorted
// blocks to outputDir/temp_blocks, finally merging them into outputPath.
type Builder struct {
	blockSize  int
	outputPath string
	tempDir    string

	state state
	dict  map[string]map[postinglist.DocID]struct{}

	tokenCount   int
	blockCounter int
	blocks       []merge.Block
}

// New creates a builder. blockSize is the token-count budget (spec.md §3:
// "the sum over all entries of cumulative calls to add"); it must be
// positive.
func New(blockSize int, outputPath string) (*Builder, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("spimi: blockSize must be positive, got %d", blockSize)
	}
	tempDir := filepath.Join(filepath.Dir(outputPath), "temp_blocks")
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("spimi: creating temp block directory: %w", err)
	}
	return &Builder{
		blockSize:  blockSize,
		outputPath: outputPath,
		tempDir:    tempDir,
		dict:       make(map[string]map[postinglist.DocID]struct{}),
	}, nil
}

// AddToken records one (term, doc) occurrence. Every call counts toward the
// token budget, regardless of whether term or the (term, doc) pair has been
// seen before — only the in-memory postings set deduplicates.
func (b *Builder) AddToken(term string, doc postinglist.DocID) error {
	if b.state == stateFinalized {
		return fmt.Errorf("spimi: AddToken called after Finalize")
	}
	postings, ok := b.dict[term]
	if !ok {
		postings = make(map[postinglist.DocID]struct{})
		b.dict[term] = postings
	}
	postings[doc] = struct{}{}
	b.tokenCount++

	if b.tokenCount >= b.blockSize {
		return b.flush()
	}
	return nil
}

// flush writes the current in-memory dictionary to a sorted block file and
// resets the builder to an empty Building state.
func (b *Builder) flush() error {
	if len(b.dict) == 0 {
		return nil
	}
	b.state = stateFlushing

	entries := make([]blockstore.Entry, 0, len(b.dict))
	for term, postings := range b.dict {
		ids := make([]postinglist.DocID, 0, len(postings))
		for id := range postings {
			ids = append(ids, id)
		}
		entries = append(entries, blockstore.Entry{Term: term, Postings: ids})
	}
	blockstore.SortEntries(entries)

	path := filepath.Join(b.tempDir, fmt.Sprintf("block_%d.txt", b.blockCounter))
	checksum, err := blockstore.Write(path, entries)
	if err != nil {
		return fmt.Errorf("spimi: flushing block %d: %w", b.blockCounter, err)
	}
	b.blocks = append(b.blocks, merge.Block{Path: path, Checksum: checksum})

	b.dict = make(map[string]map[postinglist.DocID]struct{})
	b.tokenCount = 0
	b.blockCounter++
	b.state = stateBuilding
	return nil
}

// Result reports what Finalize produced.
type Result struct {
	BlocksWritten int
	merge.Result
}

// Finalize performs the terminal flush (if the in-memory dictionary is
// non-empty) and merges every block written so far into the final index
// file. After Finalize, the builder can no longer accept tokens.
func (b *Builder) Finalize() (Result, error) {
	if err := b.flush(); err != nil {
		return Result{}, err
	}
	b.state = stateFinalized

	blocksWritten := len(b.blocks)
	mergeResult, err := merge.Merge(b.blocks, b.outputPath)
	if err != nil {
		return Result{}, fmt.Errorf("spimi: merging blocks: %w", err)
	}
	// Removing the now-empty temp directory is cleanup, not correctness:
	// a failure here is logged by the caller, never fatal.
	_ = os.Remove(b.tempDir)

	return Result{BlocksWritten: blocksWritten, Result: mergeResult}, nil
}

// BlockCounter reports how many blocks have been flushed so far.
func (b *Builder) BlockCounter() int { return b.blockCounter }

// TokenCount reports the number of AddToken calls since the last flush.
func (b *Builder) TokenCount() int { return b.tokenCount }
