// Package indexfile implements the IndexLoader from spec.md §4.4: it
// materializes the final, merged index file into an in-memory
// Term -> PostingSet mapping, optionally backed by a persisted skip-pointer
// sidecar so skip tables don't need rebuilding on every run.
package indexfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/standardbeagle/invidx/internal/blockstore"
	"github.com/standardbeagle/invidx/internal/postinglist"
)

// Index is the loaded, queryable form of an index file: every term maps to
// a PostingSet (skip-annotated when skipSize > 0), satisfying
// internal/query.Index.
type Index struct {
	terms    map[string]*postinglist.PostingSet
	skipSize int
}

// sidecarEntry is the on-disk shape of a "{index}.skips" file: one entry per
// term, in the same order the index file itself lists them.
type sidecarEntry struct {
	Term     string              `json:"term"`
	Postings []postinglist.DocID `json:"postings"`
}

// Load reads path (the final, merged index file) into memory. When
// skipSize > 0, skip pointers are built for each term's posting list; if a
// sidecar file "{path}.skips" already exists it is loaded directly instead
// of rebuilding, and a freshly built set of skip tables is persisted to that
// sidecar for subsequent runs. When skipSize == 0 no skip pointers are built
// and no sidecar is read or written.
//
// Per spec.md §4.4, postings are trusted to already be sorted but are not
// assumed so: PostingSet's constructor re-sorts and deduplicates
// defensively.
func Load(path string, skipSize int) (*Index, error) {
	idx := &Index{terms: make(map[string]*postinglist.PostingSet), skipSize: skipSize}

	if skipSize > 0 {
		if entries, err := loadSidecar(sidecarPath(path)); err == nil {
			for _, e := range entries {
				idx.terms[e.Term] = postinglist.New(e.Postings, skipSize)
			}
			return idx, nil
		}
	}

	entries, err := readIndexFile(path)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		idx.terms[e.Term] = postinglist.New(e.Postings, skipSize)
	}

	if skipSize > 0 {
		if err := saveSidecar(sidecarPath(path), entries); err != nil {
			return nil, fmt.Errorf("indexfile: persisting skip sidecar: %w", err)
		}
	}
	return idx, nil
}

func sidecarPath(indexPath string) string {
	return indexPath + ".skips"
}

// readIndexFile parses every line of the index file into term/postings
// pairs, in file order.
func readIndexFile(path string) ([]sidecarEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("indexfile: opening %s: %w", path, err)
	}
	defer f.Close()

	var entries []sidecarEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		text := sc.Text()
		if text == "" {
			continue
		}
		line, ok := blockstore.ParseLine(text)
		if !ok {
			continue
		}
		postings := make([]postinglist.DocID, len(line.Postings))
		for i, p := range line.Postings {
			postings[i] = postinglist.DocID(p)
		}
		entries = append(entries, sidecarEntry{Term: line.Term, Postings: postings})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("indexfile: reading %s: %w", path, err)
	}
	return entries, nil
}

func loadSidecar(path string) ([]sidecarEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []sidecarEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("indexfile: parsing sidecar %s: %w", path, err)
	}
	return entries, nil
}

func saveSidecar(path string, entries []sidecarEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Lookup returns term's posting set, satisfying internal/query.Index.
func (idx *Index) Lookup(term string) (*postinglist.PostingSet, bool) {
	ps, ok := idx.terms[term]
	return ps, ok
}

// AllPostingSets returns every term's posting set, satisfying
// internal/query.Index for universe computation.
func (idx *Index) AllPostingSets() []*postinglist.PostingSet {
	out := make([]*postinglist.PostingSet, 0, len(idx.terms))
	for _, ps := range idx.terms {
		out = append(out, ps)
	}
	return out
}

// Terms returns every term in the index, sorted ascending.
func (idx *Index) Terms() []string {
	out := make([]string, 0, len(idx.terms))
	for t := range idx.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct terms in the index.
func (idx *Index) Len() int { return len(idx.terms) }
