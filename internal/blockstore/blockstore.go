// Package blockstore writes and reads the sorted (term, postings) block
// files that SPIMI flushes to disk and the merger reads back: one line per
// term, strictly increasing terms, strictly increasing comma-separated
// postings, no trailing comma.
package blockstore

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/invidx/internal/postinglist"
)

// Entry is one line of a block or index file prior to serialization.
type Entry struct {
	Term     string
	Postings []postinglist.DocID
}

// Write serializes entries (which must already be sorted by Term, with each
// entry's Postings already sorted) to path, one line per entry, and returns
// the xxhash checksum of the bytes written so callers can record it for
// later corruption detection.
func Write(path string, entries []Entry) (uint64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("blockstore: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	h := xxhash.New()
	mw := &teeWriter{w: w, h: h}

	for _, e := range entries {
		if _, err := fmt.Fprintf(mw, "%s\t%s\n", e.Term, joinPostings(e.Postings)); err != nil {
			return 0, fmt.Errorf("blockstore: write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("blockstore: flush %s: %w", path, err)
	}
	return h.Sum64(), nil
}

func joinPostings(postings []postinglist.DocID) string {
	parts := make([]string, len(postings))
	for i, p := range postings {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}

// teeWriter duplicates every write into a running xxhash digest while also
// forwarding it to the underlying writer, so the checksum of a block's
// content can be computed in a single streaming pass.
type teeWriter struct {
	w *bufio.Writer
	h *xxhash.Digest
}

func (t *teeWriter) Write(p []byte) (int, error) {
	t.h.Write(p)
	return t.w.Write(p)
}

// Checksum computes the xxhash checksum of a block file already on disk,
// used by the merger to verify a block was not truncated by a crashed build.
func Checksum(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("blockstore: checksum %s: %w", path, err)
	}
	return xxhash.Sum64(data), nil
}

// Line is one parsed (term, postings) pair read back from a block or index
// file, postings left as raw strings in on-disk order (callers sort if they
// need to trust it rather than assume it).
type Line struct {
	Term     string
	Postings []string
}

// ParseLine splits a single block/index-file line on the first tab, then
// splits postings on comma. Empty postings fields produce a nil slice.
func ParseLine(line string) (Line, bool) {
	tab := strings.IndexByte(line, '\t')
	if tab < 0 {
		return Line{}, false
	}
	term := line[:tab]
	rest := line[tab+1:]
	if term == "" {
		return Line{}, false
	}
	if rest == "" {
		return Line{Term: term}, true
	}
	return Line{Term: term, Postings: strings.Split(rest, ",")}, true
}

// SortEntries sorts entries by Term ascending and each entry's Postings
// ascending, matching the block/index file ordering invariant.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Term < entries[j].Term })
	for _, e := range entries {
		sort.Slice(e.Postings, func(i, j int) bool { return e.Postings[i] < e.Postings[j] })
	}
}

// Reader streams (term, postings) lines from a block or index file in
// on-disk order, one at a time, for the merger's k-way merge.
type Reader struct {
	f   *os.File
	sc  *bufio.Scanner
	err error
}

// OpenReader opens path for line-by-line reading.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("blockstore: open %s: %w", path, err)
	}
	return &Reader{f: f, sc: bufio.NewScanner(f)}, nil
}

// Next returns the next parsed line, skipping blank and malformed lines, or
// ok=false at EOF or on a scan error. Check Err after Next returns false to
// distinguish EOF from a scan error.
func (r *Reader) Next() (Line, bool) {
	for r.sc.Scan() {
		text := r.sc.Text()
		if text == "" {
			continue
		}
		if line, ok := ParseLine(text); ok {
			return line, true
		}
	}
	r.err = r.sc.Err()
	return Line{}, false
}

// Err returns any error encountered while scanning.
func (r *Reader) Err() error { return r.err }

// Close closes the underlying file.
func (r *Reader) Close() error { return r.f.Close() }
