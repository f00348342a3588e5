// Package postinglist implements the sorted document-id container used by
// the inverted index: construction with optional skip pointers, and the
// set-algebra operations (intersect/union/difference) the query evaluator
// runs over it.
package postinglist

import (
	"math"
	"sort"
)

// DocID identifies a source document. The index treats it as an opaque,
// totally-ordered value; this build uses the document's source path, so
// ordering is plain lexicographic string comparison.
type DocID string

// AutoSkipSize tells New to derive the skip step from max(1, floor(sqrt(n)))
// instead of a caller-supplied value. Passing 0 explicitly disables skip
// pointers entirely.
const AutoSkipSize = -1

type skipPointer struct {
	Start int
	End   int
}

// PostingSet is the single, variant-free posting-list abstraction: a sorted,
// deduplicated run of DocIDs, optionally annotated with skip pointers. Every
// set-algebra method works the same way whether or not skip pointers are
// present, so callers (in particular the query evaluator) never need to
// branch on which "kind" of posting list they hold.
type PostingSet struct {
	docs     []DocID
	skipSize int
	skips    []skipPointer
}

// New sorts and deduplicates ids, then builds skip pointers per skipSize:
//   - skipSize == 0: no skip pointers.
//   - skipSize == AutoSkipSize (or any negative value): skipSize is derived
//     as max(1, floor(sqrt(len(ids)))).
//   - skipSize > 0: skip runs of that length.
func New(ids []DocID, skipSize int) *PostingSet {
	docs := make([]DocID, len(ids))
	copy(docs, ids)
	sort.Slice(docs, func(i, j int) bool { return docs[i] < docs[j] })
	docs = dedupe(docs)

	ps := &PostingSet{docs: docs}
	if skipSize == 0 {
		return ps
	}
	if skipSize < 0 {
		skipSize = max(1, int(math.Sqrt(float64(len(docs)))))
	}
	ps.skipSize = skipSize
	ps.skips = buildSkips(len(docs), skipSize)
	return ps
}



func dedupe(sorted []DocID) []DocID {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, d := range sorted[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}

func buildSkips(n, skipSize int) []skipPointer {
	var skips []skipPointer
	for i := 0; i < n; i += skipSize {
		end := i + skipSize
		if end > n-1 {
			end = n - 1
		}
		if end > i {
			skips = append(skips, skipPointer{Start: i, End: end})
		}
	}
	return skips
}

// Len returns the number of documents in the set.
func (ps *PostingSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.docs)
}

// Docs returns the sorted, deduplicated document ids. The returned slice must
// not be mutated by the caller.
func (ps *PostingSet) Docs() []DocID {
	if ps == nil {
		return nil
	}
	return ps.docs
}

// skipEndFrom returns the end index of a skip run starting exactly at i, and
// whether one exists.
func (ps *PostingSet) skipEndFrom(i int) (int, bool) {
	if ps.skipSize == 0 {
		return 0, false
	}
	for _, sp := range ps.skips {
		if sp.Start == i {
			return sp.End, true
		}
		if sp.Start > i {
			break
		}
	}
	return 0, false
}

// Intersect computes the classic two-pointer merge intersection, using skip
// pointers to jump ahead whenever doing so is strictly beneficial: the lesser
// pointer sits at the start of a skip run and the run's end value is still
// <= the other list's current element.
func (ps *PostingSet) Intersect(other *PostingSet) *PostingSet {
	var result []DocID
	if ps.Len() == 0 || other.Len() == 0 {
		return New(nil, 0)
	}

	a, b := ps.docs, other.docs
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			result = append(result, a[i])
			i++
			j++
		case a[i] < b[j]:
			if end, ok := ps.skipEndFrom(i); ok && a[end] <= b[j] {
				i = end
			} else {
				i++
			}
		default:
			if end, ok := other.skipEndFrom(j); ok && b[end] <= a[i] {
				j = end
			} else {
				j++
			}
		}
	}
	return New(result, 0)
}

// Union returns the set union; skip pointers on the inputs play no role
// since the result is only ever a plain set for further evaluation.
func (ps *PostingSet) Union(other *PostingSet) *PostingSet {
	seen := make(map[DocID]struct{}, ps.Len()+other.Len())
	out := make([]DocID, 0, ps.Len()+other.Len())
	for _, d := range ps.Docs() {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	for _, d := range other.Docs() {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	return New(out, 0)
}

// Difference returns self \ other.
func (ps *PostingSet) Difference(other *PostingSet) *PostingSet {
	if other.Len() == 0 {
		return New(ps.Docs(), 0)
	}
	exclude := make(map[DocID]struct{}, other.Len())
	for _, d := range other.Docs() {
		exclude[d] = struct{}{}
	}
	out := make([]DocID, 0, ps.Len())
	for _, d := range ps.Docs() {
		if _, ok := exclude[d]; !ok {
			out = append(out, d)
		}
	}
	return New(out, 0)
}
