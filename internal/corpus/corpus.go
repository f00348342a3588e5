// Package corpus walks a source-document tree and turns it into the
// (docID, tokens) stream the SPIMI builder consumes. It is the concrete,
// runnable form of spec.md §1's "external collaborator" — crawling and
// tokenization policy here are intentionally simple, per SPEC_FULL.md §4.8:
// no gitignore, no binary detection, no symlink handling.
package corpus

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/invidx/internal/postinglist"
	"github.com/standardbeagle/invidx/internal/textpipeline"
)

// Document is one collected source file: its DocId (the file's path,
// resolving spec.md's open question per SPEC_FULL.md's DocId decision), its
// docOrdinal (a display-only position in collection order, never used as an
// ordering key — DocId's lexicographic order is the one that matters), and
// the normalized term stream read from it.
type Document struct {
	ID         postinglist.DocID
	DocOrdinal int
	Tokens     []string
}

// Collect walks inputDir, keeping only files whose name ends in one of
// extensions (e.g. ".txt"; each is matched as the doublestar glob "*"+ext;
// an empty list keeps every regular file), reads each with a UTF-8-then-Latin-1 fallback, and
// tokenizes it through pipeline. Results are returned sorted by DocId so
// callers get deterministic SPIMI input ordering.
func Collect(inputDir string, extensions []string, pipeline *textpipeline.Pipeline) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !matchesExtensions(d.Name(), extensions) {
			return nil
		}

		text, err := readText(path)
		if err != nil {
			return err
		}

		docs = append(docs, Document{
			ID:     postinglist.DocID(path),
			Tokens: pipeline.Tokenize(text),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	for i := range docs {
		docs[i].DocOrdinal = i + 1
	}
	return docs, nil
}

func matchesExtensions(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if ok, _ := doublestar.Match("*"+ext, name); ok {
			return true
		}
	}
	return false
}

// readText reads path as UTF-8; if the bytes are not valid UTF-8 it falls
// back to decoding as Latin-1 (ISO-8859-1), per spec.md §6's "Text reading"
// rule. Latin-1's code points 0-255 map one-to-one onto the first 256
// Unicode code points, so this fallback is a plain byte-to-rune widening
// and never fails.
func readText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes), nil
}
