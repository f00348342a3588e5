// Package textpipeline implements the TextPipeline value from spec.md §9's
// re-architecture notes: a single, explicitly constructed preprocessing
// pipeline threaded through both the indexer's tokenizer and the query
// parser, so the two are guaranteed to normalize terms identically.
//
// Steps per token, grounded on original_source/ir_system/core/text_processing.py's
// preprocess_text/Tokenizer: lowercase, strip every rune that is not a
// letter (digits included), drop now-empty tokens, drop stop words, stem
// with Porter2.
package textpipeline

import (
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
)

// Pipeline is an immutable, concurrency-safe text-normalization pipeline.
// Construct one with New and share the same instance between indexing and
// querying.
type Pipeline struct {
	stopWords   map[string]struct{}
	stemMin     int
	stemEnabled bool
}

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithStopWords replaces the default stop-word list.
func WithStopWords(words []string) Option {
	return func(p *Pipeline) {
		p.stopWords = toSet(words)
	}
}

// WithMinStemLength sets the shortest token length that gets stemmed;
// shorter tokens are passed through unchanged to avoid Porter2 mangling
// very short words (e.g. "ox", "id"). Matches the minLength guard in the
// teacher's internal/semantic/stemmer.go.
func WithMinStemLength(n int) Option {
	return func(p *Pipeline) { p.stemMin = n }
}

// WithStemmingDisabled turns off the Porter2 stemming step, leaving terms
// as their lowercased, punctuation-stripped form. Mirrors the `enabled`
// flag on the teacher's internal/semantic/stemmer.go Stemmer.
func WithStemmingDisabled() Option {
	return func(p *Pipeline) { p.stemEnabled = false }
}

// New builds a Pipeline with the default stop-word list, stemming enabled,
// and a minimum stem length of 3, applying any options on top.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		stopWords:   toSet(defaultStopWords),
		stemMin:     3,
		stemEnabled: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// Normalize applies the full pipeline to a single raw token and returns the
// normalized term, or ok=false if the token should be dropped (empty after
// stripping punctuation and digits, a stop word, or stemmed to nothing).
func (p *Pipeline) Normalize(raw string) (string, bool) {
	lowered := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	stripped := b.String()
	if stripped == "" {
		return "", false
	}
	if _, isStop := p.stopWords[stripped]; isStop {
		return "", false
	}

	term := stripped
	if p.stemEnabled && len(term) >= p.stemMin {
		term = porter2.Stem(term)
	}
	if term == "" {
		return "", false
	}
	return term, true
}

// Tokenize splits text on whitespace and non-word runes, then normalizes
// each resulting field, dropping fields Normalize rejects. It is used by
// the corpus collector at index time and is available to callers that need
// ad hoc preprocessing outside the query parser's own tokenizer.
func (p *Pipeline) Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if term, ok := p.Normalize(f); ok {
			out = append(out, term)
		}
	}
	return out
}
