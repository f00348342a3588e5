// Package query implements the boolean QueryParser and QueryEvaluator from
// spec.md §4.5: shunting-yard infix-to-postfix conversion followed by
// postfix evaluation against a loaded index's posting sets. Grounded on
// original_source/ir_system/core/query_processing.py's QueryParser, whose
// precedence table and pop rule this mirrors exactly.
package query

import (
	"strings"

	"github.com/standardbeagle/invidx/internal/postinglist"
	"github.com/standardbeagle/invidx/internal/textpipeline"
)

// tokenKind distinguishes operators, parens, and terms in the token stream.
type tokenKind int

const (
	kindTerm tokenKind = iota
	kindAnd
	kindOr
	kindNot
	kindLParen
	kindRParen
)

type token struct {
	kind tokenKind
	term string // only set when kind == kindTerm
}

// precedence returns each operator's precedence, ascending per spec.md §4.5:
// OR(1) < AND(2) < NOT(3). Parens have no precedence; callers must not ask.
func (k tokenKind) precedence() int {
	switch k {
	case kindOr:
		return 1
	case kindAnd:
		return 2
	case kindNot:
		return 3
	}
	return 0
}

func (k tokenKind) isOperator() bool {
	return k == kindAnd || k == kindOr || k == kindNot
}

// Tokenize pads parens with spaces, splits on whitespace, classifies
// operator keywords case-insensitively, and normalizes every other token
// through pipeline. Terms that normalize away (stop words, empty after
// stripping) are silently dropped from the stream, per spec.md §4.5.
func Tokenize(raw string, pipeline *textpipeline.Pipeline) []token {
	padded := strings.NewReplacer("(", " ( ", ")", " ) ").Replace(raw)
	fields := strings.Fields(padded)

	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		switch strings.ToUpper(f) {
		case "AND":
			tokens = append(tokens, token{kind: kindAnd})
		case "OR":
			tokens = append(tokens, token{kind: kindOr})
		case "NOT":
			tokens = append(tokens, token{kind: kindNot})
		case "(":
			tokens = append(tokens, token{kind: kindLParen})
		case ")":
			tokens = append(tokens, token{kind: kindRParen})
		default:
			if term, ok := pipeline.Normalize(f); ok {
				tokens = append(tokens, token{kind: kindTerm, term: term})
			}
		}
	}
	return tokens
}

// ToPostfix converts an infix token stream to postfix via shunting-yard,
// per spec.md §4.5's pop rule: an incoming binary operator pops stack
// operators of greater-or-equal precedence (left-associative); NOT, being
// right-associative and unary, pops only strictly greater precedence.
// Unbalanced parens and dangling operators are tolerated, not rejected —
// an unmatched right paren pops every stacked operator to the output and is
// then dropped, unmatched left parens are dropped, and any operators left
// on the stack at end-of-input are appended to the output in LIFO order.
func ToPostfix(tokens []token) []token {
	var output []token
	var stack []token

	popWhile := func(incoming token) {
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.kind == kindLParen {
				break
			}
			if incoming.kind == kindNot {
				if top.kind.precedence() <= incoming.kind.precedence() {
					break
				}
			} else {
				if top.kind.precedence() < incoming.kind.precedence() {
					break
				}
			}
			output = append(output, top)
			stack = stack[:len(stack)-1]
		}
	}

	for _, tok := range tokens {
		switch tok.kind {
		case kindTerm:
			output = append(output, tok)
		case kindLParen:
			stack = append(stack, tok)
		case kindRParen:
			for len(stack) > 0 && stack[len(stack)-1].kind != kindLParen {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1] // discard the matching '('
			}
		default: // AND, OR, NOT
			popWhile(tok)
			stack = append(stack, tok)
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == kindLParen {
			continue // unmatched '(' — dropped, per tolerant failure semantics
		}
		output = append(output, top)
	}
	return output
}

// Parse tokenizes and converts raw into postfix form in one step.
func Parse(raw string, pipeline *textpipeline.Pipeline) []token {
	return ToPostfix(Tokenize(raw, pipeline))
}

// Index is the minimal read surface QueryEvaluator needs: look up a term's
// posting set, and enumerate every posting set to build NOT's universe.
// internal/indexfile.Index satisfies this.
type Index interface {
	Lookup(term string) (*postinglist.PostingSet, bool)
	AllPostingSets() []*postinglist.PostingSet
}

// Evaluate runs a postfix token stream against idx and returns the matching
// DocId set, per spec.md §4.5's evaluator semantics. An empty postfix
// stream yields the empty set; a malformed stream that leaves more than one
// value on the stack returns the top value (tolerant behavior, not an
// error).
func Evaluate(postfix []token, idx Index) *postinglist.PostingSet {
	var stack []*postinglist.PostingSet
	var universe *postinglist.PostingSet // computed lazily, once per query

	universeOf := func() *postinglist.PostingSet {
		if universe != nil {
			return universe
		}
		universe = postinglist.New(nil, 0)
		for _, ps := range idx.AllPostingSets() {
			universe = universe.Union(ps)
		}
		return universe
	}

	pop := func() *postinglist.PostingSet {
		if len(stack) == 0 {
			return postinglist.New(nil, 0)
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}

	for _, tok := range postfix {
		switch tok.kind {
		case kindTerm:
			if ps, ok := idx.Lookup(tok.term); ok {
				stack = append(stack, ps)
			} else {
				stack = append(stack, postinglist.New(nil, 0))
			}
		case kindAnd:
			b, a := pop(), pop()
			stack = append(stack, a.Intersect(b))
		case kindOr:
			b, a := pop(), pop()
			stack = append(stack, a.Union(b))
		case kindNot:
			a := pop()
			stack = append(stack, universeOf().Difference(a))
		}
	}

	if len(stack) == 0 {
		return postinglist.New(nil, 0)
	}
	return stack[len(stack)-1]
}

// Run is the convenience entry point: parse raw against pipeline and
// evaluate the result against idx.
func Run(raw string, pipeline *textpipeline.Pipeline, idx Index) *postinglist.PostingSet {
	return Evaluate(Parse(raw, pipeline), idx)
}
