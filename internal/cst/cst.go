// Package cst implements the concrete syntax tree and the parser
// combinators that build it.
//
// Every combinator is a pure function: State in, Result out, with an
// explicit OK flag. Failure is data, not control flow — there is nothing to
// recover from because nothing ever panics. "Commit points" (see Must) are
// where a soft, backtrackable failure becomes a hard Diagnostic: past a
// commit point the grammar no longer considers alternative productions.
package cst

import (
	"fmt"

	"github.com/hassan/veyra/internal/diag"
	"github.com/hassan/veyra/internal/srcpos"
	"github.com/hassan/veyra/internal/token"
)

// Node is one concrete syntax tree node: either a leaf holding the matched
// Token, or an interior node holding the ordered children a grammar rule
// assembled. Kind names the grammar rule/production, not a semantic
// category — the reducer (package ast) is what turns "concrete shape" into
// "semantic meaning".
type Node struct {
	Kind     string
	Tok      token.Token
	Children []Node
	Span     srcpos.Span
}

func leaf(kind string, t token.Token) Node {
	return Node{Kind: kind, Tok: t, Span: t.Span()}
}

func interior(kind string, children []Node) Node {
	n := Node{Kind: kind, Children: children}
	covered := false
	for _, c := range children {
		if !c.Span.IsValid() {
			continue // absent Optional / empty Repeat: no tokens consumed
		}
		if !covered {
			n.Span, covered = c.Span, true
		} else {
			n.Span = n.Span.Merge(c.Span)
		}
	}
	return n
}

// State is an immutable cursor into a token stream. Every combinator
// receives one State and returns a new one — there is no shared mutable
// parser object to accidentally alias between backtracking branches.
type State struct {
	toks []token.Token
	pos  int
	file string
}

// NewState builds the initial parser state from a token stream already
// filtered down to syntactically meaningful tokens; see SkipTrivia.
func NewState(toks []token.Token, file string) State {
	return State{toks: toks, file: file}
}

func (s State) current() token.Token {
	if s.pos >= len(s.toks) {
		return token.Token{Kind: token.EOF}
	}
	return s.toks[s.pos]
}

func (s State) advance() State {
	if s.pos >= len(s.toks) {
		return s
	}
	return State{toks: s.toks, pos: s.pos + 1, file: s.file}
}

// AtEnd reports whether the state has reached EOF.
func (s State) AtEnd() bool { return s.current().Kind == token.EOF }

// Result is the outcome of running a Combinator from some State: either a
// Node and the State past it (OK), a soft failure to let the caller try an
// alternative (!OK, Err == nil), or a hard failure from a commit point
// (!OK, Err != nil) that should propagate instead of being retried.
type Result struct {
	Node Node
	Next State
	OK   bool
	Err  *diag.Diagnostic
}

func ok(n Node, next State) Result  { return Result{Node: n, Next: next, OK: true} }
func fail() Result                  { return Result{OK: false} }
func hardFail(d *diag.Diagnostic) Result { return Result{OK: false, Err: d} }

// Combinator is a pure parsing step: token stream in, (node, remaining
// tokens) or failure out.
type Combinator func(State) Result

// SkipTrivia filters Whitespace/Comment tokens out of toks, which is how
// Tok() effectively ignores them without every grammar rule having to.
// Newline tokens are kept — several rules (import/export/struct-field
// lists) require seeing one explicitly.
func SkipTrivia(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.Whitespace || t.Kind == token.Comment {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Tok matches a single token of the given kind.
func Tok(kind token.Kind) Combinator {
	return func(s State) Result {
		if s.current().Kind != kind {
			return fail()
		}
		return ok(leaf(kind.String(), s.current()), s.advance())
	}
}

// Newline matches exactly one Newline token, for the grammar points where
// whitespace is significant (import/export/struct-field termination).
func Newline() Combinator {
	return Tok(token.Newline)
}

// Seq runs every combinator in order; if any fails, the whole sequence
// fails (propagating a hard failure if one occurred) without consuming
// input from the caller's point of view.
func Seq(kind string, cs ...Combinator) Combinator {
	return func(s State) Result {
		children := make([]Node, 0, len(cs))
		cur := s
		for _, c := range cs {
			r := c(cur)
			if !r.OK {
				if r.Err != nil {
					return r
				}
				return fail()
			}
			children = append(children, r.Node)
			cur = r.Next
		}
		return ok(interior(kind, children), cur)
	}
}

// Optional always succeeds: if c succeeds its node is wrapped and returned,
// otherwise an empty "absent" node is returned at the original state. A
// hard failure from c still propagates — an optional production that
// commits partway through (e.g. "(" seen, then a required ")") is still a
// real error.
func Optional(kind string, c Combinator) Combinator {
	return func(s State) Result {
		r := c(s)
		if r.Err != nil {
			return r
		}
		if !r.OK {
			return ok(Node{Kind: kind}, s)
		}
		return ok(interior(kind, []Node{r.Node}), r.Next)
	}
}

// Select tries each alternative in order and returns the first success.
// Alternatives must be distinguishable by a soft failure; once one
// alternative hard-fails (commits), Select stops and propagates instead of
// trying the next alternative — that is what "definite commit" means.
func Select(kind string, cs ...Combinator) Combinator {
	return func(s State) Result {
		for _, c := range cs {
			r := c(s)
			if r.Err != nil {
				return r
			}
			if r.OK {
				return ok(interior(kind, []Node{r.Node}), r.Next)
			}
		}
		return fail()
	}
}

// Repeat matches c zero or more times (min == 0) or one or more times
// (min == 1), greedily, optionally separated by sep. It stops at the first
// state where c fails softly; a hard failure from c propagates.
func Repeat(kind string, c Combinator, min int, sep Combinator) Combinator {
	return func(s State) Result {
		var children []Node
		cur := s
		for {
			if len(children) > 0 && sep != nil {
				r := sep(cur)
				if r.Err != nil {
					return r
				}
				if !r.OK {
					break
				}
				cur = r.Next
			}
			r := c(cur)
			if r.Err != nil {
				return r
			}
			if !r.OK {
				if len(children) > 0 && sep != nil {
					// Consumed a separator but found nothing after it:
					// that is a hard error, not "stop here".
					return hardFail(&diag.Diagnostic{
						Kind: diag.Syntactic, File: cur.file,
						Span:    srcpos.Span{Start: cur.current().Position, End: cur.current().Position},
						Message: fmt.Sprintf("expected %s after separator, found %s", kind, cur.current().Kind),
					})
				}
				break
			}
			children = append(children, r.Node)
			cur = r.Next
		}
		if len(children) < min {
			return fail()
		}
		return ok(interior(kind, children), cur)
	}
}

// Must turns a soft failure into a commit-point Diagnostic: once the
// grammar has seen enough to know it is definitely in this production (a
// keyword, an opening delimiter), a subsequent failure is a real syntax
// error, not a cue to backtrack and try something else.
func Must(c Combinator, message string) Combinator {
	return func(s State) Result {
		r := c(s)
		if r.OK || r.Err != nil {
			return r
		}
		cur := s.current()
		return hardFail(&diag.Diagnostic{
			Kind: diag.Syntactic, File: s.file,
			Span:    srcpos.Span{Start: cur.Position, End: cur.Position},
			Message: fmt.Sprintf("%s (found %s %q)", message, cur.Kind, cur.Lexeme),
		})
	}
}

// Lazy defers construction of a combinator until it runs, breaking the
// initialization cycles recursive grammar rules would otherwise create
// (e.g. an expression rule that contains itself inside parentheses).
func Lazy(f func() Combinator) Combinator {
	return func(s State) Result { return f()(s) }
}
