// Package diag implements the diagnostic accumulation shared by the parser
// and the type resolver: lexical and syntactic errors abort the pass that
// found them, but semantic errors accumulate so checking can keep going and
// report everything wrong in one pass, then get joined into a single error
// at the end.
package diag

import (
	"errors"
	"fmt"

	"github.com/hassan/veyra/internal/srcpos"
)

// Kind distinguishes where in the pipeline a Diagnostic was raised. Lexical
// and Syntactic diagnostics are fatal to the pass producing them; Semantic
// diagnostics accumulate in a Bag.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntactic:
		return "syntax error"
	case Semantic:
		return "semantic error"
	default:
		return "error"
	}
}

// Diagnostic is one reported problem, located in the source that produced it.
type Diagnostic struct {
	Kind    Kind
	File    string
	Span    srcpos.Span
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Span.String(), d.Kind, d.Message)
}

// Bag accumulates diagnostics raised while a pass keeps running after an
// error — the type resolver's case, per its "substitute unknown, keep
// checking" rule. The parser and lexer instead return the first Lexical or
// Syntactic Diagnostic they hit directly, without a Bag.
type Bag struct {
	items []Diagnostic
}

// Add records d and continues.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Addf is a convenience for Add with a formatted Semantic message.
func (b *Bag) Addf(file string, span srcpos.Span, format string, args ...any) {
	b.Add(Diagnostic{Kind: Semantic, File: file, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Len reports how many diagnostics have been recorded.
func (b *Bag) Len() int { return len(b.items) }

// Items returns the recorded diagnostics in the order they were added.
func (b *Bag) Items() []Diagnostic { return b.items }

// Err joins every recorded diagnostic into one error, or returns nil if the
// bag is empty. Each diagnostic contributes exactly one line.
func (b *Bag) Err() error {
	if len(b.items) == 0 {
		return nil
	}
	errs := make([]error, len(b.items))
	for i, d := range b.items {
		errs[i] = d
	}
	return errors.Join(errs...)
}
