// Package srcpos provides the source-location primitives shared by every
// stage of the front end: the lexer stamps a Position on each token, the
// parser threads Positions into CST nodes, and the reducer merges them into
// the Spans recorded in an AST's locations map.
package srcpos

import (
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
)

// Position is a point in a source file. We reuse participle's lexer.Position
// (Filename, Offset, Line, Column) rather than inventing another one — it is
// the same four fields every hand-written scanner in this shape ends up with,
// and taking it from participle means any tooling already speaking that type
// composes with ours for free.
type Position = lexer.Position

// IsValid reports whether p has a line number, the minimum information a
// position needs to be reported to a user.
func IsValid(p Position) bool {
	return p.Line > 0
}

// Before reports whether p comes strictly before other. Positions are
// compared by byte offset: offset is the source of truth, line/column are
// derived from it during scanning.
func Before(p, other Position) bool {
	return p.Offset < other.Offset
}

// After reports whether p comes strictly after other.
func After(p, other Position) bool {
	return p.Offset > other.Offset
}

// Span is a half-open-by-convention range [Start, End] in one source file.
type Span struct {
	Start Position
	End   Position
}

// Merge returns the smallest span covering both s and other. Used by the
// reducer to widen a parent node's span to enclose every child it consumes.
func (s Span) Merge(other Span) Span {
	start, end := s.Start, s.End
	if Before(other.Start, start) {
		start = other.Start
	}
	if After(other.End, end) {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// IsValid reports whether both endpoints are valid and End does not precede Start.
func (s Span) IsValid() bool {
	return IsValid(s.Start) && IsValid(s.End) && !After(s.Start, s.End)
}

// Contains reports whether pos falls within s, inclusive of both endpoints.
func (s Span) Contains(pos Position) bool {
	return !Before(pos, s.Start) && !After(pos, s.End)
}

// Length returns the number of bytes covered by s, or 0 if s is invalid.
func (s Span) Length() int {
	if !s.IsValid() {
		return 0
	}
	return s.End.Offset - s.Start.Offset
}

// String renders "file:line:col" for a single point, or the compact
// "file:line:col1-col2" / "file:line1:col1-line2:col2" forms for a span.
func (s Span) String() string {
	if s.Start == s.End {
		return PositionString(s.Start)
	}
	if s.Start.Line == s.End.Line {
		return s.Start.Filename + ":" + strconv.Itoa(s.Start.Line) + ":" +
			strconv.Itoa(s.Start.Column) + "-" + strconv.Itoa(s.End.Column)
	}
	return PositionString(s.Start) + "-" + strconv.Itoa(s.End.Line) + ":" + strconv.Itoa(s.End.Column)
}

// PositionString renders "file:line:col" for a single position.
func PositionString(p Position) string {
	return p.Filename + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}
