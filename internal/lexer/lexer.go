// Package lexer turns source text into a stream of token.Token values.
//
// The lexer's only job is character-level recognition — no parsing, no type
// checking. It does not evaluate literals beyond decoding them into Go
// values, and it never recovers from a malformed token by guessing; a bad
// character sequence is a Diagnostic, not a best-effort token.
//
// It tracks both a byte offset and a line/column pair per codepoint (not
// per byte), keeps an 8-codepoint lookahead buffer, decodes string and
// character escapes itself, and exposes an ignoreMode toggle that controls
// whether whitespace/newline/comment runs are coalesced into tokens or
// silently dropped.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hassan/veyra/internal/diag"
	"github.com/hassan/veyra/internal/srcpos"
	"github.com/hassan/veyra/internal/token"
)

// lookahead is how many codepoints past the current position the lexer can
// see without consuming them. Eight is more than the longest fixed lookahead
// this grammar needs (operators are at most two characters; number scanning
// peeks at most three codepoints ahead).
const lookahead = 8

// Lexer scans one source file into tokens.
type Lexer struct {
	filename string
	runes    []rune
	offsets  []int // offsets[i] is the byte offset of runes[i]; offsets[len(runes)] is len(source)

	pos  int // index into runes of the next codepoint to consume
	line int
	col  int // 1-based column, counted in codepoints

	// ignoreMode, when true (the default), makes NextToken silently consume
	// whitespace/newline/comment runs instead of returning a token for them.
	// The module loader's parseSource turns it off, because the grammar needs
	// Newline tokens to terminate declarations and statements; cst.SkipTrivia
	// then drops the Whitespace/Comment tokens and keeps the Newlines.
	ignoreMode bool
}

// New creates a Lexer over source, identified by filename in positions.
func New(source, filename string) *Lexer {
	runes := []rune(source)
	offsets := make([]int, len(runes)+1)
	b := 0
	for i, r := range runes {
		offsets[i] = b
		b += utf8.RuneLen(r)
	}
	offsets[len(runes)] = b
	return &Lexer{
		filename:   filename,
		runes:      runes,
		offsets:    offsets,
		pos:        0,
		line:       1,
		col:        1,
		ignoreMode: true,
	}
}

// SetIgnoreMode toggles whitespace/newline/comment token emission.
func (l *Lexer) SetIgnoreMode(on bool) { l.ignoreMode = on }

func (l *Lexer) position() srcpos.Position {
	return srcpos.Position{Filename: l.filename, Offset: l.offsets[l.pos], Line: l.line, Column: l.col}
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.runes) }

// peek returns the codepoint n positions ahead of the current position
// (peek(0) is the next unconsumed codepoint), and whether it exists.
func (l *Lexer) peek(n int) (rune, bool) {
	if n < 0 || n >= lookahead {
		panic("lexer: lookahead out of range")
	}
	i := l.pos + n
	if i >= len(l.runes) {
		return 0, false
	}
	return l.runes[i], true
}

func (l *Lexer) advance() rune {
	r := l.runes[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// NextToken returns the next token, or a Diagnostic if the input at the
// current position cannot be lexed at all.
func (l *Lexer) NextToken() (token.Token, *diag.Diagnostic) {
	for {
		tok, isSep, err := l.scanSeparatorRun()
		if err != nil {
			return token.Token{}, err
		}
		if !isSep {
			break
		}
		if l.ignoreMode {
			continue
		}
		return tok, nil
	}

	start := l.position()
	if l.atEnd() {
		return l.make(token.EOF, start), nil
	}

	r, _ := l.peek(0)

	switch {
	case isIdentStart(r):
		return l.scanIdentifier(start), nil
	case unicode.IsDigit(r):
		return l.scanNumber(start)
	case r == '"':
		return l.scanString(start)
	case r == '\'':
		return l.scanChar(start)
	}

	if tok, ok, err := l.scanDelimiter(start); err != nil {
		return token.Token{}, err
	} else if ok {
		return tok, nil
	}

	if tok, ok, err := l.scanOperator(start); err != nil {
		return token.Token{}, err
	} else if ok {
		return tok, nil
	}

	l.advance()
	return token.Token{}, &diag.Diagnostic{
		Kind:    diag.Lexical,
		File:    l.filename,
		Span:    srcpos.Span{Start: start, End: l.position()},
		Message: fmt.Sprintf("unexpected character %q", r),
	}
}

// scanSeparatorRun consumes one maximal run of comment/whitespace/newline
// material starting at the current position and reports whether it found
// any. If ignoreMode is off, the consumed run is collapsed into a single
// Newline token (if it contained '\n' or ';') or Whitespace token (otherwise);
// comments interrupt a run and are returned as their own Comment token.
func (l *Lexer) scanSeparatorRun() (token.Token, bool, *diag.Diagnostic) {
	start := l.position()
	if r, ok := l.peek(0); ok && r == '/' {
		if r2, ok2 := l.peek(1); ok2 && r2 == '/' {
			l.advance()
			l.advance()
			for {
				r, ok := l.peek(0)
				if !ok || r == '\n' {
					break
				}
				l.advance()
			}
			return l.make(token.Comment, start), true, nil
		}
		if r2, ok2 := l.peek(1); ok2 && r2 == '*' {
			l.advance()
			l.advance()
			closed := false
			for !l.atEnd() {
				if r, _ := l.peek(0); r == '*' {
					if r2, ok := l.peek(1); ok && r2 == '/' {
						l.advance()
						l.advance()
						closed = true
						break
					}
				}
				l.advance()
			}
			if !closed {
				return token.Token{}, false, &diag.Diagnostic{
					Kind: diag.Lexical, File: l.filename,
					Span:    srcpos.Span{Start: start, End: l.position()},
					Message: "unterminated block comment",
				}
			}
			return l.make(token.Comment, start), true, nil
		}
	}

	r, ok := l.peek(0)
	if !ok || !isSeparatorChar(r) {
		return token.Token{}, false, nil
	}

	sawNewlineOrSemi := false
	for {
		r, ok := l.peek(0)
		if !ok || !isSeparatorChar(r) {
			break
		}
		if r == '\n' || r == ';' {
			sawNewlineOrSemi = true
		}
		l.advance()
	}
	kind := token.Whitespace
	if sawNewlineOrSemi {
		kind = token.Newline
	}
	return l.make(kind, start), true, nil
}

func isSeparatorChar(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == ';'
}

func (l *Lexer) make(kind token.Kind, start srcpos.Position) token.Token {
	startIdx := l.runeIndexFor(start)
	return token.Token{
		Kind:     kind,
		Lexeme:   string(l.runes[startIdx:l.pos]),
		Position: start,
		Length:   l.offsets[l.pos] - start.Offset,
	}
}

// runeIndexFor recovers the rune index of a previously captured position by
// binary search over the monotonic offsets table. Positions are always
// taken from l.position() at a point the caller also knows the rune index
// for, but this keeps make() self-contained and usable from any saved start.
func (l *Lexer) runeIndexFor(p srcpos.Position) int {
	lo, hi := 0, len(l.offsets)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if l.offsets[mid] < p.Offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) scanIdentifier(start srcpos.Position) token.Token {
	for {
		r, ok := l.peek(0)
		if !ok || !isIdentCont(r) {
			break
		}
		l.advance()
	}
	tok := l.make(token.Identifier, start)
	tok.Kind = token.LookupKeyword(tok.Lexeme)
	switch tok.Kind {
	case token.True:
		tok.Value = true
	case token.False:
		tok.Value = false
	}
	return tok
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanNumber disambiguates decimal, hex (0x), binary (0b), float and
// scientific-notation literals, including the "0x"/"0b" alone-as-identifier
// edge case: if no hex/binary digit follows the prefix, only the leading
// '0' is consumed as a Number and the prefix letter starts its own
// identifier token on the next call.
func (l *Lexer) scanNumber(start srcpos.Position) (token.Token, *diag.Diagnostic) {
	first := l.advance()

	if first == '0' {
		if r, ok := l.peek(0); ok && (r == 'x' || r == 'X') {
			if next, ok2 := l.peek(1); ok2 && isHexDigit(next) {
				l.advance() // x/X
				for {
					r, ok := l.peek(0)
					if !ok || !(isHexDigit(r) || r == '_') {
						break
					}
					l.advance()
				}
				tok := l.make(token.Number, start)
				v, perr := strconv.ParseInt(strings.ReplaceAll(tok.Lexeme[2:], "_", ""), 16, 64)
				if perr != nil {
					return token.Token{}, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
						Span: srcpos.Span{Start: start, End: l.position()}, Message: "invalid hex literal"}
				}
				tok.Value = v
				return tok, nil
			}
			tok := l.make(token.Number, start)
			tok.Value = int64(0)
			return tok, nil
		}
		if r, ok := l.peek(0); ok && (r == 'b' || r == 'B') {
			if next, ok2 := l.peek(1); ok2 && (next == '0' || next == '1') {
				l.advance() // b/B
				for {
					r, ok := l.peek(0)
					if !ok || !(r == '0' || r == '1' || r == '_') {
						break
					}
					l.advance()
				}
				tok := l.make(token.Number, start)
				v, perr := strconv.ParseInt(strings.ReplaceAll(tok.Lexeme[2:], "_", ""), 2, 64)
				if perr != nil {
					return token.Token{}, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
						Span: srcpos.Span{Start: start, End: l.position()}, Message: "invalid binary literal"}
				}
				tok.Value = v
				return tok, nil
			}
			tok := l.make(token.Number, start)
			tok.Value = int64(0)
			return tok, nil
		}
	}

	for {
		r, ok := l.peek(0)
		if !ok || !(unicode.IsDigit(r) || r == '_') {
			break
		}
		l.advance()
	}

	isFloat := false
	if r, ok := l.peek(0); ok && r == '.' {
		if next, ok2 := l.peek(1); ok2 && unicode.IsDigit(next) {
			isFloat = true
			l.advance() // '.'
			for {
				r, ok := l.peek(0)
				if !ok || !(unicode.IsDigit(r) || r == '_') {
					break
				}
				l.advance()
			}
		}
		// else: a trailing '.' not followed by a digit is not part of the
		// number; it is left for the next token (e.g. a tuple/member access).
	}

	if r, ok := l.peek(0); ok && (r == 'e' || r == 'E') {
		// Only commit to an exponent if digits (optionally signed) follow;
		// "1e" alone is not consumed as a float.
		n := 1
		if sign, ok2 := l.peek(1); ok2 && (sign == '+' || sign == '-') {
			n = 2
		}
		if digit, ok3 := l.peek(n); ok3 && unicode.IsDigit(digit) {
			isFloat = true
			l.advance() // e/E
			if n == 2 {
				l.advance() // sign
			}
			for {
				r, ok := l.peek(0)
				if !ok || !unicode.IsDigit(r) {
					break
				}
				l.advance()
			}
		}
	}

	tok := l.make(token.Number, start)
	clean := strings.ReplaceAll(tok.Lexeme, "_", "")
	if isFloat {
		v, perr := strconv.ParseFloat(clean, 64)
		if perr != nil {
			return token.Token{}, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
				Span: srcpos.Span{Start: start, End: l.position()}, Message: "invalid float literal"}
		}
		tok.Value = v
	} else {
		v, perr := strconv.ParseInt(clean, 10, 64)
		if perr != nil {
			return token.Token{}, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
				Span: srcpos.Span{Start: start, End: l.position()}, Message: "invalid integer literal"}
		}
		tok.Value = v
	}
	return tok, nil
}

func (l *Lexer) scanString(start srcpos.Position) (token.Token, *diag.Diagnostic) {
	l.advance() // opening quote
	var decoded strings.Builder
	for {
		r, ok := l.peek(0)
		if !ok {
			return token.Token{}, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
				Span: srcpos.Span{Start: start, End: l.position()}, Message: "unterminated string literal"}
		}
		if r == '"' {
			l.advance()
			break
		}
		if r == '\n' {
			return token.Token{}, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
				Span: srcpos.Span{Start: start, End: l.position()}, Message: "newline in string literal"}
		}
		if r == '\\' {
			l.advance()
			decodedRune, derr := l.scanEscape(start)
			if derr != nil {
				return token.Token{}, derr
			}
			decoded.WriteRune(decodedRune)
			continue
		}
		decoded.WriteRune(l.advance())
	}
	tok := l.make(token.String, start)
	tok.Value = decoded.String()
	return tok, nil
}

func (l *Lexer) scanChar(start srcpos.Position) (token.Token, *diag.Diagnostic) {
	l.advance() // opening quote
	var value rune
	r, ok := l.peek(0)
	if !ok {
		return token.Token{}, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
			Span: srcpos.Span{Start: start, End: l.position()}, Message: "unterminated character literal"}
	}
	if r == '\\' {
		l.advance()
		decodedRune, derr := l.scanEscape(start)
		if derr != nil {
			return token.Token{}, derr
		}
		value = decodedRune
	} else {
		value = l.advance()
	}
	closing, ok := l.peek(0)
	if !ok || closing != '\'' {
		return token.Token{}, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
			Span: srcpos.Span{Start: start, End: l.position()}, Message: "character literal must contain exactly one character"}
	}
	l.advance()
	tok := l.make(token.Char, start)
	tok.Value = value
	return tok, nil
}

// scanEscape decodes one escape sequence immediately after a consumed '\\'
// and returns the decoded rune.
func (l *Lexer) scanEscape(start srcpos.Position) (rune, *diag.Diagnostic) {
	r, ok := l.peek(0)
	if !ok {
		return 0, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
			Span: srcpos.Span{Start: start, End: l.position()}, Message: "unterminated escape sequence"}
	}
	switch r {
	case 'n':
		l.advance()
		return '\n', nil
	case 't':
		l.advance()
		return '\t', nil
	case 'r':
		l.advance()
		return '\r', nil
	case '\\':
		l.advance()
		return '\\', nil
	case '\'':
		l.advance()
		return '\'', nil
	case '"':
		l.advance()
		return '"', nil
	case '0':
		l.advance()
		return 0, nil
	case 'x':
		l.advance()
		var hex strings.Builder
		for i := 0; i < 2; i++ {
			d, ok := l.peek(0)
			if !ok || !isHexDigit(d) {
				return 0, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
					Span: srcpos.Span{Start: start, End: l.position()}, Message: "\\x escape needs two hex digits"}
			}
			hex.WriteRune(l.advance())
		}
		v, _ := strconv.ParseInt(hex.String(), 16, 32)
		return rune(v), nil
	case 'u':
		l.advance()
		if next, ok := l.peek(0); ok && next == '{' {
			l.advance()
			var hex strings.Builder
			for {
				d, ok := l.peek(0)
				if !ok {
					return 0, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
						Span: srcpos.Span{Start: start, End: l.position()}, Message: "unterminated \\u{...} escape"}
				}
				if d == '}' {
					l.advance()
					break
				}
				if !isHexDigit(d) || hex.Len() >= 6 {
					return 0, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
						Span: srcpos.Span{Start: start, End: l.position()}, Message: "invalid \\u{...} escape"}
				}
				hex.WriteRune(l.advance())
			}
			if hex.Len() == 0 {
				return 0, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
					Span: srcpos.Span{Start: start, End: l.position()}, Message: "\\u{} escape needs at least one hex digit"}
			}
			v, _ := strconv.ParseInt(hex.String(), 16, 32)
			return rune(v), nil
		}
		var hex strings.Builder
		for i := 0; i < 4; i++ {
			d, ok := l.peek(0)
			if !ok || !isHexDigit(d) {
				return 0, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
					Span: srcpos.Span{Start: start, End: l.position()}, Message: "\\uHHHH escape needs four hex digits"}
			}
			hex.WriteRune(l.advance())
		}
		v, _ := strconv.ParseInt(hex.String(), 16, 32)
		return rune(v), nil
	default:
		return 0, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
			Span: srcpos.Span{Start: start, End: l.position()}, Message: fmt.Sprintf("unknown escape sequence \\%c", r)}
	}
}

func (l *Lexer) scanDelimiter(start srcpos.Position) (token.Token, bool, *diag.Diagnostic) {
	r, _ := l.peek(0)
	var kind token.Kind
	switch r {
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case ',':
		kind = token.Comma
	case ':':
		kind = token.Colon
	default:
		return token.Token{}, false, nil
	}
	l.advance()
	return l.make(kind, start), true, nil
}

// scanOperator consumes one operator token from the fixed operator
// character set, greedily matching the longest recognized spelling.
//
// A lone '-' always lexes as a single Minus token, whether or not it is
// immediately followed by a digit: negation is not a lexer concern. The
// parser builds a UnaryExpr out of Minus-followed-by-operand, and the
// resolver's unary typing rule (ResolveUnary) gives it the negated value's
// type — there is no separate signed-literal token.
func (l *Lexer) scanOperator(start srcpos.Position) (token.Token, bool, *diag.Diagnostic) {
	r, ok := l.peek(0)
	if !ok {
		return token.Token{}, false, nil
	}

	two := func(second rune, twoKind, oneKind token.Kind) (token.Token, bool, *diag.Diagnostic) {
		l.advance()
		if second != 0 {
			if n, ok := l.peek(0); ok && n == second {
				l.advance()
				return l.make(twoKind, start), true, nil
			}
		}
		return l.make(oneKind, start), true, nil
	}

	switch r {
	case '.':
		l.advance()
		if n, ok := l.peek(0); ok && n == '.' {
			return token.Token{}, false, &diag.Diagnostic{Kind: diag.Lexical, File: l.filename,
				Span: srcpos.Span{Start: start, End: l.position()}, Message: "'..' and '...' are not recognized operators"}
		}
		return l.make(token.Dot, start), true, nil
	case '+':
		return two(0, 0, token.Plus)
	case '-':
		l.advance()
		if n, ok := l.peek(0); ok && n == '>' {
			l.advance()
			return l.make(token.Arrow, start), true, nil
		}
		return l.make(token.Minus, start), true, nil
	case '*':
		return two(0, 0, token.Star)
	case '/':
		return two(0, 0, token.Slash)
	case '%':
		return two(0, 0, token.Percent)
	case '=':
		l.advance()
		if n, ok := l.peek(0); ok {
			if n == '=' {
				l.advance()
				return l.make(token.Eq, start), true, nil
			}
			if n == '>' {
				l.advance()
				return l.make(token.FatArrow, start), true, nil
			}
		}
		return l.make(token.Assign, start), true, nil
	case '!':
		return two('=', token.NotEq, token.Bang)
	case '<':
		l.advance()
		if n, ok := l.peek(0); ok {
			if n == '=' {
				l.advance()
				return l.make(token.LessEq, start), true, nil
			}
			if n == '<' {
				l.advance()
				return l.make(token.Shl, start), true, nil
			}
		}
		// A bare '<' is returned as-is; the parser's definite-commit rule
		// decides whether this opens a type-argument list or is the
		// comparison operator.
		return l.make(token.Less, start), true, nil
	case '>':
		l.advance()
		if n, ok := l.peek(0); ok {
			if n == '=' {
				l.advance()
				return l.make(token.GreaterEq, start), true, nil
			}
			if n == '>' {
				l.advance()
				return l.make(token.Shr, start), true, nil
			}
		}
		return l.make(token.Greater, start), true, nil
	case '&':
		return two('&', token.AndAnd, token.Amp)
	case '|':
		return two('|', token.OrOr, token.Pipe)
	case '^':
		return two(0, 0, token.Caret)
	case '~':
		return two(0, 0, token.Tilde)
	case '$':
		return two(0, 0, token.Apply)
	}
	return token.Token{}, false, nil
}
