// Package token defines the vocabulary the lexer produces and the parser
// consumes: the Kind enum, the keyword table, and the Token value itself.
package token

import "github.com/hassan/veyra/internal/srcpos"

// Kind identifies the lexical category of a Token.
//
// Kinds are grouped into contiguous ranges (special, literal, keyword,
// operator, delimiter) bounded by sentinel markers, so IsKeyword/IsOperator/
// IsLiteral/IsDelimiter are each one range check instead of a long switch.
type Kind int

const (
	EOF Kind = iota
	Invalid
	Comment

	literalBegin
	Number
	String
	Char
	Identifier
	literalEnd

	keywordBegin
	Import
	Export
	From
	As
	Type
	Const
	Func
	Struct
	Union
	True
	False
	If
	Then
	Else
	Let
	In
	Break
	Continue
	Do
	For
	Foreach
	Return
	Throw
	Try
	Catch
	Finally
	While
	keywordEnd

	operatorBegin
	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /
	Percent  // %
	Assign   // =
	Eq       // ==
	NotEq    // !=
	Less     // <
	LessEq   // <=
	Greater  // >
	GreaterEq// >=
	AndAnd   // &&
	OrOr     // ||
	Bang     // !
	Amp      // &
	Pipe     // |
	Caret    // ^
	Tilde    // ~
	Shl      // <<
	Shr      // >>
	Arrow    // ->
	FatArrow // =>
	Apply    // $ (function application operator, precedence level 1)
	operatorEnd

	delimiterBegin
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Comma     // ,
	Dot       // .
	Colon     // :
	Semicolon // ;
	Newline
	Whitespace
	delimiterEnd
)

var names = map[Kind]string{
	EOF: "EOF", Invalid: "INVALID", Comment: "COMMENT",
	Number: "NUMBER", String: "STRING", Char: "CHAR", Identifier: "IDENTIFIER",
	Import: "import", Export: "export", From: "from", As: "as", Type: "type",
	Const: "const", Func: "func", Struct: "struct", Union: "union",
	True: "true", False: "false",
	If: "if", Then: "then", Else: "else", Let: "let", In: "in",
	Break: "break", Continue: "continue", Do: "do", For: "for", Foreach: "foreach",
	Return: "return", Throw: "throw", Try: "try", Catch: "catch", Finally: "finally",
	While: "while",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Assign: "=", Eq: "==", NotEq: "!=", Less: "<", LessEq: "<=",
	Greater: ">", GreaterEq: ">=", AndAnd: "&&", OrOr: "||", Bang: "!",
	Amp: "&", Pipe: "|", Caret: "^", Tilde: "~", Shl: "<<", Shr: ">>",
	Arrow: "->", FatArrow: "=>", Apply: "$",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]", Comma: ",", Dot: ".", Colon: ":",
	Semicolon: ";", Newline: "NEWLINE", Whitespace: "WHITESPACE",
}

// String returns the canonical spelling (for operators/keywords/delimiters)
// or the category name (for everything else).
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsLiteral reports whether k is one of the literal kinds (number, string,
// char, identifier). The reducer uses this to assert that a cst leaf it is
// about to fold into a literal node actually came from the lexer's literal
// range.
func (k Kind) IsLiteral() bool { return k > literalBegin && k < literalEnd }

// IsKeyword reports whether k is a reserved word. The reducer uses this to
// assert that a true/false leaf actually came from the keyword range before
// folding it into a BoolLit.
func (k Kind) IsKeyword() bool { return k > keywordBegin && k < keywordEnd }

// IsOperator reports whether k is an operator symbol. The reducer uses this
// to assert that the token sitting in an operator-link or unary-expr slot
// really is an operator before it trusts the token's lexeme as the
// expression's operator spelling.
func (k Kind) IsOperator() bool { return k > operatorBegin && k < operatorEnd }

// IsDelimiter reports whether k is a structural delimiter, including the
// coalesced Newline/Whitespace kinds the lexer emits when ignoreMode is off.
func (k Kind) IsDelimiter() bool { return k > delimiterBegin && k < delimiterEnd }

// Keywords maps each reserved spelling to its Kind, built once from the
// keyword range above so the table and the enum can never drift apart.
var Keywords = func() map[string]Kind {
	m := make(map[string]Kind, keywordEnd-keywordBegin-1)
	for k := keywordBegin + 1; k < keywordEnd; k++ {
		m[names[k]] = k
	}
	return m
}()

// LookupKeyword returns the keyword Kind for ident, and Identifier if ident
// is not reserved.
func LookupKeyword(ident string) Kind {
	if k, ok := Keywords[ident]; ok {
		return k
	}
	return Identifier
}

// Token is one lexeme with its source span and (for literals) decoded value.
//
// Value holds the decoded literal payload: int64/float64 for Number, the
// escape-decoded contents for String and Char. Lexeme always holds the raw
// source text, decoded or not, so error messages can quote exactly what the
// user wrote.
type Token struct {
	Kind     Kind
	Lexeme   string
	Value    any
	Position srcpos.Position
	Length   int // source bytes consumed
}

// Span returns the source range covered by this token.
func (t Token) Span() srcpos.Span {
	end := t.Position
	end.Offset += t.Length
	end.Column += runeCount(t.Lexeme)
	return srcpos.Span{Start: t.Position, End: end}
}

func (t Token) String() string {
	return t.Kind.String() + "(" + t.Lexeme + ") at " + srcpos.PositionString(t.Position)
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
