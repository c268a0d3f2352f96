package lexer

import (
	"testing"

	"github.com/hassan/veyra/internal/token"
)

func TestLexer_Keywords(t *testing.T) {
	source := "import export from as type const func struct union true false"
	l := New(source, "test.src")

	expected := []token.Kind{
		token.Import, token.Export, token.From, token.As, token.Type,
		token.Const, token.Func, token.Struct, token.Union,
		token.True, token.False, token.EOF,
	}

	for i, want := range expected {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Kind != want {
			t.Errorf("token %d: expected %v, got %v", i, want, tok.Kind)
		}
	}
}

func TestLexer_Identifiers(t *testing.T) {
	source := "foo bar _temp myVar123"
	l := New(source, "test.src")

	for _, want := range []string{"foo", "bar", "_temp", "myVar123"} {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.Kind != token.Identifier {
			t.Errorf("expected Identifier, got %v", tok.Kind)
		}
		if tok.Lexeme != want {
			t.Errorf("expected %q, got %q", want, tok.Lexeme)
		}
	}
}

func TestLexer_Numbers(t *testing.T) {
	tests := []struct {
		source string
		lexeme string
		value  any
	}{
		{"42", "42", int64(42)},
		{"3.14", "3.14", 3.14},
		{"1e10", "1e10", 1e10},
		{"2.5e-3", "2.5e-3", 2.5e-3},
		{"0xFF", "0xFF", int64(255)},
		{"0b101", "0b101", int64(5)},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			l := New(tt.source, "test.src")
			tok, err := l.NextToken()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tok.Kind != token.Number {
				t.Errorf("expected Number, got %v", tok.Kind)
			}
			if tok.Lexeme != tt.lexeme {
				t.Errorf("expected lexeme %q, got %q", tt.lexeme, tok.Lexeme)
			}
			if tok.Value != tt.value {
				t.Errorf("expected value %v, got %v", tt.value, tok.Value)
			}
		})
	}
}

// TestLexer_ZeroPrefixAlone covers the "0x"/"0b" alone-as-identifier edge
// case: with no hex/binary digit following the prefix letter, only the
// leading '0' is a Number, and the prefix starts its own identifier.
func TestLexer_ZeroPrefixAlone(t *testing.T) {
	for _, source := range []string{"0x", "0b"} {
		t.Run(source, func(t *testing.T) {
			l := New(source, "test.src")
			num, err := l.NextToken()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if num.Kind != token.Number || num.Lexeme != "0" {
				t.Fatalf("expected Number(0), got %v(%q)", num.Kind, num.Lexeme)
			}
			ident, err := l.NextToken()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ident.Kind != token.Identifier {
				t.Errorf("expected Identifier, got %v", ident.Kind)
			}
		})
	}
}

func TestLexer_TrailingDotIsNotPartOfNumber(t *testing.T) {
	l := New("123.", "test.src")
	num, err := l.NextToken()
	if err != nil || num.Kind != token.Number || num.Lexeme != "123" {
		t.Fatalf("expected Number(123), got %v %q err=%v", num.Kind, num.Lexeme, err)
	}
	dot, err := l.NextToken()
	if err != nil || dot.Kind != token.Dot {
		t.Fatalf("expected Dot, got %v err=%v", dot.Kind, err)
	}
}

func TestLexer_Strings(t *testing.T) {
	source := `"hello" "world\n" "with\"quotes" "\x41\u{1F600}B"`
	l := New(source, "test.src")

	want := []string{"hello", "world\n", "with\"quotes", "A\U0001F600B"}
	for i, w := range want {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Kind != token.String {
			t.Fatalf("token %d: expected String, got %v", i, tok.Kind)
		}
		if tok.Value != w {
			t.Errorf("token %d: expected %q, got %q", i, w, tok.Value)
		}
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	l := New(`"hello`, "test.src")
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected lexical error for unterminated string")
	}
}

func TestLexer_CharLiteral(t *testing.T) {
	l := New(`'a' '\n' '\t'`, "test.src")
	want := []rune{'a', '\n', '\t'}
	for i, w := range want {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Kind != token.Char || tok.Value != w {
			t.Errorf("token %d: expected Char(%q), got %v(%v)", i, w, tok.Kind, tok.Value)
		}
	}
}

func TestLexer_OperatorDisambiguation(t *testing.T) {
	tests := []struct {
		source string
		kinds  []token.Kind
	}{
		{"< <= <<", []token.Kind{token.Less, token.LessEq, token.Shl, token.EOF}},
		{"> >= >>", []token.Kind{token.Greater, token.GreaterEq, token.Shr, token.EOF}},
		{"= == => -> $", []token.Kind{token.Assign, token.Eq, token.FatArrow, token.Arrow, token.Apply, token.EOF}},
		{"&& & || |", []token.Kind{token.AndAnd, token.Amp, token.OrOr, token.Pipe, token.EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			l := New(tt.source, "test.src")
			for i, want := range tt.kinds {
				tok, err := l.NextToken()
				if err != nil {
					t.Fatalf("token %d: unexpected error: %v", i, err)
				}
				if tok.Kind != want {
					t.Errorf("token %d: expected %v, got %v", i, want, tok.Kind)
				}
			}
		})
	}
}

func TestLexer_DotDotIsRejected(t *testing.T) {
	l := New("1..2", "test.src")
	if _, err := l.NextToken(); err != nil {
		t.Fatalf("unexpected error on number: %v", err)
	}
	if _, err := l.NextToken(); err == nil {
		t.Fatal("expected lexical error for '..'")
	}
}

func TestLexer_IgnoreModeDropsWhitespace(t *testing.T) {
	l := New("a\n\nb ; c", "test.src")
	var kinds []token.Kind
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	want := []token.Kind{token.Identifier, token.Identifier, token.Identifier, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(kinds), kinds)
	}
	for i, k := range kinds {
		if k != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], k)
		}
	}
}

// TestLexer_NotIgnoreModeCoalescesNewlines exercises the rule that a
// separator run containing '\n' or ';' becomes one Newline token, otherwise
// one Whitespace token, and EOF is always the final token produced.
func TestLexer_NotIgnoreModeCoalescesNewlines(t *testing.T) {
	l := New("a  b\nc;d", "test.src")
	l.SetIgnoreMode(false)
	var kinds []token.Kind
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	want := []token.Kind{
		token.Identifier, token.Whitespace, token.Identifier, token.Newline,
		token.Identifier, token.Newline, token.Identifier, token.EOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i, k := range kinds {
		if k != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], k)
		}
	}
}
