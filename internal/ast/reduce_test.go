package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hassan/veyra/internal/cst"
	"github.com/hassan/veyra/internal/lexer"
	"github.com/hassan/veyra/internal/token"
)

// parse lexes and parses src (without running the precedence resolver or
// module loader), returning the reduced File — enough to exercise Reduce in
// isolation, the way internal/module's own parseSource does internally.
func parse(t *testing.T, src string) *File {
	t.Helper()
	lx := lexer.New(src, "test.vey")
	lx.SetIgnoreMode(false)
	var toks []token.Token
	for {
		tok, err := lx.NextToken()
		require.Nil(t, err, "%v", err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	state := cst.NewState(cst.SkipTrivia(toks), "test.vey")
	result := cst.Program()(state)
	require.True(t, result.OK, "%v", result.Err)
	return Reduce(result.Node, "test.vey")
}

// TestReduce_SelfSpanCoversChildren verifies that parsing then reducing
// preserves the "self" location: for a top-level function declaration, the
// resulting AST node's span starts at 'func' and covers the span of its
// body expression.
func TestReduce_SelfSpanCoversChildren(t *testing.T) {
	file := parse(t, "func add(a: int, b: int) -> int = a + b\n")
	require.Len(t, file.Declarations, 1)
	fn, ok := file.Declarations[0].(*FuncDecl)
	require.True(t, ok)

	self := fn.Span()
	require.True(t, self.IsValid())
	require.Equal(t, 1, self.Start.Line)
	require.Equal(t, 1, self.Start.Column, "span must start at the 'func' keyword")

	bodySpan := fn.Body.Span()
	require.False(t, self.Start.Offset > bodySpan.Start.Offset, "declaration span must start no later than its body")
	require.False(t, self.End.Offset < bodySpan.End.Offset, "declaration span must end no earlier than its body")
}

// TestReduce_EmptyBlockCollapsesToNoop verifies that block statements
// silently discard nested Noops and collapse to a single Noop when empty.
func TestReduce_EmptyBlockCollapsesToNoop(t *testing.T) {
	file := parse(t, "func f() -> void = {\n}\n")
	fn := file.Declarations[0].(*FuncDecl)
	block, ok := fn.Body.(*BlockExpr)
	require.True(t, ok)
	require.Len(t, block.Block.Stmts, 1)
	_, isNoop := block.Block.Stmts[0].(*NoopStmt)
	require.True(t, isNoop)
}

// TestReduce_BlankLinesInsideBlockAreDiscardedAsNoops grounds the same rule
// for blank lines interleaved with real statements: the reduced block must
// contain only the two real statements, not a Noop for the blank line.
func TestReduce_BlankLinesInsideBlockAreDiscardedAsNoops(t *testing.T) {
	file := parse(t, "func f() -> int = {\n\n  let x: int = 1\n\n  return x\n}\n")
	fn := file.Declarations[0].(*FuncDecl)
	block := fn.Body.(*BlockExpr)
	require.Len(t, block.Block.Stmts, 2)
}

// TestReduce_IsIdempotent verifies that reducing the same parsed source
// twice yields the same declaration count and node shapes.
func TestReduce_IsIdempotent(t *testing.T) {
	src := "const x = 1 + 2 * 3\n"
	first := parse(t, src)
	second := parse(t, src)
	require.Equal(t, len(first.Declarations), len(second.Declarations))
	require.IsType(t, first.Declarations[0], second.Declarations[0])
}
