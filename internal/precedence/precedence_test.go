package precedence

import (
	"testing"

	"github.com/hassan/veyra/internal/ast"
	"github.com/hassan/veyra/internal/srcpos"
)

func ident(name string) *ast.IdentifierExpr { return &ast.IdentifierExpr{Name: name} }

func link(op string, right ast.Expr) ast.OperatorLink {
	return ast.OperatorLink{Operator: op, Right: right}
}

func TestPrecedenceOrdering(t *testing.T) {
	table := NewTable()
	levels := map[string]int{
		"=": 0, "$": 1, "||": 2, "&&": 3,
		"==": 4, "!=": 4, "<": 4, ">": 4, "<=": 4, ">=": 4,
		"+": 5, "-": 5, "*": 6, "/": 6, "%": 6, "&": 7, "|": 7, "^": 7,
	}
	for symbol, want := range levels {
		info, ok := table.lookup(symbol)
		if !ok {
			t.Fatalf("operator %q missing from table", symbol)
		}
		if info.Precedence != want {
			t.Errorf("%q precedence = %d, want %d", symbol, info.Precedence, want)
		}
	}
	if low, _ := table.lookup("="); true {
		if high, _ := table.lookup("*"); low.Precedence >= high.Precedence {
			t.Error("assignment should bind looser than multiplication")
		}
	}
}

func TestResolve_ArithmeticRearrangement(t *testing.T) {
	// 1 + 2 * 3 + 4  =>  ((1 + (2 * 3)) + 4)
	spine := &ast.FlatBinaryExpr{
		First: ident("a"),
		Rest: []ast.OperatorLink{
			link("+", ident("b")),
			link("*", ident("c")),
			link("+", ident("d")),
		},
	}
	file := &ast.File{Declarations: []ast.Decl{&ast.ConstDecl{Name: "r", Initializer: spine}}, Locations: map[ast.Node]srcpos.Span{}}
	bag := Resolve(file, NewTable())
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	top, ok := file.Declarations[0].(*ast.ConstDecl).Initializer.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected top-level BinaryExpr, got %T", file.Declarations[0].(*ast.ConstDecl).Initializer)
	}
	if top.Operator != "+" {
		t.Fatalf("top operator = %q, want +", top.Operator)
	}
	right, ok := top.Right.(*ast.IdentifierExpr)
	if !ok || right.Name != "d" {
		t.Fatalf("expected right operand d, got %#v", top.Right)
	}
	left, ok := top.Left.(*ast.BinaryExpr)
	if !ok || left.Operator != "+" {
		t.Fatalf("expected left subtree '+', got %#v", top.Left)
	}
	innerRight, ok := left.Right.(*ast.BinaryExpr)
	if !ok || innerRight.Operator != "*" {
		t.Fatalf("expected nested '*' as left.Right, got %#v", left.Right)
	}
}

func TestResolve_RightAssociativeChain(t *testing.T) {
	// a && b && c  =>  (a && (b && c))
	spine := &ast.FlatBinaryExpr{
		First: ident("a"),
		Rest:  []ast.OperatorLink{link("&&", ident("b")), link("&&", ident("c"))},
	}
	file := &ast.File{Declarations: []ast.Decl{&ast.ConstDecl{Name: "r", Initializer: spine}}, Locations: map[ast.Node]srcpos.Span{}}
	bag := Resolve(file, NewTable())
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	top := file.Declarations[0].(*ast.ConstDecl).Initializer.(*ast.BinaryExpr)
	if top.Operator != "&&" {
		t.Fatalf("top operator = %q, want &&", top.Operator)
	}
	if _, ok := top.Left.(*ast.IdentifierExpr); !ok {
		t.Fatalf("expected left operand to be the bare identifier a, got %#v", top.Left)
	}
	if _, ok := top.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected right subtree to be the nested (b && c), got %#v", top.Right)
	}
}

func TestResolve_EqualityChainNoAssociativityError(t *testing.T) {
	// 1 == 2 == true: a single non-associative operator repeated must not
	// itself raise a conflicting-associativity diagnostic.
	spine := &ast.FlatBinaryExpr{
		First: ident("a"),
		Rest:  []ast.OperatorLink{link("==", ident("b")), link("==", ident("c"))},
	}
	file := &ast.File{Declarations: []ast.Decl{&ast.ConstDecl{Name: "r", Initializer: spine}}, Locations: map[ast.Node]srcpos.Span{}}
	bag := Resolve(file, NewTable())
	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics for a repeated non-associative operator, got %v", bag.Items())
	}
}

func TestResolve_Assignment(t *testing.T) {
	spine := &ast.FlatBinaryExpr{First: ident("x"), Rest: []ast.OperatorLink{link("=", ident("y"))}}
	file := &ast.File{Declarations: []ast.Decl{&ast.ConstDecl{Name: "r", Initializer: spine}}, Locations: map[ast.Node]srcpos.Span{}}
	bag := Resolve(file, NewTable())
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	assign, ok := file.Declarations[0].(*ast.ConstDecl).Initializer.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr, got %T", file.Declarations[0].(*ast.ConstDecl).Initializer)
	}
	if _, ok := assign.Target.(*ast.IdentifierExpr); !ok {
		t.Fatalf("expected identifier target, got %#v", assign.Target)
	}
}

func TestRegister_RejectsReservedLevels(t *testing.T) {
	table := NewTable()
	if err := table.Register("<+>", 5, AssocLeft); err == nil {
		t.Fatal("expected an error registering a user operator at a built-in level")
	}
	if err := table.Register("<+>", 8, AssocLeft); err != nil {
		t.Fatalf("unexpected error registering at level 8: %v", err)
	}
	info, ok := table.lookup("<+>")
	if !ok || info.Precedence != 8 {
		t.Fatalf("expected <+> registered at level 8, got %#v", info)
	}
}
