// Package precedence implements the post-parse Shunting-yard pass: it walks
// an ast.File and replaces every flat operator spine the reducer built with
// a properly associated binary-expression tree.
//
// The parser only ever builds a left-associative flat spine
// (ast.FlatBinaryExpr); Resolve is the one place that turns a spine into a
// properly shaped ast.BinaryExpr/ast.AssignExpr tree, following the
// classic operator-precedence (Shunting yard) algorithm over an explicit
// operand/operator stack.
package precedence

import (
	"fmt"

	"github.com/hassan/veyra/internal/ast"
	"github.com/hassan/veyra/internal/diag"
	"github.com/hassan/veyra/internal/srcpos"
)

// Associativity describes how a chain of same-precedence operators
// associates.
type Associativity int

const (
	// AssocNone marks an operator with no associativity of its own: it never
	// raises an associativity conflict, and a chain of them folds left.
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
)

// OperatorInfo is one entry in the precedence table: a symbol's binding
// power and associativity.
type OperatorInfo struct {
	Symbol        string
	Precedence    int
	Associativity Associativity
}

// Table holds the registered operators, keyed by symbol. Built-in operators
// occupy precedence levels 0-7; levels 8 and 9 are reserved for user-defined
// operators registered at construction time via Register.
type Table struct {
	ops map[string]OperatorInfo
}

// NewTable builds the built-in operator table: levels 0-7, higher binds
// tighter, leaving 8-9 reserved for user-defined operators.
func NewTable() *Table {
	t := &Table{ops: make(map[string]OperatorInfo)}
	level := func(prec int, assoc Associativity, symbols ...string) {
		for _, s := range symbols {
			t.ops[s] = OperatorInfo{Symbol: s, Precedence: prec, Associativity: assoc}
		}
	}
	level(0, AssocLeft, "=")
	level(1, AssocRight, "$")
	level(2, AssocRight, "||")
	level(3, AssocRight, "&&")
	level(4, AssocNone, "==", "!=", "<", ">", "<=", ">=")
	level(5, AssocLeft, "+", "-")
	level(6, AssocLeft, "*", "/", "%")
	level(7, AssocLeft, "&", "|", "^")
	return t
}

// Register adds a user-defined infix operator at precedence level 8 or 9 and
// returns an error for any other level. It does not check whether the symbol
// is already registered: registering a symbol again replaces its entry.
func (t *Table) Register(symbol string, precedence int, assoc Associativity) error {
	if precedence < 8 || precedence > 9 {
		return fmt.Errorf("precedence: user-defined operator %q must register at level 8 or 9, got %d", symbol, precedence)
	}
	t.ops[symbol] = OperatorInfo{Symbol: symbol, Precedence: precedence, Associativity: assoc}
	return nil
}

func (t *Table) lookup(symbol string) (OperatorInfo, bool) {
	op, ok := t.ops[symbol]
	return op, ok
}

// Resolve walks every declaration in file and replaces each
// ast.FlatBinaryExpr it finds (at any nesting depth) with a properly
// associated ast.BinaryExpr/ast.AssignExpr tree, recording spans for any
// newly built node in file.Locations. Diagnostics accumulate in the
// returned Bag instead of aborting the walk, so one malformed spine doesn't
// hide errors in the rest of the file.
func Resolve(file *ast.File, table *Table) *diag.Bag {
	r := &resolver{table: table, file: file, bag: &diag.Bag{}}
	for i, d := range file.Declarations {
		file.Declarations[i] = r.decl(d)
	}
	return r.bag
}

type resolver struct {
	table *Table
	file  *ast.File
	bag   *diag.Bag
}

func (r *resolver) span(n ast.Node) srcpos.Span {
	if s, ok := r.file.Locations[n]; ok {
		return s
	}
	return n.Span()
}

func (r *resolver) record(n ast.Node) {
	r.file.Locations[n] = n.Span()
}

func (r *resolver) decl(d ast.Decl) ast.Decl {
	switch v := d.(type) {
	case *ast.ConstDecl:
		v.Initializer = r.expr(v.Initializer)
		return v
	case *ast.FuncDecl:
		v.Body = r.expr(v.Body)
		return v
	case *ast.ExportDecl:
		if v.Inline != nil {
			v.Inline = r.decl(v.Inline)
		}
		return v
	default:
		return d
	}
}

// expr recurses into every expression that can contain a FlatBinaryExpr,
// rewriting it in place, and resolves the spine itself when found.
func (r *resolver) expr(e ast.Expr) ast.Expr {
	switch v := e.(type) {
	case *ast.FlatBinaryExpr:
		return r.resolveSpine(v)
	case *ast.UnaryExpr:
		v.Operand = r.expr(v.Operand)
		return v
	case *ast.CallExpr:
		v.Callee = r.expr(v.Callee)
		for i := range v.Args {
			v.Args[i] = r.expr(v.Args[i])
		}
		return v
	case *ast.IndexExpr:
		v.Object = r.expr(v.Object)
		v.Index = r.expr(v.Index)
		return v
	case *ast.MemberExpr:
		v.Object = r.expr(v.Object)
		return v
	case *ast.ArrayLit:
		for i := range v.Elements {
			v.Elements[i] = r.expr(v.Elements[i])
		}
		return v
	case *ast.TupleLit:
		for i := range v.Elements {
			v.Elements[i] = r.expr(v.Elements[i])
		}
		return v
	case *ast.StructLit:
		for i := range v.Fields {
			v.Fields[i].Value = r.expr(v.Fields[i].Value)
		}
		return v
	case *ast.GroupExpr:
		v.Inner = r.expr(v.Inner)
		return v
	case *ast.IfExpr:
		v.Condition = r.expr(v.Condition)
		v.Then = r.expr(v.Then)
		v.Else = r.expr(v.Else)
		return v
	case *ast.LetExpr:
		v.Value = r.expr(v.Value)
		v.Body = r.expr(v.Body)
		return v
	case *ast.VarDeclExpr:
		v.Value = r.expr(v.Value)
		return v
	case *ast.LambdaExpr:
		v.Body = r.expr(v.Body)
		return v
	case *ast.BlockExpr:
		r.block(v.Block)
		return v
	default:
		return e
	}
}

// block walks every statement in b, rewriting each spine its expressions
// contain. Unlike expr, statements mutate in place rather than returning a
// replacement — none of them are themselves ever a FlatBinaryExpr.
func (r *resolver) block(b *ast.BlockStmt) {
	for _, s := range b.Stmts {
		r.stmt(s)
	}
}

func (r *resolver) stmt(s ast.Stmt) {
	switch v := s.(type) {
	case *ast.BlockStmt:
		r.block(v)
	case *ast.ReturnStmt:
		if v.Value != nil {
			v.Value = r.expr(v.Value)
		}
	case *ast.ThrowStmt:
		v.Value = r.expr(v.Value)
	case *ast.WhileStmt:
		v.Cond = r.expr(v.Cond)
		r.block(v.Body)
	case *ast.DoWhileStmt:
		r.block(v.Body)
		v.Cond = r.expr(v.Cond)
	case *ast.ForStmt:
		v.Iterable = r.expr(v.Iterable)
		r.block(v.Body)
	case *ast.TryCatchStmt:
		r.block(v.Try)
		r.block(v.Catch)
		if v.Finally != nil {
			r.block(v.Finally)
		}
	case *ast.ExprStmt:
		v.Expr = r.expr(v.Expr)
	}
}

// operatorFrame is one entry of the Shunting-yard operator stack; the operand
// stack is a plain []ast.Expr.
type operatorFrame struct {
	info OperatorInfo
	span srcpos.Span
}

// resolveSpine runs the Shunting-yard algorithm over an already-flattened
// spine (the reducer produced the flat form): push operands, pop-and-fold
// operators by precedence and associativity, then drain the operator stack.
func (r *resolver) resolveSpine(flat *ast.FlatBinaryExpr) ast.Expr {
	operands := []ast.Expr{r.expr(flat.First)}
	var operators []operatorFrame

	pushOperand := func(e ast.Expr) { operands = append(operands, e) }

	popFold := func() {
		n := len(operators)
		op := operators[n-1]
		operators = operators[:n-1]
		right := operands[len(operands)-1]
		left := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		pushOperand(r.fold(op, left, right))
	}

	for _, link := range flat.Rest {
		info, ok := r.table.lookup(link.Operator)
		if !ok {
			r.bag.Add(diag.Diagnostic{Kind: diag.Syntactic, File: r.file.Path, Span: link.OpSpan,
				Message: fmt.Sprintf("unknown operator %q", link.Operator)})
			info = OperatorInfo{Symbol: link.Operator, Precedence: 0, Associativity: AssocLeft}
		}
		for len(operators) > 0 {
			top := operators[len(operators)-1]
			if top.info.Precedence > info.Precedence {
				popFold()
				continue
			}
			if top.info.Precedence == info.Precedence {
				// A left/right clash at the same level is a genuine
				// associativity conflict; "none" never conflicts and folds
				// left by default, deferring entirely to whatever the
				// neighbour decided.
				if (top.info.Associativity == AssocLeft && info.Associativity == AssocRight) ||
					(top.info.Associativity == AssocRight && info.Associativity == AssocLeft) {
					r.conflict(top.info, info, link.OpSpan)
					popFold()
					continue
				}
				if top.info.Associativity != AssocRight {
					popFold()
					continue
				}
			}
			break
		}
		operators = append(operators, operatorFrame{info: info, span: link.OpSpan})
		pushOperand(r.expr(link.Right))
	}

	for len(operators) > 0 {
		popFold()
	}

	return operands[0]
}

func (r *resolver) conflict(a, b OperatorInfo, span srcpos.Span) {
	r.bag.Add(diag.Diagnostic{Kind: diag.Syntactic, File: r.file.Path, Span: span,
		Message: fmt.Sprintf("operator %q and %q at precedence level %d have conflicting associativity",
			a.Symbol, b.Symbol, b.Precedence)})
}

func (r *resolver) fold(op operatorFrame, left, right ast.Expr) ast.Expr {
	span := r.span(left).Merge(r.span(right))
	if op.info.Symbol == "=" {
		n := &ast.AssignExpr{Target: left, Value: right}
		n.SetSpan(span)
		r.record(n)
		return n
	}
	n := &ast.BinaryExpr{Left: left, Operator: op.info.Symbol, Right: right}
	n.SetSpan(span)
	r.record(n)
	return n
}
