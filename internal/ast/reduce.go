package ast

import (
	"fmt"

	"github.com/hassan/veyra/internal/cst"
	"github.com/hassan/veyra/internal/diag"
	"github.com/hassan/veyra/internal/srcpos"
	"github.com/hassan/veyra/internal/token"
)

// Reduce turns a parsed cst.Node (the root "program" node) into a File,
// recording every node's span in the locations map as it goes. The reducer
// is a pure function of its input tree: it never touches the token stream
// again and it never fails on its own — failures were already caught by the
// parser's commit points, so by the time Reduce runs the shape is known
// good.
func Reduce(root cst.Node, path string) *File {
	r := &reducer{locations: make(map[Node]srcpos.Span), file: path}
	var decls []Decl
	for _, d := range root.Children[0].Children {
		decls = append(decls, r.declaration(d))
	}
	return &File{Path: path, Declarations: decls, Locations: r.locations}
}

// ReduceSafe wraps Reduce with a recover so that a cst shape the grammar
// should never actually produce (a parser/reducer mismatch bug) surfaces to
// its caller as a Diagnostic instead of unwinding the loader's stack.
func ReduceSafe(root cst.Node, path string) (file *File, errDiag *diag.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			d := diagFor(path, root.Span, "%v", r)
			errDiag = &d
		}
	}()
	return Reduce(root, path), nil
}

type reducer struct {
	locations map[Node]srcpos.Span
	file      string
}

func (r *reducer) record(n Node, span srcpos.Span) Node {
	r.locations[n] = span
	return n
}

// declaration unwraps the Select("declaration", ...) wrapper and dispatches
// on the concrete production that matched.
func (r *reducer) declaration(n cst.Node) Decl {
	inner := n.Children[0]
	switch inner.Kind {
	case cst.KindImportDecl:
		return r.importDecl(inner)
	case "exportDecl":
		return r.exportDecl(inner)
	case cst.KindTypeDecl:
		return r.typeDecl(inner)
	case cst.KindConstDecl:
		return r.constDecl(inner)
	case cst.KindFuncDecl:
		return r.funcDecl(inner)
	}
	panic(fmt.Sprintf("ast: unreduced declaration kind %q", inner.Kind))
}

func (r *reducer) importDecl(n cst.Node) *ImportDecl {
	clauseSelect := n.Children[1] // Must(Select("importClause", ...))
	clause := clauseSelect.Children[0]
	var names []string
	if clause.Kind == cst.KindNamedImports {
		for _, idNode := range clause.Children[1].Children {
			names = append(names, idNode.Tok.Lexeme)
		}
	} else {
		names = []string{clause.Tok.Lexeme}
	}
	path := n.Children[3].Tok.Value.(string)
	d := &ImportDecl{Names: names, ModulePath: path}
	d.span = n.Span
	r.record(d, n.Span)
	return d
}

func (r *reducer) exportDecl(n cst.Node) Decl {
	bodySelect := n.Children[1]
	body := bodySelect.Children[0]
	switch body.Kind {
	case cst.KindExportForward:
		path := body.Children[2].Tok.Value.(string)
		d := &ExportForwardDecl{Names: nil, ModulePath: path}
		d.span = n.Span
		return r.record(d, n.Span).(Decl)
	case cst.KindExportBrace:
		var names []string
		for _, idNode := range body.Children[1].Children {
			names = append(names, idNode.Tok.Lexeme)
		}
		fromOpt := body.Children[3]
		if len(fromOpt.Children) > 0 {
			path := fromOpt.Children[0].Children[1].Tok.Value.(string)
			d := &ExportForwardDecl{Names: names, ModulePath: path}
			d.span = n.Span
			return r.record(d, n.Span).(Decl)
		}
		d := &ExportDecl{Names: names}
		d.span = n.Span
		return r.record(d, n.Span).(Decl)
	case "exportInlineBody":
		inline := r.declaration(cst.Node{Kind: "declaration", Children: []cst.Node{body.Children[0]}})
		d := &ExportDecl{Inline: inline}
		d.span = n.Span
		return r.record(d, n.Span).(Decl)
	}
	panic(fmt.Sprintf("ast: unreduced export body kind %q", body.Kind))
}

func (r *reducer) typeParams(opt cst.Node) []TypeParam {
	if len(opt.Children) == 0 {
		return nil
	}
	list := opt.Children[0].Children[1] // opt -> typeParams Seq(Less, Repeat, Greater) -> Repeat
	var params []TypeParam
	for _, p := range list.Children {
		tp := TypeParam{Name: p.Children[0].Tok.Lexeme}
		if len(p.Children[1].Children) > 0 {
			tp.Constraint = r.typeExpr(p.Children[1].Children[0].Children[1])
		}
		params = append(params, tp)
	}
	return params
}

func (r *reducer) typeDecl(n cst.Node) *TypeDecl {
	d := &TypeDecl{
		Name:       n.Children[1].Tok.Lexeme,
		TypeParams: r.typeParams(n.Children[2]),
		Type:       r.typeExpr(n.Children[4]),
	}
	d.span = n.Span
	r.record(d, n.Span)
	return d
}

func (r *reducer) constDecl(n cst.Node) *ConstDecl {
	d := &ConstDecl{Name: n.Children[1].Tok.Lexeme}
	if ann := n.Children[2]; len(ann.Children) > 0 {
		d.Annotation = r.typeExpr(ann.Children[0].Children[1])
	}
	d.Initializer = r.expr(n.Children[4])
	d.span = n.Span
	r.record(d, n.Span)
	return d
}

func (r *reducer) params(opt cst.Node) []Param {
	if len(opt.Children) == 0 {
		return nil
	}
	var out []Param
	for _, p := range opt.Children[0].Children {
		out = append(out, Param{Name: p.Children[0].Tok.Lexeme, Type: r.typeExpr(p.Children[2])})
	}
	return out
}

func (r *reducer) funcDecl(n cst.Node) *FuncDecl {
	d := &FuncDecl{
		Name:       n.Children[1].Tok.Lexeme,
		TypeParams: r.typeParams(n.Children[2]),
		Params:     r.params(n.Children[4]),
	}
	if ret := n.Children[6]; len(ret.Children) > 0 {
		d.ReturnType = r.typeExpr(ret.Children[0].Children[1])
	}
	d.Body = r.expr(n.Children[8])
	d.span = n.Span
	r.record(d, n.Span)
	return d
}

// --- Type expressions ---

func (r *reducer) typeExpr(n cst.Node) TypeExpr {
	members := n.Children
	if len(members) == 1 {
		return r.typeMember(members[0].Children[0])
	}
	var out []TypeExpr
	for _, m := range members {
		out = append(out, r.typeMember(m.Children[0]))
	}
	u := &UnionType{Members: out}
	u.span = n.Span
	r.record(u, n.Span)
	return u
}

func (r *reducer) typeMember(n cst.Node) TypeExpr {
	switch n.Kind {
	case cst.KindArrayType:
		t := &ArrayType{Element: r.typeExpr(n.Children[1])}
		t.span = n.Span
		r.record(t, n.Span)
		return t
	case cst.KindStructType:
		var fields []StructField
		for _, f := range n.Children[1].Children {
			fields = append(fields, StructField{Name: f.Children[0].Tok.Lexeme, Type: r.typeExpr(f.Children[2])})
		}
		t := &StructType{Fields: fields}
		t.span = n.Span
		r.record(t, n.Span)
		return t
	case cst.KindTupleOrFunc:
		elementsOpt := n.Children[1]
		arrowOpt := n.Children[3]
		var elems []TypeExpr
		if len(elementsOpt.Children) > 0 {
			for _, e := range elementsOpt.Children[0].Children {
				elems = append(elems, r.typeExpr(e))
			}
		}
		if len(arrowOpt.Children) > 0 {
			ret := r.typeExpr(arrowOpt.Children[0].Children[1])
			t := &FuncType{Params: elems, Return: ret}
			t.span = n.Span
			r.record(t, n.Span)
			return t
		}
		if len(elems) == 1 {
			t := &GroupType{Inner: elems[0]}
			t.span = n.Span
			r.record(t, n.Span)
			return t
		}
		t := &TupleType{Elements: elems}
		t.span = n.Span
		r.record(t, n.Span)
		return t
	case cst.KindNamedType:
		name := n.Children[0].Tok.Lexeme
		argsOpt := n.Children[1]
		var args []TypeExpr
		if len(argsOpt.Children) > 0 {
			for _, a := range argsOpt.Children[0].Children[1].Children {
				args = append(args, r.typeExpr(a))
			}
		}
		t := &NamedType{Name: name, TypeArgs: args}
		t.span = n.Span
		r.record(t, n.Span)
		return t
	}
	panic(fmt.Sprintf("ast: unreduced type member kind %q", n.Kind))
}

// --- Value expressions ---

func (r *reducer) expr(n cst.Node) Expr {
	inner := n.Children[0]
	switch inner.Kind {
	case cst.KindIfExpr:
		return r.ifExpr(inner)
	case cst.KindLetExpr:
		return r.letExpr(inner)
	case cst.KindBlockExpr:
		return r.blockExpr(inner)
	case cst.KindBinarySpine:
		return r.binarySpine(inner)
	}
	panic(fmt.Sprintf("ast: unreduced expr kind %q", inner.Kind))
}

func (r *reducer) ifExpr(n cst.Node) Expr {
	e := &IfExpr{Condition: r.expr(n.Children[1]), Then: r.expr(n.Children[3]), Else: r.expr(n.Children[5])}
	e.span = n.Span
	r.record(e, n.Span)
	return e
}

// letExpr reduces to either a LetExpr (the trailing 'in' clause matched) or
// a VarDeclExpr (it didn't) — see the grammar comment on cst.letExpr.
func (r *reducer) letExpr(n cst.Node) Expr {
	name := n.Children[1].Tok.Lexeme
	value := r.expr(n.Children[4])
	var annotation TypeExpr
	if ann := n.Children[2]; len(ann.Children) > 0 {
		annotation = r.typeExpr(ann.Children[0].Children[1])
	}
	if inClause := n.Children[5]; len(inClause.Children) > 0 {
		e := &LetExpr{Name: name, Annotation: annotation, Value: value, Body: r.expr(inClause.Children[0].Children[1])}
		e.span = n.Span
		r.record(e, n.Span)
		return e
	}
	e := &VarDeclExpr{Name: name, Annotation: annotation, Value: value}
	e.span = n.Span
	r.record(e, n.Span)
	return e
}

func (r *reducer) blockExpr(n cst.Node) Expr {
	e := &BlockExpr{Block: r.blockStmt(n.Children[0])}
	e.span = n.Span
	r.record(e, n.Span)
	return e
}

// blockStmt reduces a KindBlock cst node to a *BlockStmt, silently
// discarding nested Noops and collapsing to a single Noop when empty.
func (r *reducer) blockStmt(n cst.Node) *BlockStmt {
	var stmts []Stmt
	for _, s := range n.Children[1].Children {
		st := r.statement(s)
		if _, isNoop := st.(*NoopStmt); isNoop {
			continue
		}
		stmts = append(stmts, st)
	}
	b := &BlockStmt{Stmts: stmts}
	b.span = n.Span
	r.record(b, n.Span)
	if len(stmts) == 0 {
		noop := &NoopStmt{}
		noop.span = n.Span
		r.record(noop, n.Span)
		b.Stmts = []Stmt{noop}
	}
	return b
}

// statement unwraps the Select("statement", ...) wrapper and dispatches on
// the concrete production that matched.
func (r *reducer) statement(n cst.Node) Stmt {
	inner := n.Children[0]
	switch inner.Kind {
	case cst.KindBlock:
		return r.blockStmt(inner)
	case cst.KindBreakStmt:
		s := &BreakStmt{}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	case cst.KindContinueStmt:
		s := &ContinueStmt{}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	case cst.KindReturnStmt:
		s := &ReturnStmt{}
		if v := inner.Children[1]; len(v.Children) > 0 {
			s.Value = r.expr(v.Children[0])
		}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	case cst.KindThrowStmt:
		s := &ThrowStmt{Value: r.expr(inner.Children[1])}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	case cst.KindWhileStmt:
		s := &WhileStmt{Cond: r.expr(inner.Children[2]), Body: r.blockStmt(inner.Children[4])}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	case cst.KindDoWhileStmt:
		s := &DoWhileStmt{Body: r.blockStmt(inner.Children[1]), Cond: r.expr(inner.Children[3])}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	case cst.KindForStmt:
		s := &ForStmt{
			Var:      inner.Children[2].Tok.Lexeme,
			Iterable: r.expr(inner.Children[4]),
			Body:     r.blockStmt(inner.Children[6]),
		}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	case cst.KindTryCatchStmt:
		s := &TryCatchStmt{
			Try:        r.blockStmt(inner.Children[1]),
			CatchParam: inner.Children[4].Tok.Lexeme,
			Catch:      r.blockStmt(inner.Children[6]),
		}
		if fin := inner.Children[7]; len(fin.Children) > 0 {
			s.Finally = r.blockStmt(fin.Children[0].Children[1])
		}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	case cst.KindNoopStmt:
		s := &NoopStmt{}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	case cst.KindExprStmt:
		s := &ExprStmt{Expr: r.expr(inner.Children[0])}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	}
	panic(fmt.Sprintf("ast: unreduced statement kind %q", inner.Kind))
}

func (r *reducer) binarySpine(n cst.Node) Expr {
	first := r.unaryExpr(n.Children[0])
	tail := n.Children[1]
	if len(tail.Children) == 0 {
		return first
	}
	var rest []OperatorLink
	for _, link := range tail.Children {
		opLeaf := link.Children[0].Children[0]
		if !opLeaf.Tok.Kind.IsOperator() {
			panic(fmt.Sprintf("ast: binary spine link held non-operator token %q", opLeaf.Tok.Kind))
		}
		right := r.unaryExpr(link.Children[1])
		rest = append(rest, OperatorLink{Operator: opLeaf.Tok.Lexeme, OpSpan: opLeaf.Span, Right: right})
	}
	flat := &FlatBinaryExpr{First: first, Rest: rest}
	flat.span = n.Span
	r.record(flat, n.Span)
	return flat
}

func (r *reducer) unaryExpr(n cst.Node) Expr {
	inner := n.Children[0]
	if inner.Kind == cst.KindUnaryExpr {
		op := inner.Children[0].Children[0]
		if !op.Tok.Kind.IsOperator() {
			panic(fmt.Sprintf("ast: unary expr held non-operator token %q", op.Tok.Kind))
		}
		e := &UnaryExpr{Operator: op.Tok.Lexeme, Operand: r.unaryExpr(inner.Children[1])}
		e.span = inner.Span
		r.record(e, inner.Span)
		return e
	}
	return r.postfixExpr(inner)
}

func (r *reducer) postfixExpr(n cst.Node) Expr {
	e := r.primaryExpr(n.Children[0])
	for _, opSel := range n.Children[1].Children {
		op := opSel.Children[0]
		switch op.Kind {
		case cst.KindCallArgs:
			var args []Expr
			if optArgs := op.Children[1]; len(optArgs.Children) > 0 {
				for _, a := range optArgs.Children[0].Children {
					args = append(args, r.expr(a))
				}
			}
			call := &CallExpr{Callee: e, Args: args}
			call.span = e.Span().Merge(op.Span)
			e = r.record(call, call.span).(Expr)
		case cst.KindIndexOp:
			idx := &IndexExpr{Object: e, Index: r.expr(op.Children[1])}
			idx.span = e.Span().Merge(op.Span)
			e = r.record(idx, idx.span).(Expr)
		case cst.KindMemberOp:
			mem := &MemberExpr{Object: e, Member: op.Children[1].Tok.Lexeme}
			mem.span = e.Span().Merge(op.Span)
			e = r.record(mem, mem.span).(Expr)
		}
	}
	return e
}

func (r *reducer) primaryExpr(n cst.Node) Expr {
	inner := n.Children[0]
	switch inner.Kind {
	case token.Number.String():
		if !inner.Tok.Kind.IsLiteral() {
			panic(fmt.Sprintf("ast: number primary held non-literal token %q", inner.Tok.Kind))
		}
		return r.numberLit(inner)
	case token.String.String():
		if !inner.Tok.Kind.IsLiteral() {
			panic(fmt.Sprintf("ast: string primary held non-literal token %q", inner.Tok.Kind))
		}
		s := &StringLit{Value: inner.Tok.Value.(string)}
		s.span = inner.Span
		r.record(s, inner.Span)
		return s
	case token.Char.String():
		if !inner.Tok.Kind.IsLiteral() {
			panic(fmt.Sprintf("ast: char primary held non-literal token %q", inner.Tok.Kind))
		}
		c := &CharLit{Value: inner.Tok.Value.(rune)}
		c.span = inner.Span
		r.record(c, inner.Span)
		return c
	case token.True.String(), token.False.String():
		if !inner.Tok.Kind.IsKeyword() {
			panic(fmt.Sprintf("ast: bool primary held non-keyword token %q", inner.Tok.Kind))
		}
		b := &BoolLit{Value: inner.Tok.Value.(bool)}
		b.span = inner.Span
		r.record(b, inner.Span)
		return b
	case token.Identifier.String():
		if !inner.Tok.Kind.IsLiteral() {
			panic(fmt.Sprintf("ast: identifier primary held non-literal token %q", inner.Tok.Kind))
		}
		id := &IdentifierExpr{Name: inner.Tok.Lexeme}
		id.span = inner.Span
		r.record(id, inner.Span)
		return id
	case cst.KindStructLiteral:
		return r.structLit(inner)
	case cst.KindLambdaExpr:
		return r.lambdaExpr(inner)
	case cst.KindGroupOrTuple:
		return r.groupOrTuple(inner)
	case cst.KindArrayLiteral:
		var elems []Expr
		if opt := inner.Children[1]; len(opt.Children) > 0 {
			for _, e := range opt.Children[0].Children {
				elems = append(elems, r.expr(e))
			}
		}
		a := &ArrayLit{Elements: elems}
		a.span = inner.Span
		r.record(a, inner.Span)
		return a
	}
	panic(fmt.Sprintf("ast: unreduced primary expr kind %q", inner.Kind))
}

func (r *reducer) numberLit(n cst.Node) Expr {
	lit := &NumberLit{Raw: n.Tok.Lexeme}
	switch v := n.Tok.Value.(type) {
	case int64:
		lit.Int = v
	case float64:
		lit.IsFloat = true
		lit.Float = v
	}
	lit.span = n.Span
	r.record(lit, n.Span)
	return lit
}

func (r *reducer) groupOrTuple(n cst.Node) Expr {
	var elems []Expr
	if opt := n.Children[1]; len(opt.Children) > 0 {
		for _, e := range opt.Children[0].Children {
			elems = append(elems, r.expr(e))
		}
	}
	if len(elems) == 1 {
		g := &GroupExpr{Inner: elems[0]}
		g.span = n.Span
		r.record(g, n.Span)
		return g
	}
	t := &TupleLit{Elements: elems}
	t.span = n.Span
	r.record(t, n.Span)
	return t
}

// lambdaExpr reuses the funcDecl-style parameter-list shape: lambdaParam
// nodes have the same (Identifier, Colon, typeExpr) layout as param().
func (r *reducer) lambdaExpr(n cst.Node) Expr {
	e := &LambdaExpr{Params: r.params(n.Children[1]), Body: r.expr(n.Children[4])}
	e.span = n.Span
	r.record(e, n.Span)
	return e
}

func (r *reducer) structLit(n cst.Node) Expr {
	name := n.Children[0].Tok.Lexeme
	var fields []FieldInit
	if opt := n.Children[2]; len(opt.Children) > 0 {
		for _, f := range opt.Children[0].Children {
			fields = append(fields, FieldInit{Name: f.Children[0].Tok.Lexeme, Value: r.expr(f.Children[2])})
		}
	}
	s := &StructLit{TypeName: name, Fields: fields}
	s.span = n.Span
	r.record(s, n.Span)
	return s
}

// diagFor builds the Diagnostic ReduceSafe reports when recover catches one
// of Reduce's internal panics (a cst shape the grammar should never have
// produced, not a user-facing parse error).
func diagFor(file string, span srcpos.Span, format string, args ...any) diag.Diagnostic {
	return diag.Diagnostic{Kind: diag.Syntactic, File: file, Span: span, Message: fmt.Sprintf(format, args...)}
}
