package resolve

import (
	"github.com/hassan/veyra/internal/ast"
	"github.com/hassan/veyra/internal/diag"
	"github.com/hassan/veyra/internal/module"
	"github.com/hassan/veyra/internal/srcpos"
)

// Resolver computes and caches the resolved type of every non-imported
// type, function and constant across a module.Graph, accumulating semantic
// diagnostics in a Bag rather than aborting on the first error.
//
// It drives a two-pass "declare, then resolve" walk across the whole
// module.Graph, using module.Entry.Resolving/Entry.Type (allocated by
// internal/module, mutated only here) as the per-symbol cycle-detection
// flags.
type Resolver struct {
	graph *module.Graph
	bag   *diag.Bag
}

// Resolve runs the type resolver over every module in graph and returns the
// accumulated diagnostics (empty if the whole graph type-checks).
func Resolve(graph *module.Graph) *diag.Bag {
	r := &Resolver{graph: graph, bag: &diag.Bag{}}
	for _, mod := range graph.Modules {
		r.resolveModule(mod)
	}
	return r.bag
}

func (r *Resolver) resolveModule(mod *module.Module) {
	for _, entry := range mod.Types {
		if !entry.Imported {
			r.resolveTypeEntry(mod, entry)
		}
	}
	for _, entry := range mod.Funcs {
		if !entry.Imported {
			r.resolveFuncEntry(mod, entry)
			r.checkFuncBody(mod, entry)
		}
	}
	for _, entry := range mod.Consts {
		if !entry.Imported {
			r.resolveConstEntry(mod, entry)
		}
	}
}

// env is an immutable cons-list of local bindings (function parameters,
// let-expressions) consulted before a module's own tables.
type env struct {
	parent *env
	name   string
	typ    Type
}

func (e *env) lookup(name string) (Type, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.typ, true
		}
	}
	return nil, false
}

func (e *env) extend(name string, typ Type) *env {
	return &env{parent: e, name: name, typ: typ}
}

// GetType resolves the type a module's type declaration named name denotes.
func (r *Resolver) GetType(mod *module.Module, name string) Type {
	entry, ok := mod.Types[name]
	if !ok {
		r.bag.Addf(mod.Path, srcpos.Span{}, "type-not-defined: %q", name)
		return Unknown
	}
	return r.resolveTypeEntry(mod, entry)
}

func (r *Resolver) resolveTypeEntry(mod *module.Module, entry *module.Entry) Type {
	if entry.Type != nil {
		return entry.Type.(Type)
	}
	if entry.Imported {
		t := r.GetType(entry.From, entry.FromName)
		entry.Type = t
		return t
	}
	decl := entry.Decl.(*ast.TypeDecl)
	if entry.Resolving {
		// Legal: types may be self-referential.
		return &RecursiveType{Decl: decl}
	}
	entry.Resolving = true
	var result Type
	if len(decl.TypeParams) > 0 {
		result = &GenericType{Params: decl.TypeParams, Def: decl}
	} else {
		result = r.typeExprToType(mod, decl.Type, nil)
	}
	entry.Resolving = false
	entry.Type = result
	return result
}

// GetValueType resolves the type of a module-level value (function,
// constant, or namespace alias) named name.
func (r *Resolver) GetValueType(mod *module.Module, name string) Type {
	if entry, ok := mod.Funcs[name]; ok {
		return r.resolveFuncEntry(mod, entry)
	}
	if entry, ok := mod.Consts[name]; ok {
		return r.resolveConstEntry(mod, entry)
	}
	if entry, ok := mod.Namespaces[name]; ok {
		return r.resolveNamespaceEntry(entry)
	}
	r.bag.Addf(mod.Path, srcpos.Span{}, "value-not-defined: %q", name)
	return Unknown
}

// resolveFuncEntry computes a function's signature type directly from its
// header, without guarding against re-entrancy: function declarations are
// allowed to recurse freely because their signature is known from their
// header without inspecting their body.
func (r *Resolver) resolveFuncEntry(mod *module.Module, entry *module.Entry) Type {
	if entry.Type != nil {
		return entry.Type.(Type)
	}
	if entry.Imported {
		t := r.GetValueType(entry.From, entry.FromName)
		entry.Type = t
		return t
	}
	decl := entry.Decl.(*ast.FuncDecl)
	params := make([]Type, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = r.typeExprToType(mod, p.Type, nil)
	}
	var ret Type = NewVoid()
	if decl.ReturnType != nil {
		ret = r.typeExprToType(mod, decl.ReturnType, nil)
	}
	fn := &FunctionType{Params: params, Return: ret}
	entry.Type = fn
	return fn
}

// checkFuncBody type-checks decl.Body against the signature already
// computed by resolveFuncEntry, with the function's parameters bound in a
// fresh env. Unlike resolveFuncEntry this is not re-entrancy guarded: it
// runs exactly once per function, and a recursive call inside the body just
// consults the already-cached signature type via GetValueType.
func (r *Resolver) checkFuncBody(mod *module.Module, entry *module.Entry) {
	decl, ok := entry.Decl.(*ast.FuncDecl)
	if !ok {
		return
	}
	fn, ok := entry.Type.(*FunctionType)
	if !ok || decl.Body == nil {
		return
	}
	var local *env
	for i, p := range decl.Params {
		local = local.extend(p.Name, fn.Params[i])
	}
	bodyType := r.exprType(mod, local, decl.Body)
	if !bodyType.AssignableTo(fn.Return) {
		r.bag.Addf(mod.Path, decl.Body.Span(), "type-mismatch: function body has type %s, expected return type %s", bodyType, fn.Return)
	}
}

// resolveConstEntry computes a constant's type from its initializer.
// Constants cannot be recursively defined.
func (r *Resolver) resolveConstEntry(mod *module.Module, entry *module.Entry) Type {
	if entry.Type != nil {
		return entry.Type.(Type)
	}
	if entry.Imported {
		t := r.GetValueType(entry.From, entry.FromName)
		entry.Type = t
		return t
	}
	decl := entry.Decl.(*ast.ConstDecl)
	if entry.Resolving {
		r.bag.Addf(mod.Path, decl.Span(), "circular-dependency: %q is defined in terms of itself", decl.Name)
		entry.Type = Unknown
		return Unknown
	}
	entry.Resolving = true
	t := r.exprType(mod, nil, decl.Initializer)
	if decl.Annotation != nil {
		annotated := r.typeExprToType(mod, decl.Annotation, nil)
		if !t.AssignableTo(annotated) {
			r.bag.Addf(mod.Path, decl.Span(), "type-mismatch: initializer of type %s is not assignable to declared type %s", t, annotated)
			t = Unknown
		} else {
			t = annotated
		}
	}
	entry.Resolving = false
	entry.Type = t
	return t
}

func (r *Resolver) resolveNamespaceEntry(entry *module.Entry) Type {
	if entry.Type != nil {
		return entry.Type.(Type)
	}
	t := &NamespaceType{ModulePath: entry.From.Path}
	entry.Type = t
	return t
}

// typeExprToType converts a syntactic TypeExpr (ast's type grammar) to its
// semantic Type, substituting any name found in subst (a generic's type
// parameters during instantiation) before falling back to module lookup.
func (r *Resolver) typeExprToType(mod *module.Module, texpr ast.TypeExpr, subst map[string]Type) Type {
	switch t := texpr.(type) {
	case *ast.NamedType:
		if subst != nil {
			if bound, ok := subst[t.Name]; ok {
				return bound
			}
		}
		if prim, ok := LookupPrimitive(t.Name); ok {
			return prim
		}
		if len(t.TypeArgs) == 0 {
			return r.GetType(mod, t.Name)
		}
		base := r.GetType(mod, t.Name)
		generic, ok := base.(*GenericType)
		if !ok {
			r.bag.Addf(mod.Path, t.Span(), "not-generic: %q does not take type arguments", t.Name)
			return Unknown
		}
		return r.instantiate(mod, generic, t.TypeArgs, t.Span(), subst)
	case *ast.ArrayType:
		return &ArrayType{Element: r.typeExprToType(mod, t.Element, subst)}
	case *ast.TupleType:
		elems := make([]Type, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = r.typeExprToType(mod, e, subst)
		}
		return &TupleType{Elements: elems}
	case *ast.StructType:
		fields := make([]StructField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = StructField{Name: f.Name, Type: r.typeExprToType(mod, f.Type, subst)}
		}
		return &StructType{Fields: fields}
	case *ast.FuncType:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = r.typeExprToType(mod, p, subst)
		}
		return &FunctionType{Params: params, Return: r.typeExprToType(mod, t.Return, subst)}
	case *ast.GroupType:
		return r.typeExprToType(mod, t.Inner, subst)
	case *ast.UnionType:
		members := make([]Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = r.typeExprToType(mod, m, subst)
		}
		return &UnionType{Members: members}
	default:
		r.bag.Addf(mod.Path, texpr.Span(), "type-not-defined: unsupported type expression")
		return Unknown
	}
}

// instantiate performs generic instantiation: substituting concrete type
// arguments for a generic type's parameters.
func (r *Resolver) instantiate(mod *module.Module, generic *GenericType, argExprs []ast.TypeExpr, span srcpos.Span, outerSubst map[string]Type) Type {
	if len(argExprs) != len(generic.Params) {
		r.bag.Addf(mod.Path, span, "invalid-type-argument-count: %s takes %d type argument(s), got %d", generic.Def.Name, len(generic.Params), len(argExprs))
		return Unknown
	}
	args := make([]Type, len(argExprs))
	for i, a := range argExprs {
		args[i] = r.typeExprToType(mod, a, outerSubst)
	}
	subst := make(map[string]Type, len(args))
	for i, p := range generic.Params {
		if p.Constraint != nil {
			constraint := r.typeExprToType(mod, p.Constraint, outerSubst)
			if !args[i].AssignableTo(constraint) {
				r.bag.Addf(mod.Path, span, "invalid-type-argument: %s is not assignable to constraint %s", args[i], constraint)
			}
		}
		subst[p.Name] = args[i]
	}
	body := r.typeExprToType(mod, generic.Def.Type, subst)
	return &SpecificType{Generic: generic, Args: args, Body: body}
}

// exprType computes an expression's type under env, reporting semantic
// diagnostics through r.bag and substituting Unknown so one error never
// cascades.
func (r *Resolver) exprType(mod *module.Module, e *env, expr ast.Expr) Type {
	switch x := expr.(type) {
	case *ast.NumberLit:
		if x.IsFloat {
			return F64
		}
		return Int
	case *ast.StringLit:
		return NewString()
	case *ast.CharLit:
		return Char
	case *ast.BoolLit:
		return Bool
	case *ast.IdentifierExpr:
		return r.identifierType(mod, e, x.Name, x.Span())
	case *ast.BinaryExpr:
		left := r.exprType(mod, e, x.Left)
		right := r.exprType(mod, e, x.Right)
		t, err := ResolveBinary(x.Operator, left, right)
		if err != nil {
			r.bag.Addf(mod.Path, x.Span(), "type-mismatch: %v", err)
			return Unknown
		}
		return t
	case *ast.AssignExpr:
		targetType := r.exprType(mod, e, x.Target)
		valueType := r.exprType(mod, e, x.Value)
		if !valueType.AssignableTo(targetType) {
			r.bag.Addf(mod.Path, x.Span(), "type-mismatch: cannot assign %s to %s", valueType, targetType)
			return Unknown
		}
		return targetType
	case *ast.UnaryExpr:
		operand := r.exprType(mod, e, x.Operand)
		t, err := ResolveUnary(x.Operator, operand)
		if err != nil {
			r.bag.Addf(mod.Path, x.Span(), "type-mismatch: %v", err)
			return Unknown
		}
		return t
	case *ast.CallExpr:
		return r.callType(mod, e, x)
	case *ast.IndexExpr:
		return r.indexType(mod, e, x)
	case *ast.MemberExpr:
		return r.memberType(mod, e, x)
	case *ast.ArrayLit:
		return r.arrayLitType(mod, e, x)
	case *ast.TupleLit:
		elems := make([]Type, len(x.Elements))
		for i, el := range x.Elements {
			elems[i] = r.exprType(mod, e, el)
		}
		return &TupleType{Elements: elems}
	case *ast.StructLit:
		return r.structLitType(mod, e, x)
	case *ast.GroupExpr:
		return r.exprType(mod, e, x.Inner)
	case *ast.IfExpr:
		return r.ifType(mod, e, x)
	case *ast.LetExpr:
		return r.letType(mod, e, x)
	case *ast.VarDeclExpr:
		return r.varDeclType(mod, e, x)
	case *ast.LambdaExpr:
		return r.lambdaType(mod, e, x)
	case *ast.BlockExpr:
		return r.blockType(mod, e, x.Block)
	default:
		r.bag.Addf(mod.Path, expr.Span(), "type-mismatch: unsupported expression")
		return Unknown
	}
}

func (r *Resolver) identifierType(mod *module.Module, e *env, name string, span srcpos.Span) Type {
	if t, ok := e.lookup(name); ok {
		return t
	}
	if _, ok := mod.Funcs[name]; ok {
		return r.resolveFuncEntry(mod, mod.Funcs[name])
	}
	if _, ok := mod.Consts[name]; ok {
		return r.resolveConstEntry(mod, mod.Consts[name])
	}
	if _, ok := mod.Namespaces[name]; ok {
		return r.resolveNamespaceEntry(mod.Namespaces[name])
	}
	r.bag.Addf(mod.Path, span, "value-not-defined: %q", name)
	return Unknown
}

func (r *Resolver) callType(mod *module.Module, e *env, x *ast.CallExpr) Type {
	calleeType := r.exprType(mod, e, x.Callee)
	fn, ok := calleeType.(*FunctionType)
	if !ok {
		if _, isUnknown := calleeType.(*UnknownType); !isUnknown {
			r.bag.Addf(mod.Path, x.Span(), "not-function: cannot call a value of type %s", calleeType)
		}
		return Unknown
	}
	if len(x.Args) > len(fn.Params) {
		r.bag.Addf(mod.Path, x.Span(), "type-mismatch: too many arguments, %s takes %d", calleeType, len(fn.Params))
		return Unknown
	}
	for i, arg := range x.Args {
		argType := r.exprType(mod, e, arg)
		if !argType.AssignableTo(fn.Params[i]) {
			r.bag.Addf(mod.Path, arg.Span(), "type-mismatch: argument %d has type %s, expected %s", i+1, argType, fn.Params[i])
		}
	}
	if len(x.Args) == len(fn.Params) {
		return fn.Return
	}
	return &FunctionType{Params: append([]Type{}, fn.Params[len(x.Args):]...), Return: fn.Return}
}

func (r *Resolver) indexType(mod *module.Module, e *env, x *ast.IndexExpr) Type {
	objType := r.exprType(mod, e, x.Object)
	arr, ok := objType.(*ArrayType)
	if !ok {
		if _, isUnknown := objType.(*UnknownType); !isUnknown {
			r.bag.Addf(mod.Path, x.Span(), "not-array: cannot index a value of type %s", objType)
		}
		return Unknown
	}
	indexType := r.exprType(mod, e, x.Index)
	if _, ok := indexType.(*IntegerType); !ok {
		if _, isUnknown := indexType.(*UnknownType); !isUnknown {
			r.bag.Addf(mod.Path, x.Index.Span(), "type-mismatch: array index must be an integer, got %s", indexType)
		}
	}
	return arr.Element
}

func (r *Resolver) memberType(mod *module.Module, e *env, x *ast.MemberExpr) Type {
	objType := r.exprType(mod, e, x.Object)
	switch obj := objType.(type) {
	case *StructType:
		field := obj.LookupField(x.Member)
		if field == nil {
			r.bag.Addf(mod.Path, x.Span(), "value-not-defined: struct has no field %q", x.Member)
			return Unknown
		}
		return field.Type
	case *NamespaceType:
		target := r.graph.Modules[obj.ModulePath]
		if target == nil {
			r.bag.Addf(mod.Path, x.Span(), "module-not-found: %q", obj.ModulePath)
			return Unknown
		}
		if _, ok := target.Exports[x.Member]; !ok {
			r.bag.Addf(mod.Path, x.Span(), "module-does-not-export: %q does not export %q", obj.ModulePath, x.Member)
			return Unknown
		}
		return r.GetValueType(target, x.Member)
	case *UnknownType:
		return Unknown
	default:
		r.bag.Addf(mod.Path, x.Span(), "type-mismatch: %s has no member %q", objType, x.Member)
		return Unknown
	}
}

func (r *Resolver) arrayLitType(mod *module.Module, e *env, x *ast.ArrayLit) Type {
	if len(x.Elements) == 0 {
		return &ArrayType{Element: Unknown}
	}
	element := r.exprType(mod, e, x.Elements[0])
	for _, el := range x.Elements[1:] {
		t := r.exprType(mod, e, el)
		ub := upperBound(element, t)
		if ub == nil {
			r.bag.Addf(mod.Path, el.Span(), "type-mismatch: array element of type %s has no upper bound with %s", t, element)
			ub = Unknown
		}
		element = ub
	}
	return &ArrayType{Element: element}
}

func (r *Resolver) structLitType(mod *module.Module, e *env, x *ast.StructLit) Type {
	fields := make([]StructField, len(x.Fields))
	for i, f := range x.Fields {
		fields[i] = StructField{Name: f.Name, Type: r.exprType(mod, e, f.Value)}
	}
	literal := &StructType{Fields: fields}
	if x.TypeName == "" {
		return literal
	}
	declared := r.GetType(mod, x.TypeName)
	if st, ok := declared.(*StructType); ok {
		if !literal.AssignableTo(st) {
			r.bag.Addf(mod.Path, x.Span(), "type-mismatch: struct literal is not assignable to %s", x.TypeName)
			return Unknown
		}
		return st
	}
	return literal
}

func (r *Resolver) ifType(mod *module.Module, e *env, x *ast.IfExpr) Type {
	condType := r.exprType(mod, e, x.Condition)
	if _, ok := condType.(*BoolType); !ok {
		if _, isUnknown := condType.(*UnknownType); !isUnknown {
			r.bag.Addf(mod.Path, x.Condition.Span(), "type-mismatch: if-condition must be bool, got %s", condType)
		}
	}
	thenType := r.exprType(mod, e, x.Then)
	if x.Else == nil {
		return NewVoid()
	}
	elseType := r.exprType(mod, e, x.Else)
	if ub := upperBound(thenType, elseType); ub != nil {
		return ub
	}
	r.bag.Addf(mod.Path, x.Span(), "type-mismatch: if-branches have incompatible types %s and %s", thenType, elseType)
	return Unknown
}

func (r *Resolver) letType(mod *module.Module, e *env, x *ast.LetExpr) Type {
	valueType := r.exprType(mod, e, x.Value)
	bound := valueType
	if x.Annotation != nil {
		annotated := r.typeExprToType(mod, x.Annotation, nil)
		if !valueType.AssignableTo(annotated) {
			r.bag.Addf(mod.Path, x.Span(), "type-mismatch: let-binding initializer of type %s is not assignable to %s", valueType, annotated)
		} else {
			bound = annotated
		}
	}
	inner := e.extend(x.Name, bound)
	return r.exprType(mod, inner, x.Body)
}

// varDeclType computes a var-declaration's own type (the type its binding
// gets) — unlike letType it does not extend env or resolve a body: the
// caller (blockType) is what threads the new binding to later statements,
// since a var-declaration's scope is "the rest of the block", not a single
// nested expression.
func (r *Resolver) varDeclType(mod *module.Module, e *env, x *ast.VarDeclExpr) Type {
	valueType := r.exprType(mod, e, x.Value)
	if x.Annotation == nil {
		return valueType
	}
	annotated := r.typeExprToType(mod, x.Annotation, nil)
	if !valueType.AssignableTo(annotated) {
		r.bag.Addf(mod.Path, x.Span(), "type-mismatch: var-declaration initializer of type %s is not assignable to %s", valueType, annotated)
		return Unknown
	}
	return annotated
}

func (r *Resolver) lambdaType(mod *module.Module, e *env, x *ast.LambdaExpr) Type {
	params := make([]Type, len(x.Params))
	inner := e
	for i, p := range x.Params {
		params[i] = r.typeExprToType(mod, p.Type, nil)
		inner = inner.extend(p.Name, params[i])
	}
	ret := r.exprType(mod, inner, x.Body)
	return &FunctionType{Params: params, Return: ret}
}

// blockType threads a growing env across a block's statements — a
// var-declaration (the only statement that isn't Stmt-typed itself; see
// stmtType's ExprStmt case) extends the env for every statement after it,
// not just the expression it initializes. The block's own type is that of
// its last statement (its value, if it produced one; a Block
// statements ... collapse to a Noop when empty" rule means an empty or
// all-Noop block has type void).
func (r *Resolver) blockType(mod *module.Module, e *env, b *ast.BlockStmt) Type {
	cur := e
	result := Type(NewVoid())
	for i, s := range b.Stmts {
		var t Type
		t, cur = r.stmtType(mod, cur, s)
		if i == len(b.Stmts)-1 {
			result = t
		}
	}
	return result
}

// stmtType type-checks one statement, returning its value (relevant only
// when it is the last statement of its block) and the env to use for the
// statement that follows it.
func (r *Resolver) stmtType(mod *module.Module, e *env, stmt ast.Stmt) (Type, *env) {
	switch x := stmt.(type) {
	case *ast.BlockStmt:
		return r.blockType(mod, e, x), e
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.NoopStmt:
		return NewVoid(), e
	case *ast.ReturnStmt:
		if x.Value == nil {
			return NewVoid(), e
		}
		return r.exprType(mod, e, x.Value), e
	case *ast.ThrowStmt:
		r.exprType(mod, e, x.Value)
		return Unknown, e
	case *ast.WhileStmt:
		r.requireBool(mod, e, x.Cond, "while-condition")
		r.blockType(mod, e, x.Body)
		return NewVoid(), e
	case *ast.DoWhileStmt:
		r.blockType(mod, e, x.Body)
		r.requireBool(mod, e, x.Cond, "do-while condition")
		return NewVoid(), e
	case *ast.ForStmt:
		iterType := r.exprType(mod, e, x.Iterable)
		elem := Type(Unknown)
		if arr, ok := iterType.(*ArrayType); ok {
			elem = arr.Element
		} else if _, isUnknown := iterType.(*UnknownType); !isUnknown {
			r.bag.Addf(mod.Path, x.Iterable.Span(), "not-array: cannot iterate a value of type %s", iterType)
		}
		r.blockType(mod, e.extend(x.Var, elem), x.Body)
		return NewVoid(), e
	case *ast.TryCatchStmt:
		r.blockType(mod, e, x.Try)
		r.blockType(mod, e.extend(x.CatchParam, NewString()), x.Catch)
		if x.Finally != nil {
			r.blockType(mod, e, x.Finally)
		}
		return NewVoid(), e
	case *ast.ExprStmt:
		if vd, ok := x.Expr.(*ast.VarDeclExpr); ok {
			t := r.varDeclType(mod, e, vd)
			return t, e.extend(vd.Name, t)
		}
		return r.exprType(mod, e, x.Expr), e
	default:
		r.bag.Addf(mod.Path, stmt.Span(), "type-mismatch: unsupported statement")
		return Unknown, e
	}
}

func (r *Resolver) requireBool(mod *module.Module, e *env, cond ast.Expr, what string) {
	t := r.exprType(mod, e, cond)
	if _, ok := t.(*BoolType); ok {
		return
	}
	if _, isUnknown := t.(*UnknownType); isUnknown {
		return
	}
	r.bag.Addf(mod.Path, cond.Span(), "type-mismatch: %s must be bool, got %s", what, t)
}
