// Package ast implements the abstract syntax tree and the CST-to-AST
// reduction step.
//
// Every node gets an exported Kind() method returning a small enum; callers
// type-switch on the concrete type instead of a double-dispatch
// Accept(Visitor) method — adding a node kind touches exactly one file
// instead of a Visitor interface and every implementation of it.
package ast

import "github.com/hassan/veyra/internal/srcpos"

// Kind tags the concrete Go type of a Node for quick dispatch without a
// type switch where only the category matters (e.g. "is this a Decl?").
type Kind int

const (
	KindInvalid Kind = iota

	KindImportDecl
	KindExportForwardDecl
	KindExportDecl
	KindTypeDecl
	KindConstDecl
	KindFuncDecl

	KindUnionType
	KindArrayType
	KindStructType
	KindTupleType
	KindFuncType
	KindGroupType
	KindNamedType

	KindNumberLit
	KindStringLit
	KindCharLit
	KindBoolLit
	KindIdentifierExpr
	KindBinaryExpr
	KindUnaryExpr
	KindCallExpr
	KindIndexExpr
	KindMemberExpr
	KindArrayLit
	KindTupleLit
	KindStructLit
	KindGroupExpr
	KindIfExpr
	KindLetExpr
	KindFlatBinaryExpr
	KindVarDeclExpr
	KindLambdaExpr
	KindBlockExpr

	KindBlockStmt
	KindBreakStmt
	KindContinueStmt
	KindReturnStmt
	KindThrowStmt
	KindWhileStmt
	KindDoWhileStmt
	KindForStmt
	KindTryCatchStmt
	KindNoopStmt
	KindExprStmt
)

// Node is satisfied by every AST node. Span returns the source range the
// node was reduced from; Kind returns its dispatch tag.
type Node interface {
	Span() srcpos.Span
	Kind() Kind
}

// Decl is satisfied by top-level declarations: the import/export/type/
// const/func declaration set.
type Decl interface {
	Node
	declNode()
}

// Expr is satisfied by every expression node, including type expressions —
// the type algebra has its own grammar production (cst's typeExpr), but its
// reduced TypeExpr nodes implement Expr too and the resolver is what gives
// them type-level meaning.
type Expr interface {
	Node
	exprNode()
}

// TypeExpr is the subset of Expr nodes that can appear where the grammar
// calls for a type (type declarations, parameter/return/field annotations,
// generic constraints).
type TypeExpr interface {
	Expr
	typeExprNode()
}

// Stmt is satisfied by every statement node (Block, Break, Continue,
// DoWhile, For, Return, Throw, TryCatch, While, Noop, plus ExprStmt for a
// bare expression used for its side effect). Statements only
// occur inside a BlockStmt, which in turn is reached from value position via
// BlockExpr — the language has no statement position that isn't also an
// expression position.
type Stmt interface {
	Node
	stmtNode()
}

type baseNode struct{ span srcpos.Span }

func (b baseNode) Span() srcpos.Span { return b.span }

// SetSpan lets package precedence stamp a span on the BinaryExpr/AssignExpr
// nodes it builds, since those are constructed outside the reducer (which
// sets every other node's span at construction time via baseNode{span: ...}).
func (b *baseNode) SetSpan(s srcpos.Span) { b.span = s }

// --- Declarations ---

type ImportDecl struct {
	baseNode
	Names      []string
	ModulePath string
}

func (d *ImportDecl) Kind() Kind { return KindImportDecl }
func (d *ImportDecl) declNode()  {}

// ExportForwardDecl re-exports names (or all, if Names is nil) from another
// module without binding them locally.
type ExportForwardDecl struct {
	baseNode
	Names      []string // nil means "export * from"
	ModulePath string
}

func (d *ExportForwardDecl) Kind() Kind { return KindExportForwardDecl }
func (d *ExportForwardDecl) declNode()  {}

// ExportDecl exports either a set of already-declared local names, or wraps
// an inline declaration that is simultaneously declared and exported.
type ExportDecl struct {
	baseNode
	Names  []string // set when exporting existing local names
	Inline Decl     // set when the export wraps a declaration directly
}

func (d *ExportDecl) Kind() Kind { return KindExportDecl }
func (d *ExportDecl) declNode()  {}

type TypeParam struct {
	Name       string
	Constraint TypeExpr // nil if unconstrained
}

type TypeDecl struct {
	baseNode
	Name       string
	TypeParams []TypeParam
	Type       TypeExpr
}

func (d *TypeDecl) Kind() Kind { return KindTypeDecl }
func (d *TypeDecl) declNode()  {}

type ConstDecl struct {
	baseNode
	Name        string
	Annotation  TypeExpr // nil if not annotated
	Initializer Expr
}

func (d *ConstDecl) Kind() Kind { return KindConstDecl }
func (d *ConstDecl) declNode()  {}

type Param struct {
	Name string
	Type TypeExpr
}

type FuncDecl struct {
	baseNode
	Name       string
	TypeParams []TypeParam
	Params     []Param
	ReturnType TypeExpr // nil if not annotated
	Body       Expr
}

func (d *FuncDecl) Kind() Kind { return KindFuncDecl }
func (d *FuncDecl) declNode()  {}

// --- Type expressions ---

type UnionType struct {
	baseNode
	Members []TypeExpr
}

func (t *UnionType) Kind() Kind    { return KindUnionType }
func (t *UnionType) exprNode()     {}
func (t *UnionType) typeExprNode() {}

type ArrayType struct {
	baseNode
	Element TypeExpr
}

func (t *ArrayType) Kind() Kind    { return KindArrayType }
func (t *ArrayType) exprNode()     {}
func (t *ArrayType) typeExprNode() {}

type StructField struct {
	Name string
	Type TypeExpr
}

type StructType struct {
	baseNode
	Fields []StructField
}

func (t *StructType) Kind() Kind    { return KindStructType }
func (t *StructType) exprNode()     {}
func (t *StructType) typeExprNode() {}

type TupleType struct {
	baseNode
	Elements []TypeExpr
}

func (t *TupleType) Kind() Kind    { return KindTupleType }
func (t *TupleType) exprNode()     {}
func (t *TupleType) typeExprNode() {}

type FuncType struct {
	baseNode
	Params []TypeExpr
	Return TypeExpr
}

func (t *FuncType) Kind() Kind    { return KindFuncType }
func (t *FuncType) exprNode()     {}
func (t *FuncType) typeExprNode() {}

// GroupType is a single parenthesized type, kept distinct from a one-element
// tuple so the resolver can tell "(int)" (just int) from a real 1-tuple,
// preserving the user's intent through parsing.
type GroupType struct {
	baseNode
	Inner TypeExpr
}

func (t *GroupType) Kind() Kind    { return KindGroupType }
func (t *GroupType) exprNode()     {}
func (t *GroupType) typeExprNode() {}

type NamedType struct {
	baseNode
	Name     string
	TypeArgs []TypeExpr // nil if not generic-instantiated
}

func (t *NamedType) Kind() Kind    { return KindNamedType }
func (t *NamedType) exprNode()     {}
func (t *NamedType) typeExprNode() {}

// --- Value expressions ---

type NumberLit struct {
	baseNode
	Raw     string
	IsFloat bool
	Int     int64
	Float   float64
}

func (e *NumberLit) Kind() Kind { return KindNumberLit }
func (e *NumberLit) exprNode()  {}

type StringLit struct {
	baseNode
	Value string
}

func (e *StringLit) Kind() Kind { return KindStringLit }
func (e *StringLit) exprNode()  {}

type CharLit struct {
	baseNode
	Value rune
}

func (e *CharLit) Kind() Kind { return KindCharLit }
func (e *CharLit) exprNode()  {}

type BoolLit struct {
	baseNode
	Value bool
}

func (e *BoolLit) Kind() Kind { return KindBoolLit }
func (e *BoolLit) exprNode()  {}

type IdentifierExpr struct {
	baseNode
	Name string
}

func (e *IdentifierExpr) Kind() Kind { return KindIdentifierExpr }
func (e *IdentifierExpr) exprNode()  {}

// BinaryExpr is produced by the precedence resolver re-associating a flat
// operator spine; the parser never builds one directly.
type BinaryExpr struct {
	baseNode
	Left     Expr
	Operator string
	Right    Expr
}

func (e *BinaryExpr) Kind() Kind { return KindBinaryExpr }
func (e *BinaryExpr) exprNode()  {}

// OperatorLink is one (operator, right-hand operand) pair in a flat,
// left-associatively-parsed binary expression spine.
type OperatorLink struct {
	Operator string
	OpSpan   srcpos.Span
	Right    Expr
}

// FlatBinaryExpr is what the reducer builds directly from the parser's flat
// left-spine: First op0 Rest[0].Right op1 Rest[1].Right ... It carries no
// precedence or associativity information yet — package precedence
// replaces every FlatBinaryExpr in a tree with a properly shaped BinaryExpr
// (or, for '=', an AssignExpr) as its one job.
type FlatBinaryExpr struct {
	baseNode
	First Expr
	Rest  []OperatorLink
}

func (e *FlatBinaryExpr) Kind() Kind { return KindFlatBinaryExpr }
func (e *FlatBinaryExpr) exprNode()  {}

// AssignExpr is produced by the precedence resolver when it encounters '='
// in a flat spine — assignment sits at the lowest precedence level, which
// precedence.NewTable makes left-associative, but is semantically distinct
// enough from other binary operators (its left side must be an assignable
// place, not just any expression) to get its own node rather than reusing
// BinaryExpr with Operator "=". Its Kind is KindBinaryExpr; there is no
// separate assignment Kind.
type AssignExpr struct {
	baseNode
	Target Expr
	Value  Expr
}

func (e *AssignExpr) Kind() Kind { return KindBinaryExpr }
func (e *AssignExpr) exprNode()  {}

type UnaryExpr struct {
	baseNode
	Operator string
	Operand  Expr
}

func (e *UnaryExpr) Kind() Kind { return KindUnaryExpr }
func (e *UnaryExpr) exprNode()  {}

type CallExpr struct {
	baseNode
	Callee Expr
	Args   []Expr
}

func (e *CallExpr) Kind() Kind { return KindCallExpr }
func (e *CallExpr) exprNode()  {}

type IndexExpr struct {
	baseNode
	Object Expr
	Index  Expr
}

func (e *IndexExpr) Kind() Kind { return KindIndexExpr }
func (e *IndexExpr) exprNode()  {}

type MemberExpr struct {
	baseNode
	Object Expr
	Member string
}

func (e *MemberExpr) Kind() Kind { return KindMemberExpr }
func (e *MemberExpr) exprNode()  {}

type ArrayLit struct {
	baseNode
	Elements []Expr
}

func (e *ArrayLit) Kind() Kind { return KindArrayLit }
func (e *ArrayLit) exprNode()  {}

type TupleLit struct {
	baseNode
	Elements []Expr
}

func (e *TupleLit) Kind() Kind { return KindTupleLit }
func (e *TupleLit) exprNode()  {}

type FieldInit struct {
	Name  string
	Value Expr
}

type StructLit struct {
	baseNode
	TypeName string
	Fields   []FieldInit
}

func (e *StructLit) Kind() Kind { return KindStructLit }
func (e *StructLit) exprNode()  {}

// GroupExpr preserves an explicit parenthesization: no semantic effect, but
// worth keeping for diagnostics that want to show exactly what the user
// wrote.
type GroupExpr struct {
	baseNode
	Inner Expr
}

func (e *GroupExpr) Kind() Kind { return KindGroupExpr }
func (e *GroupExpr) exprNode()  {}

type IfExpr struct {
	baseNode
	Condition Expr
	Then      Expr
	Else      Expr
}

func (e *IfExpr) Kind() Kind { return KindIfExpr }
func (e *IfExpr) exprNode()  {}

type LetExpr struct {
	baseNode
	Name       string
	Annotation TypeExpr
	Value      Expr
	Body       Expr
}

func (e *LetExpr) Kind() Kind { return KindLetExpr }
func (e *LetExpr) exprNode()  {}

// LambdaExpr is an anonymous function value: `(params) => body`. Unlike
// FuncDecl it has no name and no type parameters — generics are a
// declaration-level feature, not something an inline lambda carries.
type LambdaExpr struct {
	baseNode
	Params []Param
	Body   Expr
}

func (e *LambdaExpr) Kind() Kind { return KindLambdaExpr }
func (e *LambdaExpr) exprNode()  {}

// VarDeclExpr is the "var-declaration" expression: `let name = value` with
// no trailing `in body`. Unlike LetExpr (which scopes its binding to an
// explicit body expression) a var-declaration's scope is "the rest of the
// enclosing block" — the type resolver's block walk is what actually threads
// that scope through; the grammar shares one production for both forms and
// only the trailing `in` clause tells them apart.
type VarDeclExpr struct {
	baseNode
	Name       string
	Annotation TypeExpr // nil if not annotated
	Value      Expr
}

func (e *VarDeclExpr) Kind() Kind { return KindVarDeclExpr }
func (e *VarDeclExpr) exprNode()  {}

// BlockExpr lets a BlockStmt appear in expression position (a function body,
// a lambda body, an if-branch) — the language has no separate statement
// syntax at the top of a declaration body, only this wrapper.
type BlockExpr struct {
	baseNode
	Block *BlockStmt
}

func (e *BlockExpr) Kind() Kind { return KindBlockExpr }
func (e *BlockExpr) exprNode()  {}

// --- Statements ---

// BlockStmt is a brace-delimited statement sequence. Reduce silently
// discards nested Noops and collapses an empty block to a single Noop when
// it builds one.
type BlockStmt struct {
	baseNode
	Stmts []Stmt
}

func (s *BlockStmt) Kind() Kind { return KindBlockStmt }
func (s *BlockStmt) stmtNode()  {}

type BreakStmt struct{ baseNode }

func (s *BreakStmt) Kind() Kind { return KindBreakStmt }
func (s *BreakStmt) stmtNode()  {}

type ContinueStmt struct{ baseNode }

func (s *ContinueStmt) Kind() Kind { return KindContinueStmt }
func (s *ContinueStmt) stmtNode()  {}

// ReturnStmt's Value is nil for a bare `return`.
type ReturnStmt struct {
	baseNode
	Value Expr
}

func (s *ReturnStmt) Kind() Kind { return KindReturnStmt }
func (s *ReturnStmt) stmtNode()  {}

type ThrowStmt struct {
	baseNode
	Value Expr
}

func (s *ThrowStmt) Kind() Kind { return KindThrowStmt }
func (s *ThrowStmt) stmtNode()  {}

type WhileStmt struct {
	baseNode
	Cond Expr
	Body *BlockStmt
}

func (s *WhileStmt) Kind() Kind { return KindWhileStmt }
func (s *WhileStmt) stmtNode()  {}

type DoWhileStmt struct {
	baseNode
	Body *BlockStmt
	Cond Expr
}

func (s *DoWhileStmt) Kind() Kind { return KindDoWhileStmt }
func (s *DoWhileStmt) stmtNode()  {}

// ForStmt is the language's one loop-header shape, a for-in iteration over
// an array value: `for (name in iterable) { ... }`. A C-style
// init/cond/post header isn't workable here: every `;` lexes as a
// statement-terminating newline token, leaving no way to separate three
// clauses on one line, so for-in over an array is the only form that needs
// no such clauses.
type ForStmt struct {
	baseNode
	Var      string
	Iterable Expr
	Body     *BlockStmt
}

func (s *ForStmt) Kind() Kind { return KindForStmt }
func (s *ForStmt) stmtNode()  {}

// TryCatchStmt's Finally is nil when no `finally` clause was written.
type TryCatchStmt struct {
	baseNode
	Try        *BlockStmt
	CatchParam string
	Catch      *BlockStmt
	Finally    *BlockStmt
}

func (s *TryCatchStmt) Kind() Kind { return KindTryCatchStmt }
func (s *TryCatchStmt) stmtNode()  {}

// NoopStmt is an empty statement: a bare `;` (which lexes as a Newline
// token) with nothing before it.
type NoopStmt struct{ baseNode }

func (s *NoopStmt) Kind() Kind { return KindNoopStmt }
func (s *NoopStmt) stmtNode()  {}

// ExprStmt wraps a value expression evaluated for its effect (a call, an
// assignment, or a var-declaration that isn't itself a Stmt node).
type ExprStmt struct {
	baseNode
	Expr Expr
}

func (s *ExprStmt) Kind() Kind { return KindExprStmt }
func (s *ExprStmt) stmtNode()  {}

// File is the reduced form of one source file: its declarations plus the
// locations map the reducer populated for every node it built.
type File struct {
	Path         string
	Declarations []Decl
	Locations    map[Node]srcpos.Span
}
