// Package resolve implements the type algebra (semantic types, distinct
// from the syntactic TypeExpr nodes ast produces) and the resolver that
// computes and caches each declaration's resolved type.
//
// Semantic types are modeled as a Type interface, an unexported kind()
// discriminator, and struct-per-kind values with pointer identity. Struct
// types are fully structural (a struct type is "field → type" with no
// name, so two struct types are equal exactly when their fields match).
// The algebra also covers sized/signed integers, tuples, unions,
// generics/specific instantiations, a recursive back-edge marker,
// namespaces, and the unknown poison sentinel.
package resolve

import (
	"fmt"
	"strings"

	"github.com/hassan/veyra/internal/ast"
)

// Type is the interface every semantic type implements: a String/Equals/
// AssignableTo/kind shape.
type Type interface {
	String() string
	Equals(other Type) bool
	AssignableTo(other Type) bool
	kind() Kind
}

// Kind is the internal discriminator used only for quick type-switch-free
// checks; external code should still type-switch on the concrete Type.
type Kind int

const (
	KindInvalid Kind = iota
	KindInteger
	KindFloat
	KindChar
	KindBool
	KindArray
	KindTuple
	KindStruct
	KindFunction
	KindUnion
	KindGeneric
	KindSpecific
	KindRecursive
	KindNamespace
	KindUnknown
	KindAny
)

// SizeArbitrary marks the unsized "int" primitive (the integer size
// domain {8,16,32,64,∞}); every other IntegerType carries an explicit bit
// width.
const SizeArbitrary = -1

// IntegerType is integer(size, signed).
type IntegerType struct {
	Size   int // 8, 16, 32, 64, or SizeArbitrary for "int"
	Signed bool
}

func (t *IntegerType) String() string {
	if t.Size == SizeArbitrary {
		return "int"
	}
	prefix := "u"
	if t.Signed {
		prefix = "i"
	}
	return fmt.Sprintf("%s%d", prefix, t.Size)
}

func (t *IntegerType) Equals(other Type) bool {
	o, ok := other.(*IntegerType)
	return ok && o.Size == t.Size && o.Signed == t.Signed
}

func (t *IntegerType) AssignableTo(other Type) bool {
	if isAny(other) {
		return true
	}
	return t.Equals(other)
}

func (t *IntegerType) kind() Kind { return KindInteger }

// FloatType is float(size); size is 32 or 64.
type FloatType struct{ Size int }

func (t *FloatType) String() string { return fmt.Sprintf("f%d", t.Size) }
func (t *FloatType) Equals(other Type) bool {
	o, ok := other.(*FloatType)
	return ok && o.Size == t.Size
}
func (t *FloatType) AssignableTo(other Type) bool { return isAny(other) || t.Equals(other) }
func (t *FloatType) kind() Kind                   { return KindFloat }

type CharType struct{}

func (t *CharType) String() string                { return "char" }
func (t *CharType) Equals(other Type) bool         { _, ok := other.(*CharType); return ok }
func (t *CharType) AssignableTo(other Type) bool   { return isAny(other) || t.Equals(other) }
func (t *CharType) kind() Kind                     { return KindChar }

type BoolType struct{}

func (t *BoolType) String() string              { return "bool" }
func (t *BoolType) Equals(other Type) bool       { _, ok := other.(*BoolType); return ok }
func (t *BoolType) AssignableTo(other Type) bool { return isAny(other) || t.Equals(other) }
func (t *BoolType) kind() Kind                   { return KindBool }

// ArrayType is array(element); the algebra has no fixed-size variant,
// and "string" is modelled structurally as array(char) rather than a
// distinct primitive — see NewString.
type ArrayType struct{ Element Type }

func (t *ArrayType) String() string { return t.Element.String() + "[]" }
func (t *ArrayType) Equals(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && t.Element.Equals(o.Element)
}

// AssignableTo is covariant in the element type.
func (t *ArrayType) AssignableTo(other Type) bool {
	if isAny(other) {
		return true
	}
	o, ok := other.(*ArrayType)
	return ok && t.Element.AssignableTo(o.Element)
}
func (t *ArrayType) kind() Kind { return KindArray }

// IsString reports whether t is the array(char) encoding of the "string"
// primitive.
func IsString(t Type) bool {
	a, ok := t.(*ArrayType)
	return ok && a.Element.Equals(Char)
}

// NewString is the array(char) type standing in for the "string" primitive.
func NewString() *ArrayType { return &ArrayType{Element: Char} }

type TupleType struct{ Elements []Type }

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *TupleType) Equals(other Type) bool {
	o, ok := other.(*TupleType)
	if !ok || len(o.Elements) != len(t.Elements) {
		return false
	}
	for i, e := range t.Elements {
		if !e.Equals(o.Elements[i]) {
			return false
		}
	}
	return true
}
func (t *TupleType) AssignableTo(other Type) bool {
	if isAny(other) {
		return true
	}
	o, ok := other.(*TupleType)
	if !ok || len(o.Elements) != len(t.Elements) {
		return false
	}
	for i, e := range t.Elements {
		if !e.AssignableTo(o.Elements[i]) {
			return false
		}
	}
	return true
}
func (t *TupleType) kind() Kind { return KindTuple }

// Void is the empty tuple, standing in for the "void" primitive.
func NewVoid() *TupleType { return &TupleType{} }

// StructField is one field → type mapping.
type StructField struct {
	Name string
	Type Type
}

// StructType is struct(field → type): the algebra has no struct name, so
// structs are compared structurally, by field name and type, in order.
type StructType struct{ Fields []StructField }

func (t *StructType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + " " + f.Type.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}
func (t *StructType) Equals(other Type) bool {
	o, ok := other.(*StructType)
	if !ok || len(o.Fields) != len(t.Fields) {
		return false
	}
	for i, f := range t.Fields {
		if f.Name != o.Fields[i].Name || !f.Type.Equals(o.Fields[i].Type) {
			return false
		}
	}
	return true
}

// AssignableTo is structural: t and other must have the same number of
// fields, with the same names in the same order, and each of t's field types
// must be assignable to the corresponding field type of other.
func (t *StructType) AssignableTo(other Type) bool {
	if isAny(other) {
		return true
	}
	o, ok := other.(*StructType)
	if !ok || len(o.Fields) != len(t.Fields) {
		return false
	}
	for i, f := range t.Fields {
		if f.Name != o.Fields[i].Name || !f.Type.AssignableTo(o.Fields[i].Type) {
			return false
		}
	}
	return true
}
func (t *StructType) kind() Kind { return KindStruct }

func (t *StructType) LookupField(name string) *StructField {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}
	return nil
}

// FunctionType is function(params, return), structurally typed.
type FunctionType struct {
	Params []Type
	Return Type
}

func (t *FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(parts, ", "), t.Return.String())
}
func (t *FunctionType) Equals(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok || len(o.Params) != len(t.Params) || !t.Return.Equals(o.Return) {
		return false
	}
	for i, p := range t.Params {
		if !p.Equals(o.Params[i]) {
			return false
		}
	}
	return true
}

// AssignableTo is contravariant in parameters, covariant in return
//
func (t *FunctionType) AssignableTo(other Type) bool {
	if isAny(other) {
		return true
	}
	o, ok := other.(*FunctionType)
	if !ok || len(o.Params) != len(t.Params) {
		return false
	}
	if !t.Return.AssignableTo(o.Return) {
		return false
	}
	for i, p := range t.Params {
		if !o.Params[i].AssignableTo(p) {
			return false
		}
	}
	return true
}
func (t *FunctionType) kind() Kind { return KindFunction }

// UnionType is union(types): a value of any member type is assignable to
// the union, and the union is assignable wherever every member is.
type UnionType struct{ Members []Type }

func (t *UnionType) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}
func (t *UnionType) Equals(other Type) bool {
	o, ok := other.(*UnionType)
	if !ok || len(o.Members) != len(t.Members) {
		return false
	}
	for i, m := range t.Members {
		if !m.Equals(o.Members[i]) {
			return false
		}
	}
	return true
}

// AssignableTo: a union is assignable to other if every member is
// assignable to other (unions accept any of their members —
// the converse direction, checked by accepts below, covers the other way).
func (t *UnionType) AssignableTo(other Type) bool {
	if isAny(other) {
		return true
	}
	if o, ok := other.(*UnionType); ok {
		return o.accepts(t)
	}
	for _, m := range t.Members {
		if !m.AssignableTo(other) {
			return false
		}
	}
	return true
}

// accepts reports whether value is assignable to t, either directly or as
// every member of a union value.
func (t *UnionType) accepts(value Type) bool {
	if v, ok := value.(*UnionType); ok {
		for _, m := range v.Members {
			if !t.accepts(m) {
				return false
			}
		}
		return true
	}
	for _, m := range t.Members {
		if value.AssignableTo(m) {
			return true
		}
	}
	return false
}
func (t *UnionType) kind() Kind { return KindUnion }

// GenericType is generic(type-parameter list, definition): an uninstantiated
// generic type declaration.
type GenericType struct {
	Params []ast.TypeParam
	Def    *ast.TypeDecl
}

func (t *GenericType) String() string { return t.Def.Name + "<...>" }
func (t *GenericType) Equals(other Type) bool {
	o, ok := other.(*GenericType)
	return ok && o.Def == t.Def
}
func (t *GenericType) AssignableTo(other Type) bool { return isAny(other) || t.Equals(other) }
func (t *GenericType) kind() Kind                   { return KindGeneric }

// SpecificType is a generic instantiated with concrete type arguments
// (generic instantiation): Body is the generic's definition
// with Params substituted by Args throughout.
type SpecificType struct {
	Generic *GenericType
	Args    []Type
	Body    Type
}

func (t *SpecificType) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Generic.Def.Name, strings.Join(parts, ", "))
}
func (t *SpecificType) Equals(other Type) bool {
	o, ok := other.(*SpecificType)
	if !ok || o.Generic != t.Generic || len(o.Args) != len(t.Args) {
		return false
	}
	for i, a := range t.Args {
		if !a.Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

// AssignableTo delegates to the substituted Body, retaining the argument
// variance the body's structure already encodes (array covariance, function
// contravariance, …).
func (t *SpecificType) AssignableTo(other Type) bool {
	if isAny(other) {
		return true
	}
	if o, ok := other.(*SpecificType); ok && o.Generic == t.Generic {
		return t.Body.AssignableTo(o.Body)
	}
	return t.Body.AssignableTo(other)
}
func (t *SpecificType) kind() Kind { return KindSpecific }

// RecursiveType is the back-edge placeholder returned when resolving a type
// declaration re-enters itself (legal for
// types, unlike constants).
type RecursiveType struct{ Decl *ast.TypeDecl }

func (t *RecursiveType) String() string              { return t.Decl.Name + " (recursive)" }
func (t *RecursiveType) Equals(other Type) bool       { o, ok := other.(*RecursiveType); return ok && o.Decl == t.Decl }
func (t *RecursiveType) AssignableTo(other Type) bool { return isAny(other) || t.Equals(other) }
func (t *RecursiveType) kind() Kind                   { return KindRecursive }

// NamespaceType is namespace(module id): the type of a wildcard-imported
// alias, whose members resolve against the target module.
type NamespaceType struct{ ModulePath string }

func (t *NamespaceType) String() string              { return "namespace " + t.ModulePath }
func (t *NamespaceType) Equals(other Type) bool       { o, ok := other.(*NamespaceType); return ok && o.ModulePath == t.ModulePath }
func (t *NamespaceType) AssignableTo(other Type) bool { return isAny(other) || t.Equals(other) }
func (t *NamespaceType) kind() Kind                   { return KindNamespace }

// UnknownType is the error-poisoned sentinel: it is always mutually
// assignable with everything so one error never cascades into dozens
//
type UnknownType struct{}

func (t *UnknownType) String() string              { return "<unknown>" }
func (t *UnknownType) Equals(other Type) bool       { return true }
func (t *UnknownType) AssignableTo(other Type) bool { return true }
func (t *UnknownType) kind() Kind                   { return KindUnknown }

// AnyType accepts, and is accepted by, everything (
// "Assignability").
type AnyType struct{}

func (t *AnyType) String() string              { return "any" }
func (t *AnyType) Equals(other Type) bool       { _, ok := other.(*AnyType); return ok }
func (t *AnyType) AssignableTo(other Type) bool { return true }
func (t *AnyType) kind() Kind                   { return KindAny }

func isAny(t Type) bool { _, ok := t.(*AnyType); return ok }

// Predefined singletons for each primitive type, as package-level
// instances (U8...I64, Int, F32, F64, Char, Bool, Any, Unknown).
var (
	U8      = &IntegerType{Size: 8, Signed: false}
	I8      = &IntegerType{Size: 8, Signed: true}
	U16     = &IntegerType{Size: 16, Signed: false}
	I16     = &IntegerType{Size: 16, Signed: true}
	U32     = &IntegerType{Size: 32, Signed: false}
	I32     = &IntegerType{Size: 32, Signed: true}
	U64     = &IntegerType{Size: 64, Signed: false}
	I64     = &IntegerType{Size: 64, Signed: true}
	Int     = &IntegerType{Size: SizeArbitrary, Signed: true}
	F32     = &FloatType{Size: 32}
	F64     = &FloatType{Size: 64}
	Char    = &CharType{}
	Bool    = &BoolType{}
	Any     = &AnyType{}
	Unknown = &UnknownType{}
)

var primitives = map[string]Type{
	"u8": U8, "i8": I8, "u16": U16, "i16": I16,
	"u32": U32, "i32": I32, "u64": U64, "i64": I64,
	"int": Int, "f32": F32, "f64": F64,
	"char": Char, "bool": Bool, "any": Any,
}

// LookupPrimitive returns the singleton for one of the primitive
// type names, plus "string" (array(char)) and "void" (the empty tuple).
func LookupPrimitive(name string) (Type, bool) {
	switch name {
	case "string":
		return NewString(), true
	case "void":
		return NewVoid(), true
	}
	t, ok := primitives[name]
	return t, ok
}

// IsNumeric reports whether t is an integer or float type.
func IsNumeric(t Type) bool {
	switch t.(type) {
	case *IntegerType, *FloatType:
		return true
	default:
		return false
	}
}

// IsComparable reports whether t supports == and !=, requiring "an upper
// bound other than any" — concretely,
// numbers, characters, booleans and strings.
func IsComparable(t Type) bool {
	if isAny(t) {
		return false
	}
	switch {
	case IsNumeric(t):
		return true
	case IsString(t):
		return true
	}
	switch t.(type) {
	case *CharType, *BoolType:
		return true
	default:
		return false
	}
}

// IsOrdered reports whether t supports <, <=, >, >=: numbers, characters and
// strings (comparison requires numbers or characters).
func IsOrdered(t Type) bool {
	if IsNumeric(t) || IsString(t) {
		return true
	}
	_, ok := t.(*CharType)
	return ok
}
