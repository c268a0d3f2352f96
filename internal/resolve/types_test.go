package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Direct type-algebra tests exercise Type values built by hand, without
// running the full pipeline, the same way internal/module's fakeFS tests
// isolate the loader from the lexer/parser.

func TestUnionType_AssignableTo_AcceptsAnyMember(t *testing.T) {
	u := &UnionType{Members: []Type{I32, Bool}}
	require.True(t, I32.AssignableTo(u))
	require.True(t, Bool.AssignableTo(u))
	require.False(t, F32.AssignableTo(u))
}

func TestUnionType_AssignableTo_UnionToUnionRequiresEveryMemberAccepted(t *testing.T) {
	wide := &UnionType{Members: []Type{I32, Bool, F32}}
	narrow := &UnionType{Members: []Type{I32, Bool}}
	require.True(t, narrow.AssignableTo(wide))
	require.False(t, wide.AssignableTo(narrow))
}

func TestFunctionType_AssignableTo_ContravariantParamsCovariantReturn(t *testing.T) {
	// "any" is accepted by every type in both directions, so the parameter
	// types here are unions, whose assignability runs one way only.
	wideParam := &FunctionType{Params: []Type{&UnionType{Members: []Type{I32, Bool}}}, Return: I32}
	narrowParam := &FunctionType{Params: []Type{&UnionType{Members: []Type{I32}}}, Return: I32}
	// A function accepting i32 | bool can stand in wherever one accepting
	// only i32 is expected (contravariance): callers only ever pass an i32.
	require.True(t, wideParam.AssignableTo(narrowParam))
	require.False(t, narrowParam.AssignableTo(wideParam))
}

func TestArrayType_AssignableTo_Covariant(t *testing.T) {
	// Union elements, not "any": any is accepted by every type in both
	// directions, so it cannot show a one-way relation.
	narrow := &UnionType{Members: []Type{I32}}
	wide := &UnionType{Members: []Type{I32, Bool}}
	require.True(t, (&ArrayType{Element: narrow}).AssignableTo(&ArrayType{Element: wide}))
	require.False(t, (&ArrayType{Element: wide}).AssignableTo(&ArrayType{Element: narrow}))
}

func TestPromoteInts_SizeTiedSignedUnsignedUpgradesToNextSize(t *testing.T) {
	// Upgrades the unsigned operand to the next size when size-tied with a
	// signed operand.
	result := promoteInts(U32, I32)
	require.Equal(t, 64, result.Size)
	require.True(t, result.Signed)
}

func TestPromoteInts_UnsizedIntDominates(t *testing.T) {
	require.Same(t, Int, promoteInts(Int, U8))
	require.Same(t, Int, promoteInts(I64, Int))
}

func TestResolveUnary_UnsignedUpgradesToNextLargerSigned(t *testing.T) {
	result, err := ResolveUnary("-", U32)
	require.NoError(t, err)
	i, ok := result.(*IntegerType)
	require.True(t, ok)
	require.Equal(t, 64, i.Size)
	require.True(t, i.Signed)
}

func TestResolveUnary_U64StaysAt64(t *testing.T) {
	result, err := ResolveUnary("+", U64)
	require.NoError(t, err)
	i := result.(*IntegerType)
	require.Equal(t, 64, i.Size)
	require.True(t, i.Signed)
}

// Pipeline tests exercise generic instantiation and cycle detection
// end-to-end, reusing memFS/load from statements_test.go.

func TestGenericInstantiation_Valid(t *testing.T) {
	bag := load(t, ""+
		"type Box<T> = { value: T }\n"+
		"type IntBox = Box<int>\n"+
		"const b = IntBox{ value: 1 }\n")
	require.Equal(t, 0, bag.Len(), "%v", bag.Items())
}

func TestGenericInstantiation_WrongArgumentCount(t *testing.T) {
	bag := load(t, ""+
		"type Box<T> = { value: T }\n"+
		"type Bad = Box<int, bool>\n")
	require.Greater(t, bag.Len(), 0)
	require.True(t, anyMessageHasPrefix(bag, "invalid-type-argument-count"), "%v", bag.Items())
}

func TestGenericInstantiation_ConstraintViolation(t *testing.T) {
	bag := load(t, ""+
		"type Box<T: int> = { value: T }\n"+
		"type Bad = Box<bool>\n")
	require.Greater(t, bag.Len(), 0)
	require.True(t, anyMessageHasPrefix(bag, "invalid-type-argument:"), "%v", bag.Items())
}

// TestTypeCycle_LegalSelfReferenceViaArray verifies that
// "type A = B[]; type B = A[];" succeeds, with the inner use resolving to a
// recursive back-edge rather than looping forever.
func TestTypeCycle_LegalSelfReferenceViaArray(t *testing.T) {
	bag := load(t, ""+
		"type A = B[]\n"+
		"type B = A[]\n"+
		"const dummy = 1\n")
	require.Equal(t, 0, bag.Len(), "%v", bag.Items())
}

// TestConstCycle_IsCircularDependencyError verifies that, unlike a type
// cycle, a constant cycle is illegal: constants cannot be recursively
// defined.
func TestConstCycle_IsCircularDependencyError(t *testing.T) {
	bag := load(t, ""+
		"const A = B\n"+
		"const B = A\n")
	require.Greater(t, bag.Len(), 0)
	require.True(t, anyMessageHasPrefix(bag, "circular-dependency"), "%v", bag.Items())
}
