package resolve

import "fmt"

// ResolveBinary implements operator typing for every binary
// operator the lexer can produce. Either operand already being unknown
// short-circuits to unknown rather than reporting a second error on top of
// whatever produced it.
func ResolveBinary(op string, left, right Type) (Type, error) {
	if _, ok := left.(*UnknownType); ok {
		return Unknown, nil
	}
	if _, ok := right.(*UnknownType); ok {
		return Unknown, nil
	}
	switch op {
	case "+":
		if la, ok := left.(*ArrayType); ok {
			if ra, ok2 := right.(*ArrayType); ok2 {
				if ub := upperBound(la.Element, ra.Element); ub != nil {
					return &ArrayType{Element: ub}, nil
				}
			}
		}
		return promoteArith(op, left, right)
	case "-", "*", "/", "%":
		return promoteArith(op, left, right)
	case "&", "|", "^":
		li, lok := left.(*IntegerType)
		ri, rok := right.(*IntegerType)
		if lok && rok && !li.Signed && !ri.Signed && li.Size == ri.Size {
			return &IntegerType{Size: li.Size, Signed: false}, nil
		}
		return nil, fmt.Errorf("%q requires equal-sized unsigned integer operands, got %s and %s", op, left, right)
	case "&&", "||":
		_, lok := left.(*BoolType)
		_, rok := right.(*BoolType)
		if lok && rok {
			return Bool, nil
		}
		return nil, fmt.Errorf("%q requires boolean operands, got %s and %s", op, left, right)
	case "==", "!=":
		if IsComparable(left) && IsComparable(right) {
			return Bool, nil
		}
		return nil, fmt.Errorf("%q requires comparable operands with an upper bound other than any, got %s and %s", op, left, right)
	case "<", ">", "<=", ">=":
		if IsOrdered(left) && IsOrdered(right) {
			return Bool, nil
		}
		return nil, fmt.Errorf("%q requires ordered operands, got %s and %s", op, left, right)
	case "$":
		return resolveApply(left, right)
	default:
		return nil, fmt.Errorf("unknown binary operator %q", op)
	}
}

// ResolveUnary implements the unary rule: "+"/"-" upgrade an
// unsigned integer operand to the next larger signed size (64-bit unsigned
// stays at 64-bit signed); "!" requires bool; "~" requires an integer.
func ResolveUnary(op string, operand Type) (Type, error) {
	if _, ok := operand.(*UnknownType); ok {
		return Unknown, nil
	}
	switch op {
	case "+", "-":
		if i, ok := operand.(*IntegerType); ok {
			if i.Signed {
				return i, nil
			}
			return &IntegerType{Size: nextSize(i.Size), Signed: true}, nil
		}
		if f, ok := operand.(*FloatType); ok {
			return f, nil
		}
		return nil, fmt.Errorf("unary %q requires a numeric operand, got %s", op, operand)
	case "!":
		if _, ok := operand.(*BoolType); ok {
			return Bool, nil
		}
		return nil, fmt.Errorf("unary ! requires a boolean operand, got %s", operand)
	case "~":
		if i, ok := operand.(*IntegerType); ok {
			return i, nil
		}
		return nil, fmt.Errorf("unary ~ requires an integer operand, got %s", operand)
	default:
		return nil, fmt.Errorf("unknown unary operator %q", op)
	}
}

func promoteArith(op string, left, right Type) (Type, error) {
	if t, ok := promoteNumeric(left, right); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%q requires numeric operands, got %s and %s", op, left, right)
}

// promoteNumeric implements the numeric-binary-promotion rule: float/float
// promotes to the larger float size; int/float promotes to that float;
// int/int promotes per promoteInts.
func promoteNumeric(left, right Type) (Type, bool) {
	lf, lIsFloat := left.(*FloatType)
	rf, rIsFloat := right.(*FloatType)
	li, lIsInt := left.(*IntegerType)
	ri, rIsInt := right.(*IntegerType)
	switch {
	case lIsFloat && rIsFloat:
		size := lf.Size
		if rf.Size > size {
			size = rf.Size
		}
		return &FloatType{Size: size}, true
	case lIsFloat && rIsInt:
		return lf, true
	case lIsInt && rIsFloat:
		return rf, true
	case lIsInt && rIsInt:
		return promoteInts(li, ri), true
	default:
		return nil, false
	}
}

// promoteInts implements "promotes to the larger size, prefers signed,
// upgrades the unsigned operand to the next size if size-tied with a
// signed". The unsized "int" dominates any fixed-width
// integer, since its size domain is ∞.
func promoteInts(a, b *IntegerType) *IntegerType {
	if a.Size == SizeArbitrary || b.Size == SizeArbitrary {
		return Int
	}
	if a.Signed == b.Signed {
		size := a.Size
		if b.Size > size {
			size = b.Size
		}
		return &IntegerType{Size: size, Signed: a.Signed}
	}
	if a.Size == b.Size {
		return &IntegerType{Size: nextSize(a.Size), Signed: true}
	}
	size := a.Size
	if b.Size > size {
		size = b.Size
	}
	return &IntegerType{Size: size, Signed: true}
}

func nextSize(size int) int {
	switch size {
	case 8:
		return 16
	case 16:
		return 32
	case 32:
		return 64
	default:
		return 64
	}
}

// upperBound returns a type both a and b are assignable to (directly or via
// each other), or nil if none exists — the "share an upper
// bound" and §4.3 equality's "upper bound other than any".
func upperBound(a, b Type) Type {
	if a.Equals(b) {
		return a
	}
	if a.AssignableTo(b) {
		return b
	}
	if b.AssignableTo(a) {
		return a
	}
	return nil
}

// resolveApply implements the "$" apply rule: the left-hand side must
// be a function whose first parameter accepts right; the result is the
// function's return type if that was its last parameter, otherwise a
// residual function type over the remaining parameters.
func resolveApply(left, right Type) (Type, error) {
	fn, ok := left.(*FunctionType)
	if !ok {
		return nil, fmt.Errorf("apply (\"$\") requires a function left-hand side, got %s", left)
	}
	if len(fn.Params) == 0 {
		return nil, fmt.Errorf("apply (\"$\"): %s takes no parameters", left)
	}
	if !right.AssignableTo(fn.Params[0]) {
		return nil, fmt.Errorf("apply (\"$\"): argument of type %s is not assignable to parameter type %s", right, fn.Params[0])
	}
	remaining := fn.Params[1:]
	if len(remaining) == 0 {
		return fn.Return, nil
	}
	return &FunctionType{Params: append([]Type{}, remaining...), Return: fn.Return}, nil
}
