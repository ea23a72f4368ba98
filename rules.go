package xform

import (
	"strconv"

	"golang.org/x/exp/slices"
)

// Shifts by less than this amount are treated as address scaling and turned
// into multiplications. Larger shifts are usually bitfield or flag
// manipulation and are left alone.
const maxScaleShift = 5

// castTypes maps bitfield sizes to the unsigned type of the same width.
var castTypes = map[int64]string{
	Width8:  "u8",
	Width16: "u16",
	Width32: "u32",
}

// SubToAdd rewrites "a - b - c" as "a + -b + -c".
func SubToAdd(e Expr) (Expr, bool) {
	op, ok := e.(*OpExpr)
	if !ok || op.Op != SUB {
		return nil, false
	}

	args := make([]Expr, len(op.Args))
	args[0] = op.Args[0]
	for i, arg := range op.Args[1:] {
		args[i+1] = Neg(arg)
	}
	return NewOpExpr(ADD, args...), true
}

// SubConstToAdd rewrites "a - k" as "a + -k" where k is a value.
func SubConstToAdd(e Expr) (Expr, bool) {
	op, ok := e.(*OpExpr)
	if !ok || op.Op != SUB || !op.is2Args() {
		return nil, false
	}
	if v, ok := op.Args[1].(Value); ok {
		return NewOpExpr(ADD, op.Args[0], v.Neg()), true
	}
	return nil, false
}

// CommutativeNormalize sorts the operands of commutative operators using
// CompareExpr.
func CommutativeNormalize(e Expr) (Expr, bool) {
	op, ok := e.(*OpExpr)
	if !ok || !op.Op.IsCommutative() || slices.IsSortedFunc(op.Args, lessExpr) {
		return nil, false
	}

	args := slices.Clone(op.Args)
	slices.SortStableFunc(args, lessExpr)
	return NewOpExpr(op.Op, args...), true
}

// AssociativeAdd rewrites "(a + b) + c" as "a + b + c".
func AssociativeAdd(e Expr) (Expr, bool) {
	op, ok := e.(*OpExpr)
	if !ok || op.Op != ADD {
		return nil, false
	}
	inner, ok := op.Args[0].(*OpExpr)
	if !ok || inner.Op != ADD {
		return nil, false
	}

	args := make([]Expr, 0, len(inner.Args)+len(op.Args)-1)
	args = append(args, inner.Args...)
	args = append(args, op.Args[1:]...)
	return NewOpExpr(ADD, args...), true
}

// SimplifyAdd returns a rule that folds all value operands of an addition
// into a single trailing constant, wrapping the sum into the signed range of
// a bits-wide integer. A zero constant is dropped and a single remaining
// operand replaces the addition.
func SimplifyAdd(bits uint) Rule {
	return func(e Expr) (Expr, bool) {
		op, ok := e.(*OpExpr)
		if !ok || op.Op != ADD {
			return nil, false
		}

		var args []Expr
		sum := NewValue(0, 0)
		for _, arg := range op.Args {
			if v, ok := arg.(Value); ok {
				sum = sum.Add(v).Wrap(bits)
			} else {
				args = append(args, arg)
			}
		}

		if len(args) == 0 {
			return sum, true
		}
		if !sum.IsZero() {
			args = append(args, sum)
		}
		if len(args) == 1 {
			return args[0], true
		}
		slices.SortStableFunc(args, lessExpr)
		return NewOpExpr(ADD, args...), true
	}
}

// SimplifyLShift removes shifts by zero and turns small constant shifts into
// multiplications by the corresponding power of two.
func SimplifyLShift(e Expr) (Expr, bool) {
	op, ok := e.(*OpExpr)
	if !ok || op.Op != SHL {
		return nil, false
	}
	assert(op.is2Args(), "<<: expected 2 operands, got %d", len(op.Args))

	v, ok := op.Args[1].(Value)
	if !ok {
		return nil, false
	}
	n, ok := v.Int64()
	if !ok {
		return nil, false
	} else if n == 0 {
		return op.Args[0], true
	} else if n > 0 && n < maxScaleShift {
		return NewOpExpr(MUL, op.Args[0], NewValue(1<<n, 10)), true
	}
	return nil, false
}

// SimplifyNeg pushes a negation into its operand where possible.
func SimplifyNeg(e Expr) (Expr, bool) {
	op, ok := e.(*OpExpr)
	if !ok || op.Op != NEG {
		return nil, false
	}
	return negIfPossible(op.Args[0])
}

// SimplifyBitfield rewrites bitfield(v, 0, size) as a cast to the unsigned
// type of that size, or as a mask for sizes without such a type. Bitfields
// at a non-zero offset are left alone.
func SimplifyBitfield(e Expr) (Expr, bool) {
	op, ok := e.(*OpExpr)
	if !ok || op.Op != SFUNC || op.Args[0] != Expr(SFunc{Name: "bitfield"}) {
		return nil, false
	}
	assert(len(op.Args) == 4, "bitfield: expected 3 arguments, got %d", len(op.Args)-1)

	offset, ok1 := op.Args[2].(Value)
	size, ok2 := op.Args[3].(Value)
	assert(ok1 && ok2, "bitfield: offset and size must be values: %s", op)
	if !offset.IsZero() {
		return nil, false
	}

	sz, ok := size.Int64()
	assert(ok && sz > 0 && sz < 256, "bitfield: invalid size: %s", size)
	if typ, ok := castTypes[sz]; ok {
		return NewOpExpr(CAST, Type{Name: typ}, op.Args[1]), true
	}
	return NewOpExpr(AND, op.Args[1], NewMaskValue(uint(sz))), true
}

// SimplifyCast folds a cast of a constant into a constant of the target
// type. The radix of the constant is kept.
func SimplifyCast(e Expr) (Expr, bool) {
	op, ok := e.(*OpExpr)
	if !ok || op.Op != CAST {
		return nil, false
	}
	assert(op.is2Args(), "CAST: expected 2 operands, got %d", len(op.Args))

	v, ok := op.Args[1].(Value)
	if !ok {
		return nil, false
	}
	typ, ok := op.Args[0].(Type)
	assert(ok, "CAST: expected type operand, got %s", op.Args[0])

	signed, bits := ParseTypeName(typ.Name)
	return v.Truncate(bits, signed), true
}

// UnsignLogicalOps returns a rule that rewrites a negative constant operand
// of "&", "|" or "^" into its unsigned bits-wide form, displayed in hex.
func UnsignLogicalOps(bits uint) Rule {
	return func(e Expr) (Expr, bool) {
		op, ok := e.(*OpExpr)
		if !ok {
			return nil, false
		}
		switch op.Op {
		case AND, OR, XOR:
		default:
			return nil, false
		}
		assert(op.is2Args(), "%s: expected 2 operands, got %d", op.Op, len(op.Args))

		v, ok := op.Args[1].(Value)
		if !ok || v.Sign() >= 0 {
			return nil, false
		}
		v = v.Truncate(bits, false)
		v.Base = 16
		return NewOpExpr(op.Op, op.Args[0], v), true
	}
}

// ParseTypeName parses an integer type name such as "u8" or "i32" into its
// signedness and width.
func ParseTypeName(name string) (signed bool, bits uint) {
	assert(len(name) > 1 && (name[0] == 'i' || name[0] == 'u'), "invalid type name: %q", name)
	n, err := strconv.Atoi(name[1:])
	assert(err == nil && n > 0 && n < 256, "invalid type name: %q", name)
	return name[0] == 'i', uint(n)
}

func lessExpr(a, b Expr) bool {
	return CompareExpr(a, b) < 0
}
