package xform_test

import (
	"testing"

	"github.com/benbjohnson/xform"
)

// R returns a register expression.
func R(name string) xform.Register { return xform.Register{Name: name} }

// V returns a decimal value.
func V(v int64) xform.Value { return xform.NewValue(v, 10) }

// H returns a hexadecimal value.
func H(v int64) xform.Value { return xform.NewValue(v, 16) }

// Op returns an operator expression.
func Op(op xform.Op, args ...xform.Expr) *xform.OpExpr { return xform.NewOpExpr(op, args...) }

// Mem returns a memory reference of the given type.
func Mem(typ string, addr xform.Expr) *xform.Mem { return &xform.Mem{Type: typ, Addr: addr} }

// Cast returns a cast of e to the named type.
func Cast(typ string, e xform.Expr) *xform.OpExpr {
	return xform.NewOpExpr(xform.CAST, xform.Type{Name: typ}, e)
}

// Bitfield returns a bitfield(e, offset, size) call.
func Bitfield(e xform.Expr, offset, size int64) *xform.OpExpr {
	return xform.NewOpExpr(xform.SFUNC, xform.SFunc{Name: "bitfield"}, e, V(offset), V(size))
}

// MustPanicInvariant fails unless fn panics with an *xform.InvariantError.
func MustPanicInvariant(tb testing.TB, fn func()) {
	tb.Helper()
	defer func() {
		if r := recover(); r == nil {
			tb.Fatal("expected panic")
		} else if _, ok := r.(*xform.InvariantError); !ok {
			tb.Fatalf("unexpected panic: %#v", r)
		}
	}()
	fn()
}
