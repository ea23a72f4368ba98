package xform

import (
	"log"
)

// DefaultMaxSize is the default limit on the number of nodes in an
// expression substituted for a register.
const DefaultMaxSize = 10

// Substituter propagates register definitions into expressions.
type Substituter struct {
	// Re-simplifies every operator rebuilt by a substitution.
	Simplifier *Simplifier

	// Definitions larger than this many nodes are not substituted.
	MaxSize int

	// Optional. Receives a line for every refused substitution.
	Logger *log.Logger
}

// NewSubstituter returns a new instance of Substituter.
func NewSubstituter(s *Simplifier) *Substituter {
	return &Substituter{
		Simplifier: s,
		MaxSize:    DefaultMaxSize,
	}
}

// Substitute replaces registers within e by their expressions in defs.
// It returns the new expression and true, or false if nothing outside of
// a Cond changed. Conds are updated in place and always report false.
//
// A register is left alone if its definition refers to the register itself
// or exceeds MaxSize nodes.
func (s *Substituter) Substitute(e Expr, defs map[Register]Expr) (Expr, bool) {
	switch e := e.(type) {
	case Value, Str, Addr, SFunc, Type, StructField:
		return nil, false

	case Register:
		other, ok := defs[e]
		if !ok || other == nil {
			return nil, false
		}
		if HasRegister(other, e) {
			s.logf("Trying to replace %s with recursively referring %s, not doing", e, other)
			return nil, false
		}
		if n := Size(other); n > s.MaxSize {
			s.logf("Trying to replace %s with complex [len=%d] %s, not doing", e, n, other)
			return nil, false
		}
		return other, true

	case *Mem:
		if addr, ok := s.Substitute(e.Addr, defs); ok {
			return &Mem{Type: e.Type, Addr: addr}, true
		}
		return nil, false

	case *Cond:
		// Relational cleanup of the substituted comparison is left to the
		// Inferrer, which runs as part of the simplification of e.Expr.
		if other, ok := s.Substitute(e.Expr, defs); ok {
			e.Expr = other
		}
		return nil, false

	case *OpExpr:
		var changed bool
		args := make([]Expr, len(e.Args))
		for i, arg := range e.Args {
			if other, ok := s.Substitute(arg, defs); ok {
				args[i], changed = other, true
			} else {
				args[i] = arg
			}
		}
		if !changed {
			return nil, false
		}
		return s.Simplifier.Simplify(NewOpExpr(e.Op, args...)), true

	default:
		panic("unreachable")
	}
}

func (s *Substituter) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
