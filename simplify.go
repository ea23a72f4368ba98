package xform

import (
	"fmt"
)

// Inferrer supplies algebraic identities beyond the rule set of this
// package, such as relational simplifications. It is applied as the last
// rule of the pipeline.
type Inferrer interface {
	Simplify(e Expr) (Expr, bool)
}

// InferrerFunc adapts a function to the Inferrer interface.
type InferrerFunc func(e Expr) (Expr, bool)

// Simplify calls fn(e).
func (fn InferrerFunc) Simplify(e Expr) (Expr, bool) { return fn(e) }

// Simplifier rewrites expressions into their canonical simplified form for
// an architecture with Bits-wide integers.
type Simplifier struct {
	Bits uint

	// Optional. Applied after the built-in rules.
	Inferrer Inferrer
}

// NewSimplifier returns a new instance of Simplifier. Panics if bits is not
// a supported architecture width.
func NewSimplifier(bits uint) *Simplifier {
	if err := ValidateBitness(bits); err != nil {
		panic(err)
	}
	return &Simplifier{Bits: bits}
}

// ValidateBitness returns an error if bits is not in the range 1..64.
func ValidateBitness(bits uint) error {
	if bits == 0 || bits > Width64 {
		return fmt.Errorf("%w: %d", ErrInvalidBitness, bits)
	}
	return nil
}

// Rules returns the rules applied by Simplify, in order.
//
// The order matters: subtraction is removed before folding so that
// "a - 3 + 3" folds, and casts are folded after their operands have been.
// A single pass in this order is expected to reach a stable form; the
// pipeline does not iterate.
func (s *Simplifier) Rules() []Rule {
	rules := []Rule{
		SubToAdd,
		CommutativeNormalize,
		AssociativeAdd,
		SimplifyAdd(s.Bits),
		SimplifyLShift,
		SimplifyBitfield,
		SimplifyCast,
		SimplifyNeg,
		UnsignLogicalOps(s.Bits),
		CommutativeNormalize,
	}
	if s.Inferrer != nil {
		rules = append(rules, s.Inferrer.Simplify)
	}
	return rules
}

// Simplify returns the simplified form of e. Only Cond nodes within e are
// modified; everything else is rebuilt.
func (s *Simplifier) Simplify(e Expr) Expr {
	for _, rule := range s.Rules() {
		e = Rewrite(e, rule)
	}
	return e
}
