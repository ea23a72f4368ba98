package xform

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Expr represents an IR expression.
type Expr interface {
	String() string
	expr()
}

func (Register) expr()    {}
func (*Mem) expr()        {}
func (*OpExpr) expr()     {}
func (*Cond) expr()       {}
func (Str) expr()         {}
func (Addr) expr()        {}
func (SFunc) expr()       {}
func (Type) expr()        {}
func (StructField) expr() {}
func (Value) expr()       {}

// Op represents an operator of an OpExpr.
type Op int

// OpExpr operators.
const (
	arithmetic_op_begin = Op(iota)
	ADD
	SUB
	MUL
	AND
	OR
	XOR
	SHL
	SHR
	NEG
	NOT
	CAST
	SFUNC
	arithmetic_op_end

	relation_op_begin
	EQ
	NE
	LT
	LE
	GT
	GE
	relation_op_end

	LAND
	LOR
	LNOT
)

var ops = [...]string{
	ADD:   "+",
	SUB:   "-",
	MUL:   "*",
	AND:   "&",
	OR:    "|",
	XOR:   "^",
	SHL:   "<<",
	SHR:   ">>",
	NEG:   "NEG",
	NOT:   "~",
	CAST:  "CAST",
	SFUNC: "SFUNC",
	EQ:    "==",
	NE:    "!=",
	LT:    "<",
	LE:    "<=",
	GT:    ">",
	GE:    ">=",
	LAND:  "&&",
	LOR:   "||",
	LNOT:  "!",
}

// String returns the symbol of the operator.
func (op Op) String() string {
	if op >= 0 && op < Op(len(ops)) && ops[op] != "" {
		return ops[op]
	}
	return fmt.Sprintf("Op<%d>", op)
}

// IsRelation returns true if op is a comparison operator.
func (op Op) IsRelation() bool {
	return op > relation_op_begin && op < relation_op_end
}

// IsCommutative returns true if the operands of op may be freely reordered.
func (op Op) IsCommutative() bool {
	switch op {
	case ADD, AND, OR, XOR:
		return true
	default:
		return false
	}
}

// Register represents a machine register.
type Register struct {
	Name string
}

// String returns the register name.
func (r Register) String() string { return r.Name }

// Mem represents a typed memory dereference of an address expression.
type Mem struct {
	Type string
	Addr Expr
}

// String returns the string representation of the expression.
func (e *Mem) String() string {
	return fmt.Sprintf("*(%s*)%s", e.Type, e.Addr)
}

// OpExpr represents an operator applied to one or more operands.
//
// OpExprs are never modified once built; rules construct a new OpExpr
// instead.
type OpExpr struct {
	Op   Op
	Args []Expr
}

// NewOpExpr returns a new instance of OpExpr.
func NewOpExpr(op Op, args ...Expr) *OpExpr {
	assert(len(args) > 0, "%s: no operands", op)
	return &OpExpr{Op: op, Args: args}
}

// String returns the string representation of the expression.
func (e *OpExpr) String() string {
	switch e.Op {
	case NEG:
		return "-" + e.Args[0].String()
	case NOT, LNOT:
		return e.Op.String() + e.Args[0].String()
	case CAST:
		if len(e.Args) == 2 {
			return fmt.Sprintf("(%s)%s", e.Args[0], e.Args[1])
		}
	case SFUNC:
		a := make([]string, len(e.Args)-1)
		for i, arg := range e.Args[1:] {
			a[i] = arg.String()
		}
		return fmt.Sprintf("%s(%s)", e.Args[0], strings.Join(a, ", "))
	}

	a := make([]string, len(e.Args))
	for i, arg := range e.Args {
		a[i] = arg.String()
	}
	return "(" + strings.Join(a, " "+e.Op.String()+" ") + ")"
}

// is2Args returns true if e has exactly two operands.
func (e *OpExpr) is2Args() bool {
	return len(e.Args) == 2
}

// Cond represents the expression tested by a conditional jump.
//
// Unlike every other node, a Cond is updated in place: the same *Cond is
// referenced from the instruction list of a basic block and from its
// outgoing CFG edges, and both must observe substitutions.
type Cond struct {
	Expr Expr
}

// NewCond returns a new instance of Cond.
func NewCond(expr Expr) *Cond {
	return &Cond{Expr: expr}
}

// String returns the string representation of the condition.
func (c *Cond) String() string {
	return fmt.Sprintf("cond(%s)", c.Expr)
}

// IsRelation returns true if the tested expression is a comparison.
func (c *Cond) IsRelation() bool {
	e, ok := c.Expr.(*OpExpr)
	return ok && e.Op.IsRelation()
}

// Str represents a string literal.
type Str struct {
	Val string
}

// String returns the quoted string.
func (s Str) String() string { return fmt.Sprintf("%q", s.Val) }

// Addr represents a code address, such as a jump or call target.
type Addr struct {
	Addr string
}

// String returns the address.
func (a Addr) String() string { return a.Addr }

// SFunc represents the name of a symbolic function. It is the first operand
// of an SFUNC operator.
type SFunc struct {
	Name string
}

// String returns the function name.
func (f SFunc) String() string { return f.Name }

// Type represents a value type, such as "u8" or "i32". It is the first
// operand of a CAST operator.
type Type struct {
	Name string
}

// String returns the type name.
func (t Type) String() string { return t.Name }

// StructField represents a field of a statically allocated struct instance.
type StructField struct {
	Struct string
	Start  uint64
	Field  string
}

// String returns the string representation of the field access.
func (f StructField) String() string {
	return fmt.Sprintf("%s@%#x.%s", f.Struct, f.Start, f.Field)
}

// Neg returns the negation of e, pushed into e where possible.
func Neg(e Expr) Expr {
	if other, ok := negIfPossible(e); ok {
		return other
	}
	return NewOpExpr(NEG, e)
}

// negIfPossible pushes a negation into e. Returns false if e has no simpler
// negated form.
func negIfPossible(e Expr) (Expr, bool) {
	switch e := e.(type) {
	case Value:
		return e.Neg(), true
	case *OpExpr:
		switch e.Op {
		case NEG:
			return e.Args[0], true
		case ADD:
			args := make([]Expr, len(e.Args))
			for i, arg := range e.Args {
				args[i] = Neg(arg)
			}
			return NewOpExpr(ADD, args...), true
		}
	}
	return nil, false
}

// Size returns the number of nodes in the expression tree.
func Size(e Expr) int {
	switch e := e.(type) {
	case *Mem:
		return 1 + Size(e.Addr)
	case *OpExpr:
		n := 1
		for _, arg := range e.Args {
			n += Size(arg)
		}
		return n
	case *Cond:
		return 1 + Size(e.Expr)
	case Register, Str, Addr, SFunc, Type, StructField, Value:
		return 1
	default:
		panic("unreachable")
	}
}

// Registers returns the set of registers referenced by e, sorted by name.
func Registers(e Expr) []Register {
	m := make(map[Register]struct{})
	collectRegisters(e, m)

	a := maps.Keys(m)
	slices.SortFunc(a, func(x, y Register) bool { return x.Name < y.Name })
	return a
}

func collectRegisters(e Expr, m map[Register]struct{}) {
	switch e := e.(type) {
	case Register:
		m[e] = struct{}{}
	case *Mem:
		collectRegisters(e.Addr, m)
	case *OpExpr:
		for _, arg := range e.Args {
			collectRegisters(arg, m)
		}
	case *Cond:
		collectRegisters(e.Expr, m)
	case Str, Addr, SFunc, Type, StructField, Value:
		// nop
	default:
		panic("unreachable")
	}
}

// HasRegister returns true if r occurs anywhere within e.
func HasRegister(e Expr, r Register) bool {
	return slices.Contains(Registers(e), r)
}

// Equal returns true if a and b are structurally identical, ignoring the
// display radix of values.
func Equal(a, b Expr) bool {
	return CompareExpr(a, b) == 0
}

// CompareExpr returns an integer comparing two expressions.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
//
// Expressions of different kinds are ordered by kind, with values last, so
// that a sorted operand list ends with its constant.
func CompareExpr(a, b Expr) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if ak, bk := exprKind(a), exprKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case Register:
		return strings.Compare(a.Name, b.(Register).Name)
	case *Mem:
		return compareMem(a, b.(*Mem))
	case *OpExpr:
		return compareOpExpr(a, b.(*OpExpr))
	case *Cond:
		return CompareExpr(a.Expr, b.(*Cond).Expr)
	case Str:
		return strings.Compare(a.Val, b.(Str).Val)
	case Addr:
		return strings.Compare(a.Addr, b.(Addr).Addr)
	case SFunc:
		return strings.Compare(a.Name, b.(SFunc).Name)
	case Type:
		return strings.Compare(a.Name, b.(Type).Name)
	case StructField:
		return compareStructField(a, b.(StructField))
	case Value:
		return compareValue(a, b.(Value))
	default:
		panic("unreachable")
	}
}

func compareMem(a, b *Mem) int {
	if cmp := strings.Compare(a.Type, b.Type); cmp != 0 {
		return cmp
	}
	return CompareExpr(a.Addr, b.Addr)
}

func compareOpExpr(a, b *OpExpr) int {
	if a.Op < b.Op {
		return -1
	} else if a.Op > b.Op {
		return 1
	}
	for i := 0; i < len(a.Args) && i < len(b.Args); i++ {
		if cmp := CompareExpr(a.Args[i], b.Args[i]); cmp != 0 {
			return cmp
		}
	}
	if len(a.Args) < len(b.Args) {
		return -1
	} else if len(a.Args) > len(b.Args) {
		return 1
	}
	return 0
}

func compareStructField(a, b StructField) int {
	if cmp := strings.Compare(a.Struct, b.Struct); cmp != 0 {
		return cmp
	}
	if a.Start < b.Start {
		return -1
	} else if a.Start > b.Start {
		return 1
	}
	return strings.Compare(a.Field, b.Field)
}

// exprKind returns a numeric value for the type of expression.
// Only used internally for equality checks and sorting.
func exprKind(expr Expr) int {
	switch expr.(type) {
	case Register:
		return 1
	case *Mem:
		return 2
	case *OpExpr:
		return 3
	case *Cond:
		return 4
	case Str:
		return 5
	case Addr:
		return 6
	case SFunc:
		return 7
	case Type:
		return 8
	case StructField:
		return 9
	case Value:
		return 10
	default:
		panic("unreachable")
	}
}
