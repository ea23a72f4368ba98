package xform

import (
	"github.com/holiman/uint256"
)

// Value represents an integer literal.
//
// The integer is held in 256-bit two's complement so that both the signed
// and the unsigned reading of any architecture word are representable.
// Base is the display radix (10 or 16) and never affects arithmetic or
// comparison.
type Value struct {
	Int  uint256.Int
	Base int
}

// NewValue returns a new Value from a signed integer.
func NewValue(v int64, base int) Value {
	var z uint256.Int
	if v < 0 {
		z.SetUint64(uint64(^v))
		z.Not(&z)
	} else {
		z.SetUint64(uint64(v))
	}
	return Value{Int: z, Base: base}
}

// NewValueUint64 returns a new Value from an unsigned integer.
func NewValueUint64(v uint64, base int) Value {
	var z uint256.Int
	z.SetUint64(v)
	return Value{Int: z, Base: base}
}

// String returns the string representation of the value in its radix.
func (v Value) String() string {
	var abs uint256.Int
	sign := ""
	if v.Int.Sign() < 0 {
		abs.Neg(&v.Int)
		sign = "-"
	} else {
		abs.Set(&v.Int)
	}
	if v.Base == 16 {
		return sign + "0x" + abs.ToBig().Text(16)
	}
	return sign + abs.ToBig().Text(10)
}

// Sign returns -1, 0 or +1 depending on the sign of the value.
func (v Value) Sign() int {
	return v.Int.Sign()
}

// IsZero returns true if the value is zero.
func (v Value) IsZero() bool {
	return v.Int.IsZero()
}

// Int64 returns the value as an int64. The boolean is false if the value
// does not fit.
func (v Value) Int64() (int64, bool) {
	t := v.Truncate(Width64, true)
	return int64(t.Int.Uint64()), t.Int.Eq(&v.Int)
}

// Uint64 returns the value as a uint64. The boolean is false if the value
// is negative or does not fit.
func (v Value) Uint64() (uint64, bool) {
	if v.Int.Sign() < 0 || !v.Int.IsUint64() {
		return 0, false
	}
	return v.Int.Uint64(), true
}

// Add returns the exact sum of v and other. The radix of the result is the
// larger of the two radixes so that hex constants stay hex.
func (v Value) Add(other Value) Value {
	var z uint256.Int
	z.Add(&v.Int, &other.Int)
	return Value{Int: z, Base: maxBase(v.Base, other.Base)}
}

// Neg returns the arithmetic negation of v.
func (v Value) Neg() Value {
	var z uint256.Int
	z.Neg(&v.Int)
	return Value{Int: z, Base: v.Base}
}

// Truncate masks v to its low bits. If signed is true and the top bit of
// the truncated value is set, 2^bits is subtracted so that the result is
// the two's complement reading of those bits.
func (v Value) Truncate(bits uint, signed bool) Value {
	assert(bits > 0 && bits < 256, "truncate: invalid width: %d", bits)

	var z uint256.Int
	z.And(&v.Int, bitmask(bits))
	if signed {
		top := new(uint256.Int).Lsh(uint256.NewInt(1), bits-1)
		if !new(uint256.Int).And(&z, top).IsZero() {
			z.Sub(&z, new(uint256.Int).Lsh(uint256.NewInt(1), bits))
		}
	}
	return Value{Int: z, Base: v.Base}
}

// Wrap reduces v into the signed range [-2^(bits-1), 2^(bits-1)).
func (v Value) Wrap(bits uint) Value {
	return v.Truncate(bits, true)
}

// bitmask returns a value with the low width bits set.
func bitmask(width uint) *uint256.Int {
	m := new(uint256.Int).Lsh(uint256.NewInt(1), width)
	return m.Sub(m, uint256.NewInt(1))
}

// NewMaskValue returns (1<<width)-1 displayed in hex.
func NewMaskValue(width uint) Value {
	return Value{Int: *bitmask(width), Base: 16}
}

func maxBase(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func compareValue(a, b Value) int {
	if a.Int.Eq(&b.Int) {
		return 0
	} else if a.Int.Slt(&b.Int) {
		return -1
	}
	return 1
}
