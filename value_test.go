package xform_test

import (
	"math"
	"testing"

	"github.com/benbjohnson/xform"
	"github.com/google/go-cmp/cmp"
)

func TestValue_String(t *testing.T) {
	for _, tt := range []struct {
		v   xform.Value
		exp string
	}{
		{V(0), "0"},
		{V(42), "42"},
		{V(-1), "-1"},
		{H(255), "0xff"},
		{H(-3), "-0x3"},
		{xform.NewValueUint64(math.MaxUint64, 16), "0xffffffffffffffff"},
		{V(math.MinInt64), "-9223372036854775808"},
	} {
		if s := tt.v.String(); s != tt.exp {
			t.Fatalf("unexpected string: %s != %s", s, tt.exp)
		}
	}
}

func TestValue_Truncate(t *testing.T) {
	t.Run("Unsigned", func(t *testing.T) {
		if diff := cmp.Diff(V(44), V(300).Truncate(8, false)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Signed", func(t *testing.T) {
		if diff := cmp.Diff(V(-56), V(200).Truncate(8, true)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SignedPositive", func(t *testing.T) {
		if diff := cmp.Diff(V(127), V(127).Truncate(8, true)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("NegativeToUnsigned", func(t *testing.T) {
		if diff := cmp.Diff(H(0xFFFFFFFF), H(-1).Truncate(32, false)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("KeepsBase", func(t *testing.T) {
		if diff := cmp.Diff(H(0x34), H(0x1234).Truncate(8, false)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ErrInvalidWidth", func(t *testing.T) {
		MustPanicInvariant(t, func() { V(1).Truncate(0, false) })
	})
}

func TestValue_Wrap(t *testing.T) {
	t.Run("Overflow32", func(t *testing.T) {
		if diff := cmp.Diff(H(-0x80000000), H(0x7FFFFFFF).Add(V(1)).Wrap(32)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Underflow32", func(t *testing.T) {
		if diff := cmp.Diff(V(0x7FFFFFFF), V(-0x80000000).Add(V(-1)).Wrap(32)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Overflow64", func(t *testing.T) {
		if diff := cmp.Diff(V(math.MinInt64), V(math.MaxInt64).Add(V(1)).Wrap(64)); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("InRange", func(t *testing.T) {
		if diff := cmp.Diff(V(-7), V(-7).Wrap(16)); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestValue_Add(t *testing.T) {
	t.Run("MaxBase", func(t *testing.T) {
		if diff := cmp.Diff(H(0x11), V(1).Add(H(0x10))); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestValue_Int64(t *testing.T) {
	if v, ok := V(-5).Int64(); !ok || v != -5 {
		t.Fatalf("unexpected value: %d, %v", v, ok)
	}
	if v, ok := V(math.MinInt64).Int64(); !ok || v != math.MinInt64 {
		t.Fatalf("unexpected value: %d, %v", v, ok)
	}
	if _, ok := xform.NewValueUint64(math.MaxUint64, 10).Int64(); ok {
		t.Fatal("expected overflow")
	}
}

func TestValue_Uint64(t *testing.T) {
	if v, ok := H(0x1000).Uint64(); !ok || v != 0x1000 {
		t.Fatalf("unexpected value: %d, %v", v, ok)
	}
	if v, ok := xform.NewValueUint64(math.MaxUint64, 10).Uint64(); !ok || v != math.MaxUint64 {
		t.Fatalf("unexpected value: %d, %v", v, ok)
	}
	if _, ok := V(-1).Uint64(); ok {
		t.Fatal("expected negative value to be rejected")
	}
}

func TestNewMaskValue(t *testing.T) {
	if diff := cmp.Diff(H(0xFFFFFF), xform.NewMaskValue(24)); diff != "" {
		t.Fatal(diff)
	}
}
