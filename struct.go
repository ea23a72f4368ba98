package xform

import (
	"github.com/benbjohnson/immutable"
	"golang.org/x/exp/slices"
)

// ProgramDB provides the struct layouts and the statically allocated struct
// instances of the program being decompiled.
type ProgramDB interface {
	// StructTypes returns the fields of each struct, by name and offset.
	StructTypes() map[string]map[uint64]string

	// StructInstances returns the address ranges holding struct instances.
	StructInstances() []StructInstance
}

// StructInstance represents a struct stored in the address range
// [Start, End).
type StructInstance struct {
	Start uint64
	End   uint64
	Name  string
}

// StructResolver rewrites memory references to constant addresses inside
// known struct instances into struct field references.
type StructResolver struct {
	types     map[string]map[uint64]string
	instances *immutable.SortedMap // start address to []StructInstance, smallest first
}

// NewStructResolver returns a new instance of StructResolver over db.
// Instances may nest or overlap.
func NewStructResolver(db ProgramDB) *StructResolver {
	m := immutable.NewSortedMap(&uint64Comparer{})
	for _, inst := range db.StructInstances() {
		assert(inst.Start < inst.End, "struct instance %s: empty range %#x-%#x", inst.Name, inst.Start, inst.End)

		var a []StructInstance
		if v, ok := m.Get(inst.Start); ok {
			a = slices.Clone(v.([]StructInstance))
		}
		a = append(a, inst)
		slices.SortStableFunc(a, func(x, y StructInstance) bool { return x.End < y.End })
		m = m.Set(inst.Start, a)
	}
	return &StructResolver{types: db.StructTypes(), instances: m}
}

// Resolve returns e with every resolvable memory reference replaced.
// Addresses must already be folded to constants.
func (r *StructResolver) Resolve(e Expr) Expr {
	return Rewrite(e, r.resolveMem)
}

func (r *StructResolver) resolveMem(e Expr) (Expr, bool) {
	m, ok := e.(*Mem)
	if !ok {
		return nil, false
	}
	v, ok := m.Addr.(Value)
	if !ok {
		return nil, false
	}
	addr, ok := v.Uint64()
	if !ok {
		return nil, false
	}

	if f, ok := r.findField(addr); ok {
		return f, true
	}
	return nil, false
}

// findField returns the field at addr within the innermost struct instance
// containing addr that has a field at that offset.
func (r *StructResolver) findField(addr uint64) (StructField, bool) {
	// Seek to the given address or the next instance.
	itr := r.instances.Iterator()
	if itr.Seek(addr); itr.Done() {
		itr.Last()
	}

	// Move backwards through every instance starting at or below addr. An
	// enclosing instance can start arbitrarily far below a nested one, so
	// the scan cannot stop at the first range ending before addr.
	for !itr.Done() {
		start, v := itr.Prev()
		if start.(uint64) > addr {
			continue
		}
		for _, inst := range v.([]StructInstance) {
			if addr >= inst.End {
				continue
			}
			if field, ok := r.types[inst.Name][addr-inst.Start]; ok {
				return StructField{Struct: inst.Name, Start: inst.Start, Field: field}, true
			}
		}
	}
	return StructField{}, false
}

// uint64Comparer compares two 64-bit unsigned integers. Implements immutable.Comparer.
type uint64Comparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b, and
// returns 0 if a is equal to b. Panic if a or b is not a uint64.
func (c *uint64Comparer) Compare(a, b interface{}) int {
	if i, j := a.(uint64), b.(uint64); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}
