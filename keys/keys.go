// Package keys supplies the key adapters (C1) the skip-list core is
// generic over. An adapter is a value type providing a strict total order
// (Less) and an equivalence (Equal) consistent with it:
//
//	a == b  <=>  !(a < b) && !(b < a)
//
// Adapters must be trivially copyable and comparable without heap access —
// every implementation in this package is a value type (array, not slice,
// where the family allows it) for exactly that reason.
//
// Key materialization from a raw database tuple and column-level
// comparators are out of scope here (spec.md §1); adapters only know how to
// build themselves from an already-extracted key byte string, and — for
// TupleKey — from an externally supplied column comparator.
package keys

import "fmt"

// Key is the self-referential constraint the skip-list core requires: a
// type that knows how to order and compare itself.
type Key[K any] interface {
	Less(other K) bool
	Equal(other K) bool
}

// ErrWidthMismatch is returned by a FromRaw constructor when the supplied
// raw key does not fit the adapter's fixed capacity.
type ErrWidthMismatch struct {
	Family   string
	Capacity int
	Got      int
}

func (e *ErrWidthMismatch) Error() string {
	return fmt.Sprintf("keys: %s capacity %d, got %d raw bytes", e.Family, e.Capacity, e.Got)
}

// CheckConsistency verifies a < b, b < a, and a == b agree for one pair of
// keys, per the Key contract. It is a test/fuzzing aid — spec.md §7
// treats a contract violation as undefined behavior in production, so this
// is never called from the hot path.
func CheckConsistency[K Key[K]](a, b K) error {
	lt := a.Less(b)
	gt := b.Less(a)
	eq := a.Equal(b)
	if eq && (lt || gt) {
		return fmt.Errorf("keys: %v == %v but Less reports an order (lt=%v gt=%v)", a, b, lt, gt)
	}
	if !eq && !lt && !gt {
		return fmt.Errorf("keys: %v and %v are neither equal nor ordered", a, b)
	}
	if lt && gt {
		return fmt.Errorf("keys: %v < %v and %v < %v simultaneously", a, b, b, a)
	}
	return nil
}
