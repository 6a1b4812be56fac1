package keys

import "bytes"

// ColumnComparator orders two already-extracted, variable-width raw keys
// according to external column metadata (column types, collation, nulls
// ordering). Building and owning that metadata is a database concern
// outside this package's scope (spec.md §1); TupleKey only consumes the
// comparator it's given.
type ColumnComparator func(a, b []byte) int

// TupleKey is the variable-width key family for composite/non-fixed
// schemas. Unlike CompactInts/Generic, it cannot compare itself from bytes
// alone — ordering delegates to an externally supplied ColumnComparator
// shared by every TupleKey an adapter instance produces.
type TupleKey struct {
	raw []byte
	cmp *ColumnComparator
}

// NewTupleKeyAdapter returns a constructor bound to cmp, so every TupleKey
// it produces shares the same column comparator without needing to carry
// one per value.
func NewTupleKeyAdapter(cmp ColumnComparator) func(raw []byte) TupleKey {
	bound := cmp
	return func(raw []byte) TupleKey {
		return TupleKey{raw: raw, cmp: &bound}
	}
}

func (k TupleKey) Less(other TupleKey) bool {
	return k.compare(other) < 0
}

func (k TupleKey) Equal(other TupleKey) bool {
	return k.compare(other) == 0
}

func (k TupleKey) compare(other TupleKey) int {
	cmp := k.cmp
	if cmp == nil {
		cmp = other.cmp
	}
	if cmp == nil {
		// No column comparator was ever bound; fall back to raw byte
		// order so two TupleKeys are still a valid (if semantically
		// meaningless) total order rather than a panic.
		return bytes.Compare(k.raw, other.raw)
	}
	return (*cmp)(k.raw, other.raw)
}

// Raw returns the underlying already-extracted key bytes.
func (k TupleKey) Raw() []byte {
	return k.raw
}
