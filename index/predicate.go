package index

import "github.com/larkdb/skiplistindex/itempointer"

// Predicate decides, given every live value currently stored under a key,
// whether CondInsertEntry should proceed with the insert (spec.md §4.5).
// It receives the search result exactly as ScanKey would return it — the
// insert itself has not happened yet when Predicate is evaluated.
type Predicate func(existing []itempointer.ItemPointer) bool

// AllowIfAbsent is a Predicate that only allows the insert when the key
// currently has no live values at all — the common "insert if not exists"
// policy for a non-unique index that still wants at-most-one semantics
// for a particular key.
func AllowIfAbsent(existing []itempointer.ItemPointer) bool {
	return len(existing) == 0
}
