// Package skiplistindex implements a concurrent, ordered, multi-level
// skip-list secondary index for use as a database storage engine's
// in-memory index structure.
//
// The core data structure (C1-C4: key adapters, node shapes, the CAS-based
// skip-list engine, and per-operation thread context) lives in keys/ and
// internal/skiplist/. The database-facing façade (C5/C6: InsertEntry,
// DeleteEntry, CondInsertEntry, ScanKey, Scan, ScanLimit, ScanAllKeys, and
// the runtime key-family registry) lives in index/.
//
//	idx, err := index.New[keys.CompactInts1](config.Default(), "orders_by_customer")
//	idx.InsertEntry(keys.NewCompactInts1(42), itempointer.ItemPointer(somePointer))
//	values := idx.ScanKey(keys.NewCompactInts1(42))
//
// A caller driven by runtime schema metadata instead of compile-time types
// uses index.Open with a index.SchemaDescriptor to get back a type-erased
// index.RawIndex.
//
// The index keeps no on-disk representation, performs no crash recovery,
// and provides no MVCC or cross-index transaction guarantees — it is
// purely an in-memory ordered structure over opaque item pointers.
package skiplistindex
