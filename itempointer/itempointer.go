// Package itempointer defines the opaque handle the index stores as its
// value type. The index never interprets an ItemPointer; it is the heap's
// business to resolve one to a tuple.
package itempointer

// ItemPointer is an opaque 64-bit handle into external tuple storage.
// It is a uint64, 8 bytes on every platform: the same width as a pointer
// on 64-bit Go builds, and wider than a pointer on 32-bit builds (the
// index never dereferences it, so only its width matters).
type ItemPointer uint64

// Invalid is the zero ItemPointer. The index does not reserve it: Insert
// accepts 0 like any other value.
const Invalid ItemPointer = 0
