package skiplist

import (
	"sync/atomic"

	"github.com/larkdb/skiplistindex/itempointer"
	"github.com/larkdb/skiplistindex/keys"
)

// node is the tagged-sum node shape spec.md §3/§9 calls for: one struct
// covering MinSentinel, NilSentinel, interior, and bottom nodes,
// discriminated by flags rather than by a class hierarchy (a virtual
// dispatch sketch "adds no value and interferes with CAS-sized payloads").
//
// A tower is NOT one node object carrying a per-level pointer array; it is
// one node object PER LEVEL, linked top-to-bottom by down. This is the
// literal reading of spec.md §3's "each node carries a down pointer to a
// node on the level below."
type node[K keys.Key[K]] struct {
	key   K
	value itempointer.ItemPointer // meaningful only when flagBottom is set
	down  *node[K]                // meaningful only for non-bottom nodes; immutable after publish
	level int                     // the level this node lives on; immutable after creation

	forward atomic.Pointer[node[K]]
	flags   atomicFlags

	// pad keeps two adjacent nodes' hot (forward, flags) fields from
	// sharing a cache line under concurrent CAS. Sized by cachePadBytes,
	// a fixed constant that does not follow Config.AssumedCacheLineSize;
	// see internal/cachepad for the runtime check against the detected size.
	pad [cachePadBytes]byte
}

// cachePadBytes is a static pad size matching config.DefaultAssumedCacheLineSize.
// It cannot track a runtime Config value (Go struct layouts are fixed at
// compile time); internal/cachepad instead logs a warning when the
// detected line size diverges from the configured assumption, so the
// mismatch is visible without requiring per-instance struct shapes.
const cachePadBytes = 64

// newNode allocates a fresh, unlinked node for level lvl. The
// caller is responsible for setting value (bottom) or down (interior)
// before the node is published via a successful cas_next.
func newNode[K keys.Key[K]](key K, level int, isBottom bool) *node[K] {
	n := &node[K]{key: key, level: level}
	var f nodeFlags = flagDeletable // not yet fully linked; see clearDeletable
	if isBottom {
		f |= flagBottom
	}
	n.flags.init(f)
	return n
}

// newMinSentinel allocates the min (-infinity) sentinel for level lvl,
// whose down pointer is wired by the caller to level lvl-1's min sentinel.
func newMinSentinel[K keys.Key[K]](level int) *node[K] {
	n := &node[K]{level: level}
	n.flags.init(flagMin)
	return n
}

// newNilSentinel allocates the nil (+infinity) sentinel for level lvl. Nil
// sentinels are never linked to by down and never unlinked.
func newNilSentinel[K keys.Key[K]](level int) *node[K] {
	n := &node[K]{level: level}
	n.flags.init(flagNil)
	return n
}

func (n *node[K]) isMin() bool       { return n.flags.has(flagMin) }
func (n *node[K]) isNil() bool       { return n.flags.has(flagNil) }
func (n *node[K]) isBottom() bool    { return n.flags.has(flagBottom) }
func (n *node[K]) isDeletable() bool { return n.flags.has(flagDeletable) }
func (n *node[K]) isDeleted() bool   { return n.flags.has(flagDeleted) }

// clearDeletable marks the node fully published (spec.md §4.3.4 step 5):
// once every level of its tower is linked, IS_DELETABLE is cleared so
// deletes know the node is safe to tombstone.
func (n *node[K]) clearDeletable() { n.flags.clear(flagDeletable) }

// markDeleted idempotently sets IS_DELETED, returning true iff this call
// performed the transition (spec.md §4.3.7: deletable -> deleted).
func (n *node[K]) markDeleted() bool { return n.flags.setIfUnset(flagDeleted) }

func (n *node[K]) next() *node[K] {
	return n.forward.Load()
}

func (n *node[K]) casNext(expected, next *node[K]) bool {
	return n.forward.CompareAndSwap(expected, next)
}

// getValue returns the node's value iff its key equals probe; only
// meaningful for bottom nodes.
func (n *node[K]) getValue(probe K) (itempointer.ItemPointer, bool) {
	if !n.isBottom() || n.isMin() || n.isNil() {
		return 0, false
	}
	if n.key.Equal(probe) {
		return n.value, true
	}
	return 0, false
}
