package skiplist

import "sync/atomic"

// nodeFlags is the bit field spec.md §3 assigns to every node.
type nodeFlags uint32

const (
	flagMin       nodeFlags = 1 << iota // sentinel head of a level
	flagNil                             // sentinel tail of a level
	flagBottom                          // level-0 node (carries key->value)
	flagDeletable                       // fully linked, safe tombstone candidate
	flagDeleted                        // finalized deletion
)

// atomicFlags wraps atomic.Uint32 with the named-bit accessors the node
// lifecycle state machine (spec.md §4.3.7) needs. All mutation is CAS-based
// so concurrent readers never observe a torn flag word.
type atomicFlags struct {
	bits atomic.Uint32
}

func (f *atomicFlags) init(initial nodeFlags) {
	f.bits.Store(uint32(initial))
}

func (f *atomicFlags) has(flag nodeFlags) bool {
	return nodeFlags(f.bits.Load())&flag != 0
}

// set unconditionally ORs flag into the word, retrying its CAS until the
// bit is set so concurrent changes to other bits are not lost. No node
// code calls it at present; the lifecycle uses clear (IS_DELETABLE) and
// setIfUnset (IS_DELETED).
func (f *atomicFlags) set(flag nodeFlags) {
	for {
		old := f.bits.Load()
		next := old | uint32(flag)
		if old == next || f.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// clear unconditionally ANDs flag out of the word, same retry discipline
// as set.
func (f *atomicFlags) clear(flag nodeFlags) {
	for {
		old := f.bits.Load()
		next := old &^ uint32(flag)
		if old == next || f.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// setIfUnset atomically transitions flag from unset to set and reports
// whether this call performed the transition. Used for IS_DELETED, whose
// first-setter wins (spec.md §4.3.5 step 2: "idempotent").
func (f *atomicFlags) setIfUnset(flag nodeFlags) bool {
	for {
		old := f.bits.Load()
		if nodeFlags(old)&flag != 0 {
			return false
		}
		next := old | uint32(flag)
		if f.bits.CompareAndSwap(old, next) {
			return true
		}
	}
}
