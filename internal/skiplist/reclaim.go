// Epoch-based reclamation (spec.md §5, §9). The source this index is
// adapted from deletes nodes inline, which is unsound under concurrent
// reads (spec.md §9: "any rewrite must supply a correct reclamation
// scheme"). This file supplies one: operations enter/exit a global epoch,
// unlinked nodes are retired into the epoch they were unlinked in, and a
// generation's retired nodes are only dropped (made GC-eligible) once that
// generation's ring slot is about to be reused AND no operation is still
// active in it.
package skiplist

import (
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"github.com/larkdb/skiplistindex/keys"
)

// reclaimRingSize bounds how many epochs may be in flight before an
// advance blocks on a lagging generation (it never blocks correctness —
// see tryAdvance — only how eagerly memory is reclaimed under sustained
// concurrency). It must be a small, fixed ring so the diagnostic bitset
// below stays a single machine word's worth of bits.
const reclaimRingSize = 64

// Reclaimer owns the epoch ring, the per-generation active-operation
// counts (authoritative for safety), and the retired-node lists.
type Reclaimer[K keys.Key[K]] struct {
	epoch  atomic.Int64
	active [reclaimRingSize]atomic.Int64

	retiredMu [reclaimRingSize]sync.Mutex
	retired   [reclaimRingSize][]*node[K]

	// diagMu guards diag, the bitset mirror of "generation g has active
	// readers". bits-and-blooms/bitset has no atomic bit operations, so
	// concurrent Set/Clear on bits sharing a machine word is a data race
	// without this lock — diag is a read-mostly diagnostic, never
	// consulted for reclamation safety, so serializing it is cheap.
	diagMu sync.Mutex
	diag   *bitset.BitSet
}

func newReclaimer[K keys.Key[K]]() *Reclaimer[K] {
	return &Reclaimer[K]{diag: bitset.New(reclaimRingSize)}
}

// enter pins the calling operation to the current epoch and returns it;
// the operation must call exit(epoch) exactly once when it finishes.
func (r *Reclaimer[K]) enter() int64 {
	e := r.epoch.Load()
	slot := e % reclaimRingSize
	r.active[slot].Add(1)
	r.diagMu.Lock()
	r.diag.Set(uint(slot))
	r.diagMu.Unlock()
	return e
}

// exit unpins the operation from epoch e and opportunistically tries to
// advance the global epoch and drain a now-quiescent generation.
func (r *Reclaimer[K]) exit(e int64) {
	slot := e % reclaimRingSize
	remaining := r.active[slot].Add(-1)
	if remaining == 0 {
		r.diagMu.Lock()
		// Another operation may have re-entered this slot's epoch between
		// the Add and this lock; re-check before clearing the diagnostic
		// bit so it never falsely reports quiescence.
		if r.active[slot].Load() == 0 {
			r.diag.Clear(uint(slot))
		}
		r.diagMu.Unlock()
	}
	r.tryAdvance()
}

// retire attaches an unlinked node to the epoch it was unlinked in. It must
// be called with the epoch returned by this operation's enter().
func (r *Reclaimer[K]) retire(e int64, n *node[K]) {
	slot := e % reclaimRingSize
	r.retiredMu[slot].Lock()
	r.retired[slot] = append(r.retired[slot], n)
	r.retiredMu[slot].Unlock()
}

// tryAdvance bumps the global epoch by one, but only if doing so would not
// reuse a ring slot that still has an active operation pinned to it. If
// the oldest slot about to be reused isn't quiescent yet, tryAdvance is a
// no-op — operations keep retiring into the current epoch, which is always
// safe, just less eager to reclaim.
func (r *Reclaimer[K]) tryAdvance() {
	cur := r.epoch.Load()
	next := cur + 1
	evict := next - reclaimRingSize
	if evict >= 0 {
		evictSlot := evict % reclaimRingSize
		if r.active[evictSlot].Load() != 0 {
			return
		}
	}
	if !r.epoch.CompareAndSwap(cur, next) {
		return
	}
	if evict >= 0 {
		r.drain(evict)
	}
}

// drain drops references to generation g's retired nodes, making them
// GC-eligible — Go's collector performs the actual free, so "reclamation"
// here means "stop holding the last reference", not manual memory
// management (spec.md §9's note that an arena allocator would duplicate
// the GC without the spec requiring one).
func (r *Reclaimer[K]) drain(g int64) {
	slot := g % reclaimRingSize
	r.retiredMu[slot].Lock()
	r.retired[slot] = nil
	r.retiredMu[slot].Unlock()
}

// ActiveGenerations reports, as a slice of ring-slot indices, which
// generations the diagnostic bitset believes currently have an active
// operation. It is informational only (e.g. for a debug endpoint); the
// active[] counters remain the sole source of truth for reclamation
// safety.
func (r *Reclaimer[K]) ActiveGenerations() []uint {
	r.diagMu.Lock()
	defer r.diagMu.Unlock()
	out := make([]uint, 0, reclaimRingSize)
	for i, ok := r.diag.NextSet(0); ok; i, ok = r.diag.NextSet(i + 1) {
		out = append(out, i)
	}
	return out
}
