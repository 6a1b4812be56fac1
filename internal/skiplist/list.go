// Package skiplist implements the concurrent, ordered, multi-level
// skip-list core (C2/C3/C4 of spec.md §2): node shapes, the per-level
// atomic CAS insert/delete/search/scan engine, and the per-operation
// Context. It has no notion of "a database index" — that adaptation is
// index.Index (C5/C6), layered on top.
package skiplist

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/larkdb/skiplistindex/config"
	"github.com/larkdb/skiplistindex/internal/cachepad"
	"github.com/larkdb/skiplistindex/itempointer"
	"github.com/larkdb/skiplistindex/keys"
)

// List is the multi-level skip list itself: a single process-wide atomic
// top pointer (spec.md §3's "Top pointer") plus the levels reachable from
// it via down-links.
type List[K keys.Key[K]] struct {
	top atomic.Pointer[node[K]]

	cfg     config.Config
	reclaim *Reclaimer[K]
	stats   *Stats
}

// NewList constructs a list with cfg.InitialHeight levels (0..InitialHeight-1)
// already materialized, each empty (min sentinel linking directly to the
// level's nil sentinel).
func NewList[K keys.Key[K]](cfg config.Config) (*List[K], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Log()
	if detected, mismatched := cachepad.Mismatch(cfg.AssumedCacheLineSize); mismatched {
		log.Warnf("skiplist: assumed cache line %d bytes, detected %d bytes; node padding may not prevent false sharing", cfg.AssumedCacheLineSize, detected)
	}

	l := &List[K]{cfg: cfg, reclaim: newReclaimer[K](), stats: newStats()}

	var prevMin *node[K]
	for lvl := 0; lvl < cfg.InitialHeight; lvl++ {
		min := newMinSentinel[K](lvl)
		nilN := newNilSentinel[K](lvl)
		min.forward.Store(nilN)
		if lvl > 0 {
			min.down = prevMin
		}
		prevMin = min
	}
	l.top.Store(prevMin)
	return l, nil
}

// GetTopLevel returns the current height of the highest populated level
// (spec.md §4.3.1).
func (l *List[K]) GetTopLevel() int {
	return l.top.Load().level
}

// Stats returns the list's per-operation counters.
func (l *List[K]) Stats() *Stats {
	return l.stats
}

// Reclaimer exposes the epoch diagnostics (internal/skiplist/reclaim.go).
func (l *List[K]) Reclaimer() *Reclaimer[K] {
	return l.reclaim
}

func (l *List[K]) bottomMin() *node[K] {
	n := l.top.Load()
	for n.level > 0 {
		n = n.down
	}
	return n
}

// descend is the classical skip-list predecessor search (spec.md §4.3.3).
// With le=false it advances while next.key < probe, landing on the
// predecessor of the first node >= probe (used for search, scan lower
// bounds, and delete's locate-by-key-and-value). With le=true it advances
// while next.key <= probe, landing on the predecessor of the first node
// strictly > probe — i.e. the END of any existing equal-key run — which is
// what makes duplicate inserts chain in insertion order (spec.md
// invariant 1).
//
// ctx.preds[lvl]/ctx.succs[lvl] are filled for every level from the current
// top down to 0.
func (l *List[K]) descend(ctx *Context[K], probe K, le bool) {
	top := l.top.Load()
	ctx.ensureCapacity(top.level + 1)

	x := top
	for lvl := top.level; lvl >= 0; lvl-- {
		next := x.next()
		for {
			var advance bool
			if le {
				advance = next.keyLE(probe)
			} else {
				advance = next.keyLT(probe)
			}
			if !advance {
				break
			}
			x = next
			next = x.next()
		}
		ctx.preds[lvl] = x
		ctx.succs[lvl] = next
		if lvl > 0 {
			x = x.down
		}
	}
}

// keyLE reports n.key <= probe (min is -inf, nil is +inf, so neither
// advances past nil and min always "is less").
func (n *node[K]) keyLE(probe K) bool {
	if n.isNil() {
		return false
	}
	if n.isMin() {
		return true
	}
	return !probe.Less(n.key)
}

// keyLT reports n.key < probe.
func (n *node[K]) keyLT(probe K) bool {
	if n.isNil() {
		return false
	}
	if n.isMin() {
		return true
	}
	return n.key.Less(probe)
}

// sampleHeight draws a tower height from a geometric(p=1/2) distribution
// capped at cfg.MaxLevel (spec.md §9's redesign of the source's fixed
// height-10 sampler).
func (l *List[K]) sampleHeight() int {
	h := 1
	for h < l.cfg.MaxLevel && rand.Float64() < 0.5 {
		h++
	}
	return h
}

// growTo raises the list until its top level is at least lvl, or until
// MaxLevel is reached. Concurrent callers may race to raise the same
// level; addLevel's CAS makes exactly one of them win, and the others
// simply observe the new top and stop.
func (l *List[K]) growTo(lvl int) {
	for l.GetTopLevel() < lvl {
		if !l.addLevel() {
			if l.GetTopLevel() >= lvl {
				return
			}
			if l.GetTopLevel()+1 >= l.cfg.MaxLevel {
				return
			}
		}
	}
}

// addLevel implements spec.md §4.3.2: allocate a new min/nil sentinel pair,
// wire the new min's down to the current top, and CAS the top pointer. On
// CAS failure the allocated sentinels are simply discarded (height is
// advisory; readers tolerate either height) and addLevel does not retry.
func (l *List[K]) addLevel() bool {
	cur := l.top.Load()
	if cur.level+1 >= l.cfg.MaxLevel {
		return false
	}
	newMin := newMinSentinel[K](cur.level + 1)
	newNil := newNilSentinel[K](cur.level + 1)
	newMin.down = cur
	newMin.forward.Store(newNil)
	return l.top.CompareAndSwap(cur, newMin)
}

// isDuplicateAt0 reports whether ctx.preds[0] — the last node with
// key <= probe under an le-traversal — is itself a live bottom node
// equal to probe. Because duplicates chain after existing equal keys,
// an equal key (if any exists anywhere in the chain) always ends up as
// preds[0], never as succs[0]; rechecking this immediately before each
// CAS attempt is what closes the unique-key race window spec.md §9
// flags (two concurrent unique inserts of the same key: the loser's
// retry re-descends, observes the winner's freshly linked node as its
// own preds[0], and fails the duplicate check).
func isDuplicateAt0[K keys.Key[K]](preds *node[K], probe K) bool {
	return !preds.isMin() && preds.isBottom() && !preds.isDeleted() && preds.key.Equal(probe)
}

// Insert adds key->value to the list (spec.md §4.3.4). If unique is set
// and an equal, live key is found, it returns false without any
// structural change. On success, a tower is linked at level 0 plus a
// geometrically sampled number of levels above it; if the per-level CAS
// retry budget is exhausted partway up the tower, the tower is silently
// truncated (spec.md §4.3.4 step 4) and Insert still returns true, since
// the bottom-level entry — the only level getValue/Search depend on — did
// link.
func (l *List[K]) Insert(key K, value itempointer.ItemPointer, unique bool) bool {
	log := l.cfg.Log()
	epoch := l.reclaim.enter()
	defer l.reclaim.exit(epoch)
	l.stats.record(opInsert)

	ctx := newContext[K](key, l.GetTopLevel()+1)

	if unique {
		if len(l.searchLocked(ctx, key)) > 0 {
			return false
		}
	}

	l.descend(ctx, key, true)
	bottom := newNode[K](key, 0, true)
	bottom.value = value

	for {
		if unique && isDuplicateAt0[K](ctx.preds[0], key) {
			return false
		}
		succ := ctx.succs[0]
		bottom.forward.Store(succ)
		if ctx.preds[0].casNext(succ, bottom) {
			break
		}
		if ctx.bumpRetry(0) >= l.cfg.MaxInsertRetries {
			log.Warnf("%sinsert: level 0 CAS budget exhausted, insert abandoned", logNS)
			return false
		}
		l.descend(ctx, key, true)
	}

	height := l.sampleHeight()
	below := bottom
	for lvl := 1; lvl <= height; lvl++ {
		l.growTo(lvl)
		if l.GetTopLevel() < lvl {
			// MaxLevel reached; truncate the tower here.
			break
		}
		ctx.ensureCapacity(lvl + 1)
		l.descend(ctx, key, true)

		interior := newNode[K](key, lvl, false)
		interior.down = below

		linked := false
		ctx.resetRetry(lvl)
		for {
			succ := ctx.succs[lvl]
			interior.forward.Store(succ)
			if ctx.preds[lvl].casNext(succ, interior) {
				linked = true
				break
			}
			if ctx.bumpRetry(lvl) >= l.cfg.MaxInsertRetries {
				break
			}
			l.descend(ctx, key, true)
		}
		if !linked {
			log.Warnf("%sinsert: level %d CAS budget exhausted, tower truncated", logNS, lvl)
			break
		}
		below = interior
	}

	// Clear IS_DELETABLE top-down across whatever was actually linked
	// (spec.md §4.3.4 step 5): only now is the tower safe for a
	// concurrent delete to tombstone.
	for n := below; n != nil; n = n.down {
		n.clearDeletable()
	}
	return true
}

const logNS = "[skiplist] "

// searchLocked performs a read-only search using an already-opened
// Context, avoiding a second epoch enter/exit for callers (like Insert's
// unique precheck) that are already inside one.
func (l *List[K]) searchLocked(ctx *Context[K], key K) []itempointer.ItemPointer {
	l.descend(ctx, key, false)
	var out []itempointer.ItemPointer
	cur := ctx.preds[0].next()
	for !cur.isNil() && cur.key.Equal(key) {
		if !cur.isDeleted() {
			out = append(out, cur.value)
		}
		cur = cur.next()
	}
	return out
}

// Search returns every live value for key, in forward (insertion) order
// (spec.md §4.3.1).
func (l *List[K]) Search(key K) []itempointer.ItemPointer {
	epoch := l.reclaim.enter()
	defer l.reclaim.exit(epoch)
	l.stats.record(opSearch)

	ctx := newContext[K](key, l.GetTopLevel()+1)
	return l.searchLocked(ctx, key)
}

// Delete tombstones the bottom node matching both key and value, then
// attempts to physically unlink its tower top-down (spec.md §4.3.5). It
// returns true iff this call performed the tombstoning (idempotent: a
// second Delete of the same (key, value) returns false).
//
// A bottom node still carrying IS_DELETABLE (its tower hasn't finished
// linking — see Insert's clearDeletable walk) is not selected as a
// candidate: choosing it would tombstone an entry whose interior levels
// Delete cannot yet find (they aren't linked), permanently orphaning them
// once Insert finishes publishing above a now-deleted bottom node. Racing
// a Delete against a same-key Insert that hasn't finished publishing its
// tower simply has Delete observe the key as not-yet-present, which a
// caller may retry — this list provides no stronger cross-operation
// linearizability guarantee than that (spec.md §5, §9).
func (l *List[K]) Delete(key K, value itempointer.ItemPointer) bool {
	log := l.cfg.Log()
	epoch := l.reclaim.enter()
	defer l.reclaim.exit(epoch)
	l.stats.record(opDelete)

	ctx := newContext[K](key, l.GetTopLevel()+1)
	l.descend(ctx, key, false)

	var target *node[K]
	cur := ctx.preds[0].next()
	for !cur.isNil() && cur.key.Equal(key) {
		if !cur.isDeleted() && !cur.isDeletable() {
			if v, ok := cur.getValue(key); ok && v == value {
				target = cur
				break
			}
		}
		cur = cur.next()
	}
	if target == nil {
		return false
	}
	if !target.markDeleted() {
		return false
	}

	// Locate the tower's interior nodes bottom-up by their down-links
	// (there is no up-pointer; spec.md §9 resolves the interior/bottom
	// back-reference as acyclic, downward-only ownership).
	towerAbove := make([]*node[K], 0, 4)
	below := target
	for lvl := 1; lvl <= l.GetTopLevel(); lvl++ {
		n := l.findTowerNodeAt(lvl, target.key, below)
		if n == nil {
			break
		}
		towerAbove = append(towerAbove, n)
		below = n
	}

	for i := len(towerAbove) - 1; i >= 0; i-- {
		n := towerAbove[i]
		if !l.unlinkAt(n.level, target.key, n) {
			log.Warnf("%sdelete: unlink budget exhausted at level %d; node left logically deleted but physically linked", logNS, n.level)
			continue
		}
		l.reclaim.retire(epoch, n)
	}
	if l.unlinkAt(0, target.key, target) {
		l.reclaim.retire(epoch, target)
	} else {
		log.Warnf("%sdelete: unlink budget exhausted at level 0; node left logically deleted but physically linked", logNS)
	}
	return true
}

// findTowerNodeAt scans level lvl's equal-key run for the interior node
// whose down pointer is exactly downTarget, distinguishing this tower from
// any other duplicate-key tower sharing the same level and key.
func (l *List[K]) findTowerNodeAt(lvl int, key K, downTarget *node[K]) *node[K] {
	ctx := newContext[K](key, lvl+1)
	l.descend(ctx, key, false)
	cur := ctx.preds[lvl].next()
	for !cur.isNil() && cur.key.Equal(key) {
		if cur.down == downTarget {
			return cur
		}
		cur = cur.next()
	}
	return nil
}

// unlinkAt CAS-unlinks node n (known to live at level lvl with key key)
// from its predecessor, re-finding the predecessor and retrying if the
// predecessor's forward link changed underneath it, bounded by
// cfg.MaxInsertRetries. It returns false (budget exhausted) or true
// (unlinked, or already unlinked by a racing deleter — both are success
// from the caller's perspective, since either way n is no longer
// reachable).
func (l *List[K]) unlinkAt(lvl int, key K, n *node[K]) bool {
	for retries := 0; ; retries++ {
		pred := l.findImmediatePredecessor(lvl, key, n)
		if pred == nil {
			return true // already unlinked
		}
		next := n.next()
		if pred.casNext(n, next) {
			return true
		}
		if retries >= l.cfg.MaxInsertRetries {
			return false
		}
	}
}

// findImmediatePredecessor walks level lvl's equal-key run starting from
// the descend-computed predecessor until it finds the node immediately
// before n, or determines n is no longer linked at this level.
func (l *List[K]) findImmediatePredecessor(lvl int, key K, n *node[K]) *node[K] {
	ctx := newContext[K](key, lvl+1)
	l.descend(ctx, key, false)
	cur := ctx.preds[lvl]
	next := cur.next()
	for {
		if next == n {
			return cur
		}
		if next.isNil() || !next.key.Equal(key) {
			return nil
		}
		cur = next
		next = cur.next()
	}
}

func withinHigh[K keys.Key[K]](curKey K, high *K, highIncl bool) bool {
	if high == nil {
		return true
	}
	if highIncl {
		return !(*high).Less(curKey)
	}
	return curKey.Less(*high)
}

// ScanRange walks the bottom level forward starting at the first node
// satisfying the lower bound (or the very first entry if low is nil),
// emitting values for which predicate (if non-nil) returns true, until the
// upper bound is exceeded, limit values have been emitted (limit<=0 means
// unbounded) or the list is exhausted. offset values that would otherwise
// be emitted are skipped first. Scans see a consistent prefix of the
// level-0 forward order but no globally consistent snapshot (spec.md
// §4.3.6): concurrent inserts/deletes may or may not be observed.
func (l *List[K]) ScanRange(low *K, lowIncl bool, high *K, highIncl bool, limit, offset int, predicate func(K, itempointer.ItemPointer) bool, out *[]itempointer.ItemPointer) {
	epoch := l.reclaim.enter()
	defer l.reclaim.exit(epoch)
	l.stats.record(opScan)

	var cur *node[K]
	if low == nil {
		cur = l.bottomMin().next()
	} else {
		ctx := newContext[K](*low, l.GetTopLevel()+1)
		if lowIncl {
			l.descend(ctx, *low, false)
		} else {
			l.descend(ctx, *low, true)
		}
		cur = ctx.preds[0].next()
	}

	skipped, emitted := 0, 0
	for !cur.isNil() {
		if !withinHigh(cur.key, high, highIncl) {
			return
		}
		if !cur.isDeleted() {
			if predicate == nil || predicate(cur.key, cur.value) {
				if skipped < offset {
					skipped++
				} else {
					*out = append(*out, cur.value)
					emitted++
					if limit > 0 && emitted >= limit {
						return
					}
				}
			}
		}
		cur = cur.next()
	}
}

// ScanAll walks every live bottom-level entry forward (spec.md §4.5's
// ScanAllKeys).
func (l *List[K]) ScanAll(out *[]itempointer.ItemPointer) {
	l.ScanRange(nil, true, nil, true, 0, 0, nil, out)
}
