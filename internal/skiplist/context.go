package skiplist

import "github.com/larkdb/skiplistindex/keys"

// Context is the per-operation search state spec.md §4.4 describes: the
// probe key, per-level retry counters, and a level-cursor scratchpad. Its
// lifetime is exactly one List operation; it is never shared across
// operations or goroutines.
type Context[K keys.Key[K]] struct {
	probe K

	// preds/succs are reused across the traversal-then-retry loop so an
	// insert/delete doesn't reallocate a scratch slice per level.
	preds []*node[K]
	succs []*node[K]
	retry []int
}

// newContext allocates a Context sized for a list whose current ceiling is
// maxLevel levels (0..maxLevel-1).
func newContext[K keys.Key[K]](probe K, maxLevel int) *Context[K] {
	return &Context[K]{
		probe: probe,
		preds: make([]*node[K], maxLevel),
		succs: make([]*node[K], maxLevel),
		retry: make([]int, maxLevel),
	}
}

// ensureCapacity grows preds/succs/retry if the list has grown past what
// this context was sized for (the list's top level can rise between this
// context's creation and a later level of the same operation's tower
// build).
func (c *Context[K]) ensureCapacity(levels int) {
	if levels <= len(c.preds) {
		return
	}
	grow := func(s []*node[K]) []*node[K] {
		next := make([]*node[K], levels)
		copy(next, s)
		return next
	}
	c.preds = grow(c.preds)
	c.succs = grow(c.succs)
	nextRetry := make([]int, levels)
	copy(nextRetry, c.retry)
	c.retry = nextRetry
}

func (c *Context[K]) resetRetry(level int) {
	c.retry[level] = 0
}

// bumpRetry increments the level's retry counter and reports the new
// count, for comparison against Config.MaxInsertRetries.
func (c *Context[K]) bumpRetry(level int) int {
	c.retry[level]++
	return c.retry[level]
}
