package skiplist

import (
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/larkdb/skiplistindex/config"
	"github.com/larkdb/skiplistindex/itempointer"
	"github.com/larkdb/skiplistindex/keys"
)

func testConfig() config.Config {
	c := config.Default()
	c.InitialHeight = 4
	c.MaxLevel = 32
	c.MaxInsertRetries = 50
	return c
}

func newTestList(t *testing.T) *List[keys.CompactInts1] {
	t.Helper()
	l, err := NewList[keys.CompactInts1](testConfig())
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	return l
}

func k(n uint64) keys.CompactInts1 {
	return keys.NewCompactInts1(n)
}

func TestInsertSearchBasic(t *testing.T) {
	l := newTestList(t)

	if !l.Insert(k(5), itempointer.ItemPointer(50), false) {
		t.Fatal("insert of fresh key failed")
	}
	got := l.Search(k(5))
	if len(got) != 1 || got[0] != 50 {
		t.Fatalf("Search(5) = %v, want [50]", got)
	}
	if got := l.Search(k(6)); len(got) != 0 {
		t.Fatalf("Search(6) = %v, want empty", got)
	}
}

// S1: duplicate keys in non-unique mode chain in insertion order.
func TestDuplicateKeysChainInInsertionOrder(t *testing.T) {
	l := newTestList(t)

	for _, v := range []itempointer.ItemPointer{1, 2, 3, 4} {
		if !l.Insert(k(7), v, false) {
			t.Fatalf("insert %d failed", v)
		}
	}
	got := l.Search(k(7))
	want := []itempointer.ItemPointer{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Search(7) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Search(7)[%d] = %d, want %d (order not preserved)", i, got[i], want[i])
		}
	}
}

// S2: unique mode rejects a second insert of an existing live key.
func TestUniqueKeyRejectsDuplicate(t *testing.T) {
	l := newTestList(t)

	if !l.Insert(k(3), 30, true) {
		t.Fatal("first unique insert should succeed")
	}
	if l.Insert(k(3), 31, true) {
		t.Fatal("second unique insert of the same key should fail")
	}
	got := l.Search(k(3))
	if len(got) != 1 || got[0] != 30 {
		t.Fatalf("Search(3) = %v, want [30]", got)
	}
}

// Deleting a key, then re-inserting it under UniqueKeys, must succeed —
// a tombstoned node no longer counts as "live" for the uniqueness check.
func TestUniqueKeyAllowsReinsertAfterDelete(t *testing.T) {
	l := newTestList(t)

	if !l.Insert(k(3), 30, true) {
		t.Fatal("first insert should succeed")
	}
	if !l.Delete(k(3), 30) {
		t.Fatal("delete should succeed")
	}
	if !l.Insert(k(3), 31, true) {
		t.Fatal("reinsert after delete should succeed under UniqueKeys")
	}
	got := l.Search(k(3))
	if len(got) != 1 || got[0] != 31 {
		t.Fatalf("Search(3) = %v, want [31]", got)
	}
}

// S3/invariant 7: delete is idempotent — a second delete of the same
// (key, value) reports failure and does not disturb other entries.
func TestDeleteIdempotent(t *testing.T) {
	l := newTestList(t)
	l.Insert(k(9), 90, false)

	if !l.Delete(k(9), 90) {
		t.Fatal("first delete should succeed")
	}
	if l.Delete(k(9), 90) {
		t.Fatal("second delete of the same (key, value) should report false")
	}
	if got := l.Search(k(9)); len(got) != 0 {
		t.Fatalf("Search(9) after delete = %v, want empty", got)
	}
}

// Deleting one duplicate by value must leave its siblings searchable.
func TestDeleteOneOfManyDuplicates(t *testing.T) {
	l := newTestList(t)
	l.Insert(k(2), 1, false)
	l.Insert(k(2), 2, false)
	l.Insert(k(2), 3, false)

	if !l.Delete(k(2), 2) {
		t.Fatal("delete of middle duplicate should succeed")
	}
	got := l.Search(k(2))
	want := map[itempointer.ItemPointer]bool{1: true, 3: true}
	if len(got) != 2 {
		t.Fatalf("Search(2) = %v, want two survivors", got)
	}
	for _, v := range got {
		if !want[v] {
			t.Fatalf("unexpected survivor %d", v)
		}
	}
}

func TestDeleteUnknownKeyOrValueFails(t *testing.T) {
	l := newTestList(t)
	l.Insert(k(1), 10, false)

	if l.Delete(k(2), 10) {
		t.Fatal("delete of a key never inserted should fail")
	}
	if l.Delete(k(1), 99) {
		t.Fatal("delete of a key with the wrong value should fail")
	}
}

func TestGetTopLevelGrowsWithTallTowers(t *testing.T) {
	l := newTestList(t)
	start := l.GetTopLevel()

	// Insert enough keys that at least one tower is all but certain to
	// exceed the initial height: the top level starts at 3, each insert
	// samples a height of 4 or more with probability 1/8, so 500 inserts
	// leave the list unraised with probability (7/8)^500, below 1e-28.
	for i := uint64(0); i < 500; i++ {
		l.Insert(k(i), itempointer.ItemPointer(i), false)
	}
	if l.GetTopLevel() <= start {
		t.Fatalf("GetTopLevel() did not grow from %d (now %d)", start, l.GetTopLevel())
	}
}

func TestScanRangeBoundsAndOrder(t *testing.T) {
	l := newTestList(t)
	for i := uint64(0); i < 20; i++ {
		l.Insert(k(i), itempointer.ItemPointer(i), true)
	}

	low, high := k(5), k(10)
	var out []itempointer.ItemPointer
	l.ScanRange(&low, true, &high, false, 0, 0, nil, &out)

	want := []itempointer.ItemPointer{5, 6, 7, 8, 9}
	if len(out) != len(want) {
		t.Fatalf("ScanRange(5,10) = %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("ScanRange order mismatch at %d: got %d want %d", i, out[i], want[i])
		}
	}
}

func TestScanRangeLimitOffset(t *testing.T) {
	l := newTestList(t)
	for i := uint64(0); i < 10; i++ {
		l.Insert(k(i), itempointer.ItemPointer(i), true)
	}

	var out []itempointer.ItemPointer
	l.ScanRange(nil, true, nil, true, 3, 2, nil, &out)
	want := []itempointer.ItemPointer{2, 3, 4}
	if len(out) != len(want) {
		t.Fatalf("ScanRange limit/offset = %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, out[i], want[i])
		}
	}
}

func TestScanAllSkipsDeleted(t *testing.T) {
	l := newTestList(t)
	for i := uint64(0); i < 5; i++ {
		l.Insert(k(i), itempointer.ItemPointer(i), true)
	}
	l.Delete(k(2), 2)

	var out []itempointer.ItemPointer
	l.ScanAll(&out)
	for _, v := range out {
		if v == 2 {
			t.Fatalf("ScanAll returned a deleted value: %v", out)
		}
	}
	if len(out) != 4 {
		t.Fatalf("ScanAll = %v, want 4 survivors", out)
	}
}

func TestScanRangePredicate(t *testing.T) {
	l := newTestList(t)
	for i := uint64(0); i < 10; i++ {
		l.Insert(k(i), itempointer.ItemPointer(i), true)
	}
	var out []itempointer.ItemPointer
	l.ScanRange(nil, true, nil, true, 0, 0, func(_ keys.CompactInts1, v itempointer.ItemPointer) bool {
		return v%2 == 0
	}, &out)
	for _, v := range out {
		if v%2 != 0 {
			t.Fatalf("predicate leaked an odd value: %v", out)
		}
	}
	if len(out) != 5 {
		t.Fatalf("ScanRange predicate = %v, want 5 even values", out)
	}
}

// S4/invariant 5: concurrent unique inserts of the same key — exactly one
// must win, and it must be linearizable-looking from Search's point of view.
func TestConcurrentUniqueInsertExactlyOneWins(t *testing.T) {
	l := newTestList(t)
	const n = 64

	var wg sync.WaitGroup
	results := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.Insert(k(42), itempointer.ItemPointer(i), true)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range results {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning insert, got %d", wins)
	}
	if got := l.Search(k(42)); len(got) != 1 {
		t.Fatalf("Search(42) = %v, want exactly one survivor", got)
	}
}

// S5/S6: concurrent inserts and deletes across many keys finish within a
// time bound and, once quiesced, leave the bottom level walkable in sorted
// order.
func TestConcurrentInsertDeleteStress(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in -short mode")
	}
	l := newTestList(t)
	const keyCount = 200
	workers := runtime.GOMAXPROCS(0) * 2

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < 2000; i++ {
				key := uint64(r.Intn(keyCount))
				if r.Intn(2) == 0 {
					l.Insert(k(key), itempointer.ItemPointer(key), false)
				} else {
					l.Delete(k(key), itempointer.ItemPointer(key))
				}
			}
		}(int64(w) + 1)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("stress test did not quiesce in time (possible deadlock or livelock)")
	}

	// The list must still be walkable in order with no corruption.
	var out []itempointer.ItemPointer
	l.ScanAll(&out)
	if !sort.SliceIsSorted(out, func(i, j int) bool { return out[i] < out[j] }) {
		t.Fatalf("ScanAll result is not sorted after concurrent churn: %v", out)
	}
}

func TestReclaimerRetiresUnlinkedNodes(t *testing.T) {
	l := newTestList(t)
	l.Insert(k(1), 1, false)
	l.Delete(k(1), 1)

	retiredCount := func() int {
		total := 0
		for i := range l.reclaim.retired {
			total += len(l.reclaim.retired[i])
		}
		return total
	}
	if retiredCount() == 0 {
		t.Fatal("Delete unlinked a node but retired nothing")
	}

	// Advancing the epoch many times should eventually drain the
	// generation the delete retired into, without panicking or racing.
	for i := 0; i < reclaimRingSize*2; i++ {
		e := l.reclaim.enter()
		l.reclaim.exit(e)
	}
	if n := retiredCount(); n != 0 {
		t.Fatalf("%d retired nodes still held after %d epoch advances", n, reclaimRingSize*2)
	}
}
