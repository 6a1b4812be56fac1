package skiplist

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/zeebo/xxh3"
)

// op identifies which per-operation counter a stats update targets.
type op int

const (
	opInsert op = iota
	opDelete
	opSearch
	opScan
	opCount
)

// shardedCounter is a set of independently-incrementable buckets for one
// logical counter. Concurrent inserters/deleters/searchers across many
// goroutines hash to different buckets instead of all CAS-looping on one
// cache line; Count() sums the buckets, which only a statistics reader
// does (rare relative to the write rate).
type shardedCounter struct {
	buckets []atomic.Int64
}

func newShardedCounter(shards int) *shardedCounter {
	if shards < 1 {
		shards = 1
	}
	return &shardedCounter{buckets: make([]atomic.Int64, shards)}
}

func (c *shardedCounter) add(shard int, delta int64) {
	c.buckets[shard%len(c.buckets)].Add(delta)
}

func (c *shardedCounter) sum() int64 {
	var total int64
	for i := range c.buckets {
		total += c.buckets[i].Load()
	}
	return total
}

// Stats aggregates per-operation counters for the façade's statistics
// integration (spec.md §4.5: "increment the insert statistic when
// statistics are enabled").
type Stats struct {
	counters [opCount]*shardedCounter
}

// newStats creates per-operation counters sharded across
// runtime.GOMAXPROCS(0) buckets, a reasonable upper bound on concurrently
// contending goroutines without over-allocating on small machines.
func newStats() *Stats {
	shards := runtime.GOMAXPROCS(0)
	s := &Stats{}
	for i := range s.counters {
		s.counters[i] = newShardedCounter(shards)
	}
	return s
}

// record increments the named counter's shard, selected by hashing a
// fast-varying value (the address of a stack-local byte — a cheap stand-in
// for a goroutine ID, which Go doesn't expose) with xxh3. The choice of
// shard only needs to spread contention, not be stable across calls.
func (s *Stats) record(o op) {
	var salt byte
	addr := uintptr(unsafe.Pointer(&salt))
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(addr >> (8 * i))
	}
	shard := int(xxh3.Hash(buf[:]) % uint64(len(s.counters[o].buckets)))
	s.counters[o].add(shard, 1)
}

// Insert returns the cumulative insert counter.
func (s *Stats) Insert() int64 { return s.counters[opInsert].sum() }

// Delete returns the cumulative delete counter.
func (s *Stats) Delete() int64 { return s.counters[opDelete].sum() }

// Search returns the cumulative search counter.
func (s *Stats) Search() int64 { return s.counters[opSearch].sum() }

// Scan returns the cumulative scan counter.
func (s *Stats) Scan() int64 { return s.counters[opScan].sum() }
