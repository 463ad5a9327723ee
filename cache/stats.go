package cache

import "github.com/kvshard/kvshard/internal/util"

// Stats is an atomic snapshot of a single cache instance's counters.
// Reset only by Clear.
type Stats struct {
	Gets      uint64
	Puts      uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// counters holds the five live counters, each padded to its own cache line
// so that concurrent updates from different instances never false-share.
type counters struct {
	_         util.CacheLinePad
	gets      util.PaddedAtomicUint64
	puts      util.PaddedAtomicUint64
	hits      util.PaddedAtomicUint64
	misses    util.PaddedAtomicUint64
	evictions util.PaddedAtomicUint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Gets:      c.gets.Load(),
		Puts:      c.puts.Load(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (c *counters) reset() {
	c.gets.Store(0)
	c.puts.Store(0)
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
