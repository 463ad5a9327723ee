package cache

import "time"

// Cache is a single eviction-engine instance: an in-memory key/value store
// with a pluggable recency policy and optional per-entry TTL.
//
// All methods are safe for concurrent use by multiple goroutines. Typical
// complexity is amortized O(1): a map lookup plus constant-time list
// adjustments under the instance's lock.
type Cache[K comparable, V any] interface {
	// Get returns the value for key and whether it was found.
	// A present-but-expired entry is evicted on read (lazily, without
	// incrementing Evictions) and reported as a miss.
	// On hit, the entry is promoted according to the active policy.
	// Increments Gets; increments exactly one of Hits or Misses.
	Get(key K) (V, bool)

	// Put inserts or overwrites key->value. ttl is a relative duration; a
	// non-positive ttl means the entry never expires. If key is already
	// present, its value and deadline are overwritten and the entry is
	// promoted. If key is new and admission brings the index above
	// capacity, the least recently used entry is removed and Evictions
	// is incremented. On admission of a new key, an already-expired entry
	// proposed by the policy (the LRU tail, for policy/lru) is also
	// removed; that removal does not count in Evictions. Increments Puts
	// unconditionally.
	Put(key K, value V, ttl time.Duration)

	// Delete removes key if present and reports whether it was removed.
	// Does not affect Hits/Misses/Evictions.
	Delete(key K) bool

	// Stats returns an atomic snapshot of the instance's counters.
	Stats() Stats

	// Clear removes every entry and resets all counters to zero. Idempotent.
	Clear()

	// Len reports the number of currently resident entries.
	Len() int
}
