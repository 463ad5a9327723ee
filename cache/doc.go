// Package cache implements a single eviction-engine instance: an O(1)
// recency-aware key/value store with optional per-entry TTL.
//
// Design
//
//   - Storage: an instance keeps a map[K]*entry for lookups and an intrusive
//     MRU<->LRU doubly linked list (with fixed sentinel nodes) for ordering.
//     All operations are O(1) expected: one map access plus a constant number
//     of pointer fixes.
//
//   - Policy: the eviction order is pluggable via the policy package. The
//     instance owns the map, the list, the mutex and the TTL/stat bookkeeping;
//     it asks the policy (through policy.Hooks) where to place or promote an
//     entry, and the policy may propose an expired entry for removal on
//     admission. On overflow the instance itself evicts the entry at the
//     list tail; the policy does not choose that victim. LRU is the only policy
//     shipped here; other tags (LFU, FIFO, ARC, TinyLFU) are registrable at
//     the factory layer but are not implemented.
//
//   - TTL: entries may carry an absolute deadline computed once at admission
//     time from the configured Clock (time.Now() by default). Expiration is
//     lazy: discovered on Get (or, for an expired LRU tail, on the next Put
//     of a new key) and removed synchronously, but does not count as an
//     eviction (only capacity-driven removals increment Evictions).
//
//   - Concurrency: one mutex per instance. Every operation runs to
//     completion without suspension points; readers and writers for the
//     same instance fully serialize. Multiple instances (e.g. one per shard
//     in package node) share nothing and may run fully in parallel.
//
//   - Stats: five monotonically increasing counters (Gets, Puts, Hits,
//     Misses, Evictions), observable only via a Stats() snapshot. Counter
//     updates are padded to a cache line (see internal/util) to avoid false
//     sharing between instances under concurrent load.
package cache
