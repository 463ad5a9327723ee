package cache

import (
	"sync"
	"time"

	"github.com/kvshard/kvshard/policy"
	"github.com/kvshard/kvshard/policy/lru"
)

// lruCache is the concrete Cache implementation: one mutex, one map, one
// intrusive recency list, one policy, one set of counters. Nothing here is
// shared with any other instance — per-shard isolation (package node) comes
// for free by constructing one lruCache per owned shard.
type lruCache[K comparable, V any] struct {
	mu sync.Mutex

	m    map[K]*entry[K, V]
	list *recencyList[K, V]
	cap  int

	pol policy.CachePolicy[K, V]
	opt Options[K, V]

	counters
}

// New constructs a cache instance. Returns ErrInvalidCapacity if
// opt.Capacity <= 0, per the construction-time failure contract in the spec.
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[K, V]()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Clock == nil {
		opt.Clock = realClock{}
	}

	c := &lruCache[K, V]{
		m:    make(map[K]*entry[K, V], opt.Capacity),
		list: newRecencyList[K, V](),
		cap:  opt.Capacity,
		opt:  opt,
	}
	c.pol = opt.Policy.New(cacheHooks[K, V]{c: c})
	return c, nil
}

// Get returns the value for key and promotes it according to the policy.
func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets.Add(1)
	c.opt.Metrics.Get()

	e, ok := c.m[key]
	if !ok {
		c.misses.Add(1)
		c.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	if e.Expired(c.opt.Clock.Now()) {
		c.evict(e, EvictTTL)
		c.misses.Add(1)
		c.opt.Metrics.Miss()
		var zero V
		return zero, false
	}

	c.pol.OnGet(e)
	c.hits.Add(1)
	c.opt.Metrics.Hit()
	return e.val, true
}

// Put inserts or overwrites key->value with the given relative TTL.
func (c *lruCache[K, V]) Put(key K, val V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.puts.Add(1)
	c.opt.Metrics.Put()

	deadline := c.deadlineFor(ttl)

	if e, ok := c.m[key]; ok {
		e.val = val
		e.deadline = deadline
		c.pol.OnUpdate(e)
		c.opt.Metrics.Size(len(c.m))
		return
	}

	e := &entry[K, V]{key: key, val: val, deadline: deadline}
	c.m[key] = e
	// A policy-proposed victim here is an opportunistic TTL sweep (see
	// policy/lru's OnAdd), not a capacity decision, so it's reported as
	// EvictTTL rather than counted against the wire-visible Evictions stat.
	if victim := c.pol.OnAdd(e, c.opt.Clock.Now()); victim != nil {
		c.evict(victim.(*entry[K, V]), EvictTTL)
	}
	c.enforceCapacity()
	c.opt.Metrics.Size(len(c.m))
}

// Delete removes key if present. Does not touch Hits/Misses/Evictions.
func (c *lruCache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		return false
	}
	c.pol.OnRemove(e)
	c.list.detach(e)
	delete(c.m, key)
	c.opt.Metrics.Size(len(c.m))
	return true
}

// Stats returns an atomic snapshot of the counters.
func (c *lruCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters.snapshot()
}

// Len reports the number of currently resident entries.
func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Clear removes every entry and resets all counters. Idempotent: clearing a
// freshly constructed instance is a no-op other than zeroing counters that
// were already zero.
func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m = make(map[K]*entry[K, V], c.cap)
	c.list.reset()
	c.counters.reset()
	c.opt.Metrics.Size(0)
}

// -------------------- internals (mu held) --------------------

func (c *lruCache[K, V]) deadlineFor(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.opt.Clock.Now().Add(ttl)
}

// enforceCapacity evicts LRU entries until the count limit is satisfied.
func (c *lruCache[K, V]) enforceCapacity() {
	for len(c.m) > c.cap {
		victim := c.list.back()
		if victim == nil {
			break
		}
		c.evict(victim, EvictCapacity)
	}
}

// evict removes e from the list, the index, notifies the policy and the
// configured callback/metrics. Only EvictCapacity increments the
// authoritative Evictions counter; EvictTTL is reported to Metrics but is
// not wire-visible via Stats (spec §4.1, §9).
func (c *lruCache[K, V]) evict(e *entry[K, V], reason EvictReason) {
	c.pol.OnRemove(e)
	c.list.detach(e)
	delete(c.m, e.key)
	if reason == EvictCapacity {
		c.evictions.Add(1)
	}
	c.opt.Metrics.Evict(reason)
	if cb := c.opt.OnEvict; cb != nil {
		cb(e.key, e.val, reason)
	}
}

// -------------------- policy hooks --------------------

// cacheHooks adapts lruCache's list operations to policy.Hooks.
type cacheHooks[K comparable, V any] struct{ c *lruCache[K, V] }

func (h cacheHooks[K, V]) PushFront(n policy.Node[K, V])   { h.c.list.pushFront(n.(*entry[K, V])) }
func (h cacheHooks[K, V]) MoveToFront(n policy.Node[K, V]) { h.c.list.moveToFront(n.(*entry[K, V])) }
func (h cacheHooks[K, V]) Remove(n policy.Node[K, V])      { h.c.list.detach(n.(*entry[K, V])) }
func (h cacheHooks[K, V]) Back() policy.Node[K, V] {
	if b := h.c.list.back(); b != nil {
		return b
	}
	return nil
}
func (h cacheHooks[K, V]) Len() int { return len(h.c.m) }
