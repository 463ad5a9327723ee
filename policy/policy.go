// Package policy defines the pluggable eviction-policy surface used by
// package cache. A policy decides where a new entry lands, how a hit/update
// promotes it, and may propose an entry for removal on admission; the
// capacity-driven victim on overflow is chosen by the cache instance (its
// recency-list tail), not by the policy. A policy never touches
// the key->entry map or the mutex directly — those stay owned by the cache
// instance and are reached only through Hooks.
package policy

import "time"

// Node is the minimal contract a cache entry must satisfy for a policy.
// It provides read-only access to the key and a pointer to the value.
// The pointer allows in-place updates without re-linking the intrusive node.
//
// Expired reports whether the entry's TTL deadline has already passed as of
// now. Every policy in this package is TTL-aware through this method rather
// than through a second, parallel notion of staleness: a policy that wants
// to treat dead weight differently from live recency (see lru.lru.OnAdd)
// reads it straight off the node it was already handed, instead of the
// cache instance reaching back in to special-case entries for it.
type Node[K comparable, V any] interface {
	Key() K
	Value() *V
	Expired(now time.Time) bool
}

// Hooks expose O(1) list operations that a policy can use to manipulate the
// cache instance's intrusive MRU/LRU list. Implementations are provided by
// the cache instance.
//
// Concurrency: all hook calls happen under the instance's lock.
// Important: hooks manage only the list; the instance owns the key->node map.
type Hooks[K comparable, V any] interface {
	// MoveToFront promotes the node to MRU.
	MoveToFront(Node[K, V])
	// PushFront inserts the node at MRU (used on admission).
	PushFront(Node[K, V])
	// Remove detaches the node from the list (map bookkeeping is done by
	// the cache instance).
	Remove(Node[K, V])
	// Back returns the current LRU node (or nil if empty).
	Back() Node[K, V]
	// Len returns the number of resident nodes.
	Len() int
}

// CachePolicy is a policy instance bound to one cache instance's hooks. All
// methods are invoked under that instance's lock.
//
// Semantics:
//   - OnAdd receives the admission time and may return an eviction
//     candidate. A TTL-aware policy uses now to prefer sacrificing an
//     entry that is already dead over one that is merely old; a policy
//     indifferent to TTL can ignore now entirely. The cache will call
//     OnRemove for the returned node and then evict it. Returning nil
//     defers the capacity decision to the cache instance's own recency-tail
//     eviction.
//   - OnGet/OnUpdate typically promote the node (e.g., move to MRU). The
//     cache instance has already evicted an expired node before calling
//     OnGet, so a policy never observes a dead node here.
//   - OnRemove is a notification to update policy-internal state (e.g.,
//     maintain ghost queues). The cache instance performs the actual
//     deletion from the map and list.
type CachePolicy[K comparable, V any] interface {
	OnAdd(n Node[K, V], now time.Time) (evict Node[K, V])
	OnGet(Node[K, V])
	OnUpdate(Node[K, V])
	OnRemove(Node[K, V])
}

// Policy is a factory that creates cache-local policy instances bound to a
// particular instance's hooks.
type Policy[K comparable, V any] interface {
	New(Hooks[K, V]) CachePolicy[K, V]
}
