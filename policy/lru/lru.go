// Package lru implements a TTL-aware Least-Recently-Used eviction policy:
// admission order is plain move-to-front LRU, but whenever a new entry is
// admitted, a tail that has already expired is proposed for removal,
// whether or not the cache is at capacity. A
// dead entry sitting at the LRU tail is not "recently useful" by any
// definition, so there is no reason to wait for a capacity-driven sweep (or
// a Get that never comes) to reclaim it.
package lru

import (
	"time"

	"github.com/kvshard/kvshard/policy"
)

// lru is bound to one cache instance's hooks.
type lru[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

type lruPolicy[K comparable, V any] struct{}

// New returns a Policy factory that constructs per-instance LRU policies.
func New[K comparable, V any]() policy.Policy[K, V] { return lruPolicy[K, V]{} }

// New implements policy.Policy by binding instance hooks and returning a
// bound policy instance.
func (lruPolicy[K, V]) New(h policy.Hooks[K, V]) policy.CachePolicy[K, V] {
	return &lru[K, V]{h: h}
}

// OnAdd inspects the current LRU tail before linking the new entry. If that
// tail is already expired as of now, it is proposed as the eviction
// candidate — a proactive TTL sweep piggybacked on the write path, distinct
// from (and in addition to) the cache instance's own capacity-driven
// tail eviction, which never looks at expiry at all. When capacity is
// under no pressure this still reclaims dead entries instead of letting
// them sit until a Get finds them or the index fills up around them.
//
// The tail is read before PushFront so a freshly admitted, never-expiring
// entry can never be handed back as its own eviction candidate on a cold
// (previously empty) list.
func (p *lru[K, V]) OnAdd(n policy.Node[K, V], now time.Time) (evict policy.Node[K, V]) {
	var victim policy.Node[K, V]
	if back := p.h.Back(); back != nil && back.Expired(now) {
		victim = back
	}
	p.h.PushFront(n)
	return victim
}

// OnGet promotes the entry to MRU.
func (p *lru[K, V]) OnGet(n policy.Node[K, V]) { p.h.MoveToFront(n) }

// OnUpdate promotes the entry to MRU (updates are treated as recent use).
func (p *lru[K, V]) OnUpdate(n policy.Node[K, V]) { p.h.MoveToFront(n) }

// OnRemove is a no-op for pure LRU (nothing to clean up in policy state).
func (p *lru[K, V]) OnRemove(_ policy.Node[K, V]) {}
