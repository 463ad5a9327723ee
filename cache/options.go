package cache

import (
	"time"

	"github.com/kvshard/kvshard/policy"
)

// Clock provides the current time; useful for deterministic TTL tests.
// time.Now() carries a monotonic reading that survives wall-clock
// adjustments, which is why the real implementation below prefers it.
type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Options configures a cache instance. Zero values are safe; New applies
// sane defaults:
//   - nil Policy   => LRU
//   - nil Metrics  => NoopMetrics
//   - nil Clock    => real wall clock
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of resident entries. Must be >= 1.
	Capacity int

	// Policy decides placement/promotion/eviction-candidate selection.
	// nil defaults to LRU.
	Policy policy.Policy[K, V]

	// OnEvict is called synchronously under the instance lock whenever an
	// entry leaves the cache for a reason other than Delete or Clear. Keep
	// it cheap.
	OnEvict func(key K, val V, reason EvictReason)

	// Metrics receives Get/Put/Hit/Miss/Evict/Size signals in addition to
	// the counters exposed by Stats().
	Metrics Metrics

	// Clock overrides the time source. nil => real wall clock.
	Clock Clock
}
