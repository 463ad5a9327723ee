// Package factory constructs cache instances and partitioned shard sets
// from a policy tag, grounded on the registry pattern in the original
// cache.factory module: a closed map from policy tag to constructor, with
// only LRU registered out of the box.
package factory

import (
	"errors"
	"sort"

	"github.com/kvshard/kvshard/cache"
	"github.com/kvshard/kvshard/policy"
	"github.com/kvshard/kvshard/policy/lru"
)

// Tag identifies an eviction policy by name. Only LRU is implemented;
// the others are reserved so operators can request them without the
// config contract itself needing to change when they land.
type Tag string

const (
	LRU     Tag = "LRU"
	LFU     Tag = "LFU"
	FIFO    Tag = "FIFO"
	ARC     Tag = "ARC"
	TinyLFU Tag = "TinyLFU"
)

// ErrUnsupportedPolicy is returned when a requested Tag has no registered
// constructor.
var ErrUnsupportedPolicy = errors.New("factory: unsupported policy")

// ErrInvalidConfig is returned when CreateShardSet's parameters violate the
// capacity-split contract (empty or duplicate shard IDs, or a total
// capacity smaller than the shard count).
var ErrInvalidConfig = errors.New("factory: invalid config")

type ctor func() policy.Policy[string, string]

// CacheFactory builds cache.Cache[string, string] instances — the wire
// protocol only ever carries opaque printable strings, so the factory
// trades the cache package's full generality for a concrete, easy-to-wire
// construction surface used by package node and cmd/cache-server.
type CacheFactory struct {
	registry map[Tag]ctor
	metrics  cache.Metrics
}

// New returns a factory with LRU registered.
func New() *CacheFactory {
	f := &CacheFactory{registry: make(map[Tag]ctor), metrics: cache.NoopMetrics{}}
	f.Register(LRU, func() policy.Policy[string, string] { return lru.New[string, string]() })
	return f
}

// SetMetrics attaches a Metrics sink shared by every cache this factory
// builds from this point on. Every shard of every node reports into the
// same sink, matching the wire protocol's own per-node stats aggregation.
func (f *CacheFactory) SetMetrics(m cache.Metrics) {
	f.metrics = m
}

// Register attaches a policy constructor for tag, overwriting any existing
// registration. Additional policies (LFU, FIFO, ARC, TinyLFU, or a custom
// tag) can be wired in at startup without touching this package.
func (f *CacheFactory) Register(tag Tag, c ctor) {
	f.registry[tag] = c
}

// CreateCache builds a single cache of the given policy and capacity.
// capacity must be >= 1; tag must be registered.
func (f *CacheFactory) CreateCache(capacity int, tag Tag) (cache.Cache[string, string], error) {
	newPolicy, ok := f.registry[tag]
	if !ok {
		return nil, ErrUnsupportedPolicy
	}
	c, err := cache.New[string, string](cache.Options[string, string]{
		Capacity: capacity,
		Policy:   newPolicy(),
		Metrics:  f.metrics,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateShardSet builds one independent cache per shard ID, splitting
// totalCapacity across them: each shard gets totalCapacity/len(shardIDs),
// and the first totalCapacity%len(shardIDs) shards — in sorted ID order —
// receive one extra slot (spec §3, "Capacity split").
//
// Requires: shardIDs non-empty and unique, totalCapacity >= len(shardIDs).
// Violations return ErrInvalidConfig.
func (f *CacheFactory) CreateShardSet(totalCapacity int, tag Tag, shardIDs []int) (map[int]cache.Cache[string, string], error) {
	if len(shardIDs) == 0 {
		return nil, ErrInvalidConfig
	}
	seen := make(map[int]struct{}, len(shardIDs))
	sorted := make([]int, len(shardIDs))
	copy(sorted, shardIDs)
	sort.Ints(sorted)
	for _, id := range sorted {
		if _, dup := seen[id]; dup {
			return nil, ErrInvalidConfig
		}
		seen[id] = struct{}{}
	}

	k := len(sorted)
	if totalCapacity < k {
		return nil, ErrInvalidConfig
	}

	base := totalCapacity / k
	rem := totalCapacity % k

	shards := make(map[int]cache.Cache[string, string], k)
	for i, id := range sorted {
		capacity := base
		if i < rem {
			capacity++
		}
		c, err := f.CreateCache(capacity, tag)
		if err != nil {
			return nil, err
		}
		shards[id] = c
	}
	return shards, nil
}
