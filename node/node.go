// Package node implements CacheNode, the shard-owning unit that routes keys
// to a local cache.Cache by CRC-32 hash and reports MOVED for shards it does
// not own. Grounded on original_source/cache/cache_node.py, restructured in
// the teacher's style (constructor validation, explicit error values instead
// of exceptions).
package node

import (
	"errors"
	"fmt"
	"hash/crc32"
	"sort"
	"time"

	"github.com/kvshard/kvshard/cache"
	"github.com/kvshard/kvshard/factory"
)

// ErrInvalidConfig is returned by New when a Config fails validation.
var ErrInvalidConfig = errors.New("node: invalid config")

// Address is a (host, port) pair, matching the two-element array the wire
// config format uses for cluster_map entries.
type Address struct {
	Host string
	Port int
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// Config describes one node's share of a cluster: the total shard count,
// the shards this node owns, the full cluster map (needed to answer MOVED
// for shards it doesn't own), its per-shard-set capacity, and eviction
// policy tag.
type Config struct {
	NodeID      string
	NShards     int
	OwnedShards []int
	ClusterMap  map[int]Address
	Capacity    int
	Policy      factory.Tag
}

func (c Config) validate() error {
	if c.NShards <= 0 {
		return fmt.Errorf("%w: n_shards must be > 0", ErrInvalidConfig)
	}
	if len(c.OwnedShards) == 0 {
		return fmt.Errorf("%w: owned_shards cannot be empty", ErrInvalidConfig)
	}
	for _, s := range c.OwnedShards {
		if s < 0 || s >= c.NShards {
			return fmt.Errorf("%w: owned_shards contains invalid shard id %d", ErrInvalidConfig, s)
		}
	}
	if len(c.ClusterMap) != c.NShards {
		return fmt.Errorf("%w: cluster_map must contain every shard id in [0, n_shards)", ErrInvalidConfig)
	}
	for i := 0; i < c.NShards; i++ {
		if _, ok := c.ClusterMap[i]; !ok {
			return fmt.Errorf("%w: cluster_map missing shard id %d", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Redirect is returned by a keyed operation when the key's shard is owned
// by a different node. It carries enough information to render a MOVED
// response without CacheNode depending on the wire protocol package.
type Redirect struct {
	Shard int
	Addr  Address
}

// CacheNode owns a subset of a cluster's shards and routes keys to them by
// CRC-32 hash. It never forwards requests to other nodes; a non-owned key
// always yields a Redirect so the caller (package protocol) can reply with
// an advisory MOVED.
type CacheNode struct {
	cfg    Config
	owned  map[int]struct{}
	shards map[int]cache.Cache[string, string]
}

// New validates cfg and builds the node's local shard set via f.
func New(cfg Config, f *factory.CacheFactory) (*CacheNode, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	owned := make(map[int]struct{}, len(cfg.OwnedShards))
	sortedOwned := make([]int, len(cfg.OwnedShards))
	copy(sortedOwned, cfg.OwnedShards)
	sort.Ints(sortedOwned)
	for _, s := range sortedOwned {
		owned[s] = struct{}{}
	}

	shards, err := f.CreateShardSet(cfg.Capacity, cfg.Policy, sortedOwned)
	if err != nil {
		return nil, err
	}

	return &CacheNode{cfg: cfg, owned: owned, shards: shards}, nil
}

// ShardFor computes the shard ID that owns key under an nShards-way CRC-32
// partition. Must match exactly across every node in the cluster: routing
// decisions are made independently by whichever node first receives a
// request, using nothing but the key and n_shards.
func ShardFor(key string, nShards int) int {
	return int(crc32.ChecksumIEEE([]byte(key)) % uint32(nShards))
}

func (n *CacheNode) redirectFor(shard int) *Redirect {
	return &Redirect{Shard: shard, Addr: n.cfg.ClusterMap[shard]}
}

// Get looks up key. If the key's shard is not owned by this node, ok is
// false and redirect is non-nil.
func (n *CacheNode) Get(key string) (val string, ok bool, redirect *Redirect) {
	sid := ShardFor(key, n.cfg.NShards)
	if _, owns := n.owned[sid]; !owns {
		return "", false, n.redirectFor(sid)
	}
	val, ok = n.shards[sid].Get(key)
	return val, ok, nil
}

// Put stores key/value with the given ttl (0 means no expiration) in the
// owning shard, or returns a redirect if this node does not own it.
func (n *CacheNode) Put(key, value string, ttl time.Duration) (redirect *Redirect) {
	sid := ShardFor(key, n.cfg.NShards)
	if _, owns := n.owned[sid]; !owns {
		return n.redirectFor(sid)
	}
	n.shards[sid].Put(key, value, ttl)
	return nil
}

// Delete removes key from its owning shard, or returns a redirect if this
// node does not own it.
func (n *CacheNode) Delete(key string) (deleted bool, redirect *Redirect) {
	sid := ShardFor(key, n.cfg.NShards)
	if _, owns := n.owned[sid]; !owns {
		return false, n.redirectFor(sid)
	}
	return n.shards[sid].Delete(key), nil
}

// Stats aggregates counters across every shard this node owns.
func (n *CacheNode) Stats() cache.Stats {
	var total cache.Stats
	for _, s := range n.shards {
		st := s.Stats()
		total.Gets += st.Gets
		total.Puts += st.Puts
		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Evictions += st.Evictions
	}
	return total
}

// NodeID returns the configured identifier for this node.
func (n *CacheNode) NodeID() string { return n.cfg.NodeID }
