package node

import (
	"testing"
	"time"

	"github.com/kvshard/kvshard/factory"
)

func twoShardCfg(owned []int) Config {
	return Config{
		NodeID:      "n0",
		NShards:     2,
		OwnedShards: owned,
		ClusterMap: map[int]Address{
			0: {Host: "10.0.0.1", Port: 7000},
			1: {Host: "10.0.0.2", Port: 7001},
		},
		Capacity: 10,
		Policy:   factory.LRU,
	}
}

func findKeyForShard(shard, nShards int) string {
	for i := 0; ; i++ {
		k := "k" + string(rune('a'+i%26)) + string(rune('0'+i/26))
		if ShardFor(k, nShards) == shard {
			return k
		}
	}
}

func TestCacheNode_OwnedRoundTrip(t *testing.T) {
	t.Parallel()

	f := factory.New()
	n, err := New(twoShardCfg([]int{0, 1}), f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := findKeyForShard(0, 2)
	if redirect := n.Put(key, "v1", 0); redirect != nil {
		t.Fatalf("unexpected redirect: %+v", redirect)
	}
	val, ok, redirect := n.Get(key)
	if redirect != nil {
		t.Fatalf("unexpected redirect: %+v", redirect)
	}
	if !ok || val != "v1" {
		t.Fatalf("got %q ok=%v, want v1/true", val, ok)
	}
}

func TestCacheNode_RedirectsNonOwnedShard(t *testing.T) {
	t.Parallel()

	f := factory.New()
	// This node owns only shard 0.
	n, err := New(twoShardCfg([]int{0}), f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := findKeyForShard(1, 2)

	if _, _, redirect := n.Get(key); redirect == nil || redirect.Shard != 1 {
		t.Fatalf("Get: want redirect to shard 1, got %+v", redirect)
	}
	if redirect := n.Put(key, "v", 0); redirect == nil || redirect.Shard != 1 {
		t.Fatalf("Put: want redirect to shard 1, got %+v", redirect)
	}
	if _, redirect := n.Delete(key); redirect == nil || redirect.Shard != 1 {
		t.Fatalf("Delete: want redirect to shard 1, got %+v", redirect)
	}
	if got := n.redirectFor(1).Addr; got.Host != "10.0.0.2" || got.Port != 7001 {
		t.Fatalf("redirect address mismatch: %+v", got)
	}
}

func TestCacheNode_DeleteNotFound(t *testing.T) {
	t.Parallel()

	f := factory.New()
	n, err := New(twoShardCfg([]int{0, 1}), f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := findKeyForShard(0, 2)
	if deleted, redirect := n.Delete(key); deleted || redirect != nil {
		t.Fatalf("Delete of absent key: got deleted=%v redirect=%+v", deleted, redirect)
	}
}

func TestCacheNode_StatsAggregateAcrossShards(t *testing.T) {
	t.Parallel()

	f := factory.New()
	n, err := New(twoShardCfg([]int{0, 1}), f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	k0 := findKeyForShard(0, 2)
	k1 := findKeyForShard(1, 2)
	n.Put(k0, "a", 0)
	n.Put(k1, "b", 0)
	n.Get(k0)
	n.Get(k1)
	n.Get("nonexistent-key-zzz")

	st := n.Stats()
	if st.Puts != 2 {
		t.Fatalf("want 2 puts, got %d", st.Puts)
	}
	if st.Gets < 2 {
		t.Fatalf("want at least 2 gets, got %d", st.Gets)
	}
}

func TestCacheNode_InvalidConfig(t *testing.T) {
	t.Parallel()

	f := factory.New()

	cases := []Config{
		{NodeID: "n", NShards: 0, OwnedShards: []int{0}, ClusterMap: map[int]Address{0: {}}, Capacity: 1, Policy: factory.LRU},
		{NodeID: "n", NShards: 2, OwnedShards: nil, ClusterMap: map[int]Address{0: {}, 1: {}}, Capacity: 1, Policy: factory.LRU},
		{NodeID: "n", NShards: 2, OwnedShards: []int{5}, ClusterMap: map[int]Address{0: {}, 1: {}}, Capacity: 1, Policy: factory.LRU},
		{NodeID: "n", NShards: 2, OwnedShards: []int{0}, ClusterMap: map[int]Address{0: {}}, Capacity: 1, Policy: factory.LRU},
	}
	for i, cfg := range cases {
		if _, err := New(cfg, f); err == nil {
			t.Fatalf("case %d: want error", i)
		}
	}
}

func TestCacheNode_TTLExpiry(t *testing.T) {
	t.Parallel()

	f := factory.New()
	n, err := New(twoShardCfg([]int{0, 1}), f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := findKeyForShard(0, 2)
	n.Put(key, "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok, redirect := n.Get(key); ok || redirect != nil {
		t.Fatalf("want expired key absent, got ok=%v redirect=%+v", ok, redirect)
	}
}
