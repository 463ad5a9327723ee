// Package config loads and validates the two JSON documents a cache node
// needs at startup: a cluster-wide config shared by every node, and a
// node-specific config naming this node's identity and shard ownership.
// Grounded on original_source/cache/server.py's load_json_file/build_config,
// ported to Go's encoding/json and explicit error returns.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/kvshard/kvshard/factory"
	"github.com/kvshard/kvshard/node"
)

// Address marshals/unmarshals as the wire format's two-element
// ["host", port] array rather than a JSON object.
type Address struct {
	Host string
	Port int
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{a.Host, a.Port})
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("config: address must be a [host, port] array: %w", err)
	}
	if err := json.Unmarshal(pair[0], &a.Host); err != nil {
		return fmt.Errorf("config: address host must be a string: %w", err)
	}
	if err := json.Unmarshal(pair[1], &a.Port); err != nil {
		return fmt.Errorf("config: address port must be a number: %w", err)
	}
	return nil
}

// ClusterConfig is the cluster-wide document, identical on every node:
// the shard count and the authoritative shard -> address map used to
// answer MOVED redirects.
type ClusterConfig struct {
	NShards    int             `json:"n_shards"`
	ClusterMap map[int]Address `json:"cluster_map"`
}

// NodeConfig is this node's own document: its listen address, identity,
// the shards it owns, its local capacity, and eviction policy.
type NodeConfig struct {
	Host        string      `json:"host"`
	Port        int         `json:"port"`
	NodeID      string      `json:"node_id"`
	OwnedShards []int       `json:"owned_shards"`
	Capacity    int         `json:"capacity"`
	Policy      factory.Tag `json:"policy"`
}

// LoadClusterConfig reads and parses a cluster config JSON file.
func LoadClusterConfig(path string) (ClusterConfig, error) {
	var cc ClusterConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cc, fmt.Errorf("config: reading cluster config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cc); err != nil {
		return cc, fmt.Errorf("config: parsing cluster config %s: %w", path, err)
	}
	return cc, nil
}

// LoadNodeConfig reads and parses a node config JSON file, applying the
// node_id and policy defaults ("host:port" and LRU respectively).
func LoadNodeConfig(path string) (NodeConfig, error) {
	var nc NodeConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return nc, fmt.Errorf("config: reading node config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &nc); err != nil {
		return nc, fmt.Errorf("config: parsing node config %s: %w", path, err)
	}
	if nc.NodeID == "" {
		nc.NodeID = fmt.Sprintf("%s:%d", nc.Host, nc.Port)
	}
	if nc.Policy == "" {
		nc.Policy = factory.LRU
	}
	return nc, nil
}

// BuildNodeConfig cross-validates a cluster config against a node config and
// produces the node.Config the cache server wires into node.New. Mirrors
// server.py's build_config: cluster_map must cover every shard id, and every
// shard this node claims to own must map back to this node's own address.
func BuildNodeConfig(cc ClusterConfig, nc NodeConfig) (node.Config, error) {
	if cc.NShards <= 0 {
		return node.Config{}, fmt.Errorf("config: n_shards must be > 0")
	}
	if len(cc.ClusterMap) != cc.NShards {
		return node.Config{}, fmt.Errorf("config: cluster_map must contain every shard id in [0, %d)", cc.NShards)
	}
	for i := 0; i < cc.NShards; i++ {
		if _, ok := cc.ClusterMap[i]; !ok {
			return node.Config{}, fmt.Errorf("config: cluster_map missing shard id %d", i)
		}
	}

	if len(nc.OwnedShards) == 0 {
		return node.Config{}, fmt.Errorf("config: owned_shards cannot be empty")
	}
	owned := make([]int, len(nc.OwnedShards))
	copy(owned, nc.OwnedShards)
	sort.Ints(owned)
	for _, s := range owned {
		if s < 0 || s >= cc.NShards {
			return node.Config{}, fmt.Errorf("config: owned_shards contains shard id %d outside [0, %d)", s, cc.NShards)
		}
		addr := cc.ClusterMap[s]
		if addr.Host != nc.Host || addr.Port != nc.Port {
			return node.Config{}, fmt.Errorf(
				"config: mismatch: shard %d is owned but cluster_map says %s:%d not %s:%d",
				s, addr.Host, addr.Port, nc.Host, nc.Port)
		}
	}

	if nc.Capacity <= 0 {
		return node.Config{}, fmt.Errorf("config: capacity must be > 0")
	}

	clusterMap := make(map[int]node.Address, len(cc.ClusterMap))
	for id, addr := range cc.ClusterMap {
		clusterMap[id] = node.Address{Host: addr.Host, Port: addr.Port}
	}

	return node.Config{
		NodeID:      nc.NodeID,
		NShards:     cc.NShards,
		OwnedShards: owned,
		ClusterMap:  clusterMap,
		Capacity:    nc.Capacity,
		Policy:      nc.Policy,
	}, nil
}
