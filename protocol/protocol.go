// Package protocol implements the line-oriented wire grammar spoken over a
// CacheNode's TCP listener: GET/PUT/DEL/STATS/QUIT in, a fixed response
// vocabulary out. Grounded on original_source/cache/cache_node.py's handle()
// method; HandleLine is the Go analogue, parameterized over a Node interface
// so it can be unit-tested without a real TCP connection or CacheNode.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kvshard/kvshard/cache"
	"github.com/kvshard/kvshard/node"
)

// Node is the subset of CacheNode's behavior the protocol layer depends on.
// Satisfied by *node.CacheNode; accepting the interface keeps this package
// testable with a fake.
type Node interface {
	Get(key string) (val string, ok bool, redirect *node.Redirect)
	Put(key, value string, ttl time.Duration) (redirect *node.Redirect)
	Delete(key string) (deleted bool, redirect *node.Redirect)
	Stats() cache.Stats
}

func moved(r *node.Redirect) string {
	return fmt.Sprintf("MOVED %d %s", r.Shard, r.Addr)
}

// HandleLine parses and executes one already-trimmed command line against n.
// It returns the response text to write back (without a trailing newline)
// and whether the connection should close (true only for QUIT).
//
// A blank line yields "ERR empty_command": callers reading from a real
// connection are expected to skip blank physical lines before ever reaching
// here (see package server), but HandleLine implements the full grammar
// table on its own so it behaves correctly for any caller, framed or not.
func HandleLine(n Node, line string) (resp string, quit bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "ERR empty_command", false
	}

	cmd := strings.ToUpper(parts[0])

	switch cmd {
	case "QUIT":
		return "", true

	case "STATS":
		s := n.Stats()
		return fmt.Sprintf("HITS %d MISSES %d EVICTIONS %d GETS %d PUTS %d",
			s.Hits, s.Misses, s.Evictions, s.Gets, s.Puts), false

	case "GET":
		if len(parts) != 2 {
			return "ERR usage: GET key", false
		}
		key := parts[1]
		val, ok, redirect := n.Get(key)
		if redirect != nil {
			return moved(redirect), false
		}
		if !ok {
			return "NOT_FOUND", false
		}
		return "VALUE " + val, false

	case "PUT":
		if len(parts) < 3 || len(parts) > 4 {
			return "ERR usage: PUT key value [ttl]", false
		}
		key, value := parts[1], parts[2]

		var ttl time.Duration
		if len(parts) == 4 {
			seconds, err := strconv.ParseFloat(parts[3], 64)
			if err != nil {
				return "ERR ttl must be numeric", false
			}
			ttl = time.Duration(seconds * float64(time.Second))
		}

		if redirect := n.Put(key, value, ttl); redirect != nil {
			return moved(redirect), false
		}
		return "STORED", false

	case "DEL":
		if len(parts) != 2 {
			return "ERR usage: DEL key", false
		}
		key := parts[1]
		deleted, redirect := n.Delete(key)
		if redirect != nil {
			return moved(redirect), false
		}
		if !deleted {
			return "NOT_FOUND", false
		}
		return "DELETED", false

	default:
		return "ERR unknown_command " + cmd, false
	}
}
