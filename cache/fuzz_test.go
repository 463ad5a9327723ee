//go:build go1.18

package cache

import (
	"strings"
	"testing"
)

// Fuzz basic Put/Get/Delete semantics under arbitrary string inputs. Guards
// against panics and ensures the round-trip invariant holds (spec §8, #5).
func FuzzCache_PutGetDelete(f *testing.F) {
	f.Add("", "")
	f.Add("a", "1")
	f.Add("b", "2")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c, err := New[string, string](Options[string, string]{Capacity: 16})
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		c.Put(k, v, 0)
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
		}

		if !c.Delete(k) {
			t.Fatalf("Delete must return true for a present key")
		}
		if _, ok := c.Get(k); ok {
			t.Fatalf("key must be absent after Delete")
		}
		if c.Delete(k) {
			t.Fatalf("Delete must return false for an absent key")
		}
	})
}
