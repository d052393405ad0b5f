package coltype

// intern.go implements the process-wide canonicalization table.
//
// Types are bucketed by the XXH3 hash of their printed form; collisions are
// resolved by structural comparison. The table only ever grows: a client
// sees a bounded set of distinct column types over its lifetime.

import (
	"sync"

	"github.com/zeebo/xxh3"
)

var table = struct {
	sync.RWMutex
	buckets map[uint64][]*Type
}{buckets: make(map[uint64][]*Type)}

// intern returns the canonical *Type structurally equal to t, storing t if
// it is the first of its shape. t must not be mutated afterwards.
func intern(t *Type) *Type {
	t.text = t.print()
	h := xxh3.HashString(t.text)

	table.RLock()
	for _, c := range table.buckets[h] {
		if equal(c, t) {
			table.RUnlock()
			return c
		}
	}
	table.RUnlock()

	table.Lock()
	defer table.Unlock()
	// Re-check: another goroutine may have inserted between the locks.
	for _, c := range table.buckets[h] {
		if equal(c, t) {
			return c
		}
	}
	table.buckets[h] = append(table.buckets[h], t)
	return t
}
