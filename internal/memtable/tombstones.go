package memtable

import (
	"github.com/zhangyunhao116/skipset"
)

// TombstoneSet records the keys pending deletion. A key stays in the
// set until it is re-inserted or until a full compaction has applied
// the pending deletions everywhere they matter.
type TombstoneSet struct {
	s *skipset.FuncSet[int64]
}

// NewTombstoneSet creates an empty TombstoneSet.
func NewTombstoneSet() *TombstoneSet {
	return &TombstoneSet{s: newOrderedSet()}
}

func newOrderedSet() *skipset.FuncSet[int64] {
	return skipset.NewFunc[int64](func(a, b int64) bool {
		return a < b
	})
}

// Add marks key as pending deletion. Idempotent.
func (t *TombstoneSet) Add(key int64) {
	t.s.Add(key)
}

// Remove unmarks key. Called when an insert un-deletes the key.
func (t *TombstoneSet) Remove(key int64) {
	t.s.Remove(key)
}

// Contains reports whether key is pending deletion.
func (t *TombstoneSet) Contains(key int64) bool {
	return t.s.Contains(key)
}

// Len returns the number of pending deletions.
func (t *TombstoneSet) Len() int {
	return t.s.Len()
}

// Clear drops all pending deletions. Called after a full compaction has
// applied them.
func (t *TombstoneSet) Clear() {
	t.s = newOrderedSet()
}
