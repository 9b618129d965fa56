// Package memtable implements the engine's in-memory write buffer and
// the set of keys pending deletion. The buffer is the only structure
// that accepts writes; it is frozen into an on-disk segment once the
// configured entry count is reached.
package memtable

import (
	"github.com/zhangyunhao116/skipmap"
)

// Entry is a key-value pair held in the memtable.
type Entry struct {
	Key   int64
	Value string
}

// Memtable is a mutable key-ordered buffer mapping key to value. Keys
// are kept sorted at all times, so freezing the buffer into a segment
// is a single in-order iteration.
type Memtable struct {
	m *skipmap.FuncMap[int64, string]
}

// New creates an empty Memtable.
func New() *Memtable {
	return &Memtable{m: newOrderedMap()}
}

func newOrderedMap() *skipmap.FuncMap[int64, string] {
	return skipmap.NewFunc[int64, string](func(a, b int64) bool {
		return a < b
	})
}

// Set inserts or overwrites the value for key.
func (m *Memtable) Set(key int64, value string) {
	m.m.Store(key, value)
}

// Get returns the value for key and whether it is present.
func (m *Memtable) Get(key int64) (string, bool) {
	return m.m.Load(key)
}

// Delete removes key from the buffer if present.
func (m *Memtable) Delete(key int64) bool {
	_, loaded := m.m.LoadAndDelete(key)
	return loaded
}

// Len returns the current entry count.
func (m *Memtable) Len() int {
	return m.m.Len()
}

// Entries returns all entries in ascending key order.
func (m *Memtable) Entries() []Entry {
	entries := make([]Entry, 0, m.m.Len())
	m.m.Range(func(key int64, value string) bool {
		entries = append(entries, Entry{Key: key, Value: value})
		return true
	})
	return entries
}

// EntriesInRange returns the entries with start <= key <= end in
// ascending key order.
func (m *Memtable) EntriesInRange(start, end int64) []Entry {
	var entries []Entry
	m.m.Range(func(key int64, value string) bool {
		if key > end {
			return false
		}
		if key >= start {
			entries = append(entries, Entry{Key: key, Value: value})
		}
		return true
	})
	return entries
}

// Clear empties the memtable.
func (m *Memtable) Clear() {
	m.m = newOrderedMap()
}
