package memtable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siltdb/silt/internal/memtable"
)

func TestMemtable_SetAndGet(t *testing.T) {
	mt := memtable.New()

	mt.Set(1, "one")
	mt.Set(2, "two")

	val, ok := mt.Get(1)
	assert.True(t, ok, "expected key 1 to exist")
	assert.Equal(t, "one", val)

	_, ok = mt.Get(3)
	assert.False(t, ok, "expected key 3 to be absent")
}

func TestMemtable_Overwrite(t *testing.T) {
	mt := memtable.New()

	mt.Set(7, "old")
	mt.Set(7, "new")

	val, ok := mt.Get(7)
	require.True(t, ok)
	assert.Equal(t, "new", val)
	assert.Equal(t, 1, mt.Len(), "overwrite must not grow the memtable")
}

func TestMemtable_Delete(t *testing.T) {
	mt := memtable.New()

	mt.Set(5, "five")
	assert.True(t, mt.Delete(5))
	assert.False(t, mt.Delete(5), "second delete should report absence")

	_, ok := mt.Get(5)
	assert.False(t, ok)
	assert.Equal(t, 0, mt.Len())
}

func TestMemtable_EntriesAscending(t *testing.T) {
	mt := memtable.New()

	// Insertion order is irrelevant; iteration must be sorted by key.
	for _, key := range []int64{42, -3, 17, 0, 8} {
		mt.Set(key, "v")
	}

	entries := mt.Entries()
	require.Len(t, entries, 5)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Key, entries[i].Key, "entries must be strictly ascending")
	}
}

func TestMemtable_EntriesInRange(t *testing.T) {
	mt := memtable.New()
	for key := int64(0); key < 10; key++ {
		mt.Set(key, "v")
	}

	entries := mt.EntriesInRange(3, 6)
	require.Len(t, entries, 4)
	assert.Equal(t, int64(3), entries[0].Key)
	assert.Equal(t, int64(6), entries[len(entries)-1].Key)

	assert.Empty(t, mt.EntriesInRange(100, 200))
}

func TestMemtable_Clear(t *testing.T) {
	mt := memtable.New()
	mt.Set(1, "one")
	mt.Set(2, "two")

	mt.Clear()

	assert.Equal(t, 0, mt.Len())
	_, ok := mt.Get(1)
	assert.False(t, ok)

	// Cleared memtable must accept new writes.
	mt.Set(3, "three")
	assert.Equal(t, 1, mt.Len())
}

func TestTombstoneSet(t *testing.T) {
	ts := memtable.NewTombstoneSet()

	ts.Add(9)
	ts.Add(9) // idempotent
	assert.True(t, ts.Contains(9))
	assert.Equal(t, 1, ts.Len())

	ts.Remove(9)
	assert.False(t, ts.Contains(9))

	ts.Add(1)
	ts.Add(2)
	ts.Clear()
	assert.Equal(t, 0, ts.Len())
	assert.False(t, ts.Contains(1))
}
