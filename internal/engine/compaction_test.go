package engine_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siltdb/silt/internal/config"
	"github.com/siltdb/silt/internal/diskmanager/mockdm"
	"github.com/siltdb/silt/internal/engine"
	"github.com/siltdb/silt/internal/segment"
)

func snapshot(t *testing.T, e *engine.Engine, lo, hi int64) map[int64]string {
	t.Helper()
	visible := map[int64]string{}
	for _, entry := range e.Range(lo, hi) {
		visible[entry.Key] = entry.Value
	}
	return visible
}

func TestCompaction_TriggeredByThreshold(t *testing.T) {
	e := newTestEngine(t, &config.Config{MemtableLimit: 2, MaxSegments: 2})

	for key := int64(0); key < 8; key++ {
		require.NoError(t, e.Insert(key, "v"))
	}

	// Four flushes of two entries each; the third and fourth flush
	// push the count past MaxSegments and trigger full merges. The
	// final merge re-chunks all 8 keys into runs of 2.
	assert.Equal(t, 4, e.SegmentCount())
	for key := int64(0); key < 8; key++ {
		_, found := e.Find(key)
		assert.True(t, found, "key %d lost by compaction", key)
	}
}

func TestCompaction_ObservationalNoOp(t *testing.T) {
	e := newTestEngine(t, &config.Config{MemtableLimit: 3, MaxSegments: 3})

	for key := int64(0); key < 9; key++ {
		require.NoError(t, e.Insert(key, "v"))
	}
	require.Equal(t, 3, e.SegmentCount())

	// Overwrite one flushed key and delete another, then snapshot.
	require.NoError(t, e.Insert(3, "newer"))
	e.Delete(7)
	before := snapshot(t, e, 0, 100)
	require.Len(t, before, 8)
	require.Equal(t, "newer", before[3])

	// This flush makes 4 segments and immediately compacts them.
	require.NoError(t, e.Flush())
	require.Equal(t, 3, e.SegmentCount())

	after := snapshot(t, e, 0, 100)
	assert.Equal(t, before, after,
		"compaction must not change visible read results")

	_, found := e.Find(7)
	assert.False(t, found)
}

func TestCompaction_NewestWins(t *testing.T) {
	e := newTestEngine(t, &config.Config{MemtableLimit: 1, MaxSegments: 2})

	// Same key flushed into three successive segments; the compacted
	// output must keep the newest value.
	require.NoError(t, e.Insert(5, "v1"))
	require.NoError(t, e.Insert(5, "v2"))
	require.NoError(t, e.Insert(5, "v3"))

	val, found := e.Find(5)
	require.True(t, found)
	assert.Equal(t, "v3", val)
}

func TestCompaction_AppliesAndClearsTombstones(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	e, err := engine.NewEngine(t.TempDir(), &config.Config{MemtableLimit: 1, MaxSegments: 2}, dm, nil)
	require.NoError(t, err)

	require.NoError(t, e.Insert(1, "a"))
	require.NoError(t, e.Insert(2, "b"))
	e.Delete(1)

	// The third flush exceeds MaxSegments and compacts. Key 1's stale
	// copy must be physically dropped: after the merge the tombstone
	// set is cleared, so only absence keeps the key invisible.
	require.NoError(t, e.Insert(3, "c"))

	_, found := e.Find(1)
	assert.False(t, found)

	for _, entry := range e.Range(0, 100) {
		assert.NotEqual(t, int64(1), entry.Key,
			"compaction should have removed the deleted key's record")
	}
}

func TestCompaction_ChunksBySize(t *testing.T) {
	e := newTestEngine(t, &config.Config{MemtableLimit: 3, MaxSegments: 2})

	// 9 distinct keys over 3 flushes; compaction merges them and
	// re-chunks into runs of at most MemtableLimit entries.
	for key := int64(0); key < 9; key++ {
		require.NoError(t, e.Insert(key, "v"))
	}

	assert.Equal(t, 3, e.SegmentCount())
	assert.Len(t, e.Range(0, 100), 9)
}

func TestCompaction_SegmentIDsNeverReused(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	e, err := engine.NewEngine(t.TempDir(), &config.Config{MemtableLimit: 1, MaxSegments: 1}, dm, nil)
	require.NoError(t, err)

	require.NoError(t, e.Insert(1, "a")) // segment 1
	require.NoError(t, e.Insert(2, "b")) // segment 2, then compaction

	files, err := dm.List("", segment.FileSuffix)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, name := range files {
		base := filepath.Base(name)
		assert.NotEqual(t, "segment-000001.seg", base, "compaction output must use fresh ids")
		assert.NotEqual(t, "segment-000002.seg", base, "compaction output must use fresh ids")
	}
}

func TestCompaction_WriteFailurePreservesOldSegments(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	dir := t.TempDir()

	e, err := engine.NewEngine(dir, &config.Config{MemtableLimit: 1, MaxSegments: 10}, dm, nil)
	require.NoError(t, err)
	for key := int64(1); key <= 4; key++ {
		require.NoError(t, e.Insert(key, "v"))
	}
	require.Equal(t, 4, e.SegmentCount())
	require.NoError(t, e.Close())

	// Reopen with a lower segment limit; the shutdown check will try
	// to compact the four adopted segments and fail to write the
	// replacements.
	e2, err := engine.NewEngine(dir, &config.Config{MemtableLimit: 1, MaxSegments: 2}, dm, nil)
	require.NoError(t, err)
	require.Equal(t, 4, e2.SegmentCount())

	dm.FailWrites = true
	require.Error(t, e2.Close())
	dm.FailWrites = false

	// Nothing was destroyed: every key is still readable.
	require.Equal(t, 4, e2.SegmentCount())
	for key := int64(1); key <= 4; key++ {
		val, found := e2.Find(key)
		assert.True(t, found, "key %d lost by failed compaction", key)
		assert.Equal(t, "v", val)
	}
}

func TestCompaction_RunsOnClose(t *testing.T) {
	dir := t.TempDir()
	e, err := engine.NewEngine(dir, &config.Config{MemtableLimit: 1, MaxSegments: 10}, nil, nil)
	require.NoError(t, err)

	for key := int64(0); key < 5; key++ {
		require.NoError(t, e.Insert(key, "v"))
	}
	require.Equal(t, 5, e.SegmentCount())
	require.NoError(t, e.Close())

	// Below the threshold, closing leaves the layout alone.
	assert.Equal(t, 5, e.SegmentCount())

	e2, err := engine.NewEngine(dir, &config.Config{MemtableLimit: 10, MaxSegments: 2}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 5, e2.SegmentCount())

	// Above the threshold, the shutdown check compacts.
	require.NoError(t, e2.Close())
	assert.Equal(t, 1, e2.SegmentCount())
}
