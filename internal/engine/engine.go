// Package engine implements the core LSM engine: the memtable write
// path, tombstone tracking, the flush and compaction controllers, and
// the point/range query path across the memtable and the ordered
// segment list.
//
// The engine is single-writer and fully synchronous: flush and
// compaction run inline on the call that triggers them. A concurrent
// version would need a readers-writer lock over the memtable and
// segment list, copy-on-write segment lists so readers never observe a
// segment mid-compaction, and a background compaction worker fed by a
// bounded queue instead of inline triggering.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/siltdb/silt/internal/config"
	"github.com/siltdb/silt/internal/diskmanager"
	"github.com/siltdb/silt/internal/memtable"
	"github.com/siltdb/silt/internal/segment"
)

// Engine ties together the memtable, the tombstone set, and the ordered
// segment list. Segments are held oldest first; the newest segment is
// the last element.
type Engine struct {
	dir        string
	cfg        *config.Config
	dm         diskmanager.DiskManager
	logger     *slog.Logger
	mt         *memtable.Memtable
	tombstones *memtable.TombstoneSet
	segments   []*segment.Segment
	segCounter uint64
}

// NewEngine creates an engine rooted at dir. The directory is created
// if needed, existing segment files in it are adopted in id order, and
// the id counter resumes past the highest id found. Defaults are
// filled on a copy of cfg; the caller's struct is never written.
func NewEngine(dir string, cfg *config.Config, dm diskmanager.DiskManager, logger *slog.Logger) (*Engine, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: data directory must be non-empty", config.ErrInvalidConfig)
	}
	conf := *cfg
	conf.FillDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if dm == nil {
		dm = diskmanager.NewDiskManager()
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	e := &Engine{
		dir:        dir,
		cfg:        &conf,
		dm:         dm,
		logger:     logger,
		mt:         memtable.New(),
		tombstones: memtable.NewTombstoneSet(),
	}

	if err := e.loadSegments(); err != nil {
		return nil, err
	}

	return e, nil
}

// loadSegments adopts segment files left by a previous run, ordered by
// id, and restores the id counter past the highest one.
func (e *Engine) loadSegments() error {
	files, err := e.dm.List(e.dir, segment.FileSuffix)
	if err != nil {
		return fmt.Errorf("failed to list segments: %w", err)
	}

	var ids []uint64
	for _, name := range files {
		base := filepath.Base(name)
		trimmed := strings.TrimSuffix(strings.TrimPrefix(base, "segment-"), segment.FileSuffix)
		id, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		e.segments = append(e.segments, segment.New(e.dm, e.dir, id))
		if id > e.segCounter {
			e.segCounter = id
		}
	}

	return nil
}

func (e *Engine) nextSegmentID() uint64 {
	e.segCounter++
	return e.segCounter
}

// Insert stores or overwrites key -> value. Inserting a tombstoned key
// un-deletes it. Reaching the memtable limit triggers a synchronous
// flush, whose failure is reported here with the memtable untouched.
func (e *Engine) Insert(key int64, value string) error {
	e.tombstones.Remove(key)
	e.mt.Set(key, value)

	if e.mt.Len() >= e.cfg.MemtableLimit {
		return e.flush()
	}
	return nil
}

// Delete marks key for deletion and drops it from the memtable if
// present. Idempotent; deleting a key that exists only in older
// segments still records the tombstone.
func (e *Engine) Delete(key int64) {
	e.tombstones.Add(key)
	e.mt.Delete(key)
}

// DeleteRange deletes every key in [start, end] inclusive as repeated
// single-key deletes, preserving per-key tombstone semantics.
func (e *Engine) DeleteRange(start, end int64) {
	if start > end {
		return
	}
	// A key <= end condition would loop forever when end is the
	// maximum int64: the increment wraps before the check fails.
	for key := start; ; key++ {
		e.Delete(key)
		if key == end {
			break
		}
	}
}

// Find resolves key to its freshest visible value: memtable first, then
// the tombstone set, then segments newest to oldest. A segment read
// failure is logged and treated as no match from that segment only.
func (e *Engine) Find(key int64) (string, bool) {
	if value, ok := e.mt.Get(key); ok {
		return value, true
	}

	// A key deleted after its value was flushed has a stale segment
	// copy until the next compaction; the tombstone must win.
	if e.tombstones.Contains(key) {
		return "", false
	}

	for i := len(e.segments) - 1; i >= 0; i-- {
		seg := e.segments[i]
		value, err := seg.Lookup(key)
		if err == nil {
			return string(value), true
		}
		if !errors.Is(err, segment.ErrNotFound) {
			e.logger.Warn("segment lookup failed",
				"segment", seg.ID(), "key", key, "error", err)
		}
	}

	return "", false
}

// FindMany resolves each key via Find and returns the found ones.
func (e *Engine) FindMany(keys []int64) map[int64]string {
	results := make(map[int64]string, len(keys))
	for _, key := range keys {
		if value, ok := e.Find(key); ok {
			results[key] = value
		}
	}
	return results
}

// Range returns all visible entries with start <= key <= end, sorted
// ascending. The memtable and newer segments take precedence over older
// segments; tombstoned keys are excluded.
func (e *Engine) Range(start, end int64) []memtable.Entry {
	results := make(map[int64]string)
	for _, entry := range e.mt.EntriesInRange(start, end) {
		results[entry.Key] = entry.Value
	}

	for i := len(e.segments) - 1; i >= 0; i-- {
		seg := e.segments[i]
		sc, err := seg.Scan()
		if err != nil {
			e.logger.Warn("segment scan failed", "segment", seg.ID(), "error", err)
			continue
		}
		for sc.Next() {
			entry := sc.Entry()
			if entry.Key > end {
				break
			}
			if entry.Key < start {
				continue
			}
			if _, seen := results[entry.Key]; seen {
				continue
			}
			if e.tombstones.Contains(entry.Key) {
				continue
			}
			results[entry.Key] = string(entry.Value)
		}
		if err := sc.Err(); err != nil {
			e.logger.Warn("segment scan failed", "segment", seg.ID(), "error", err)
		}
		_ = sc.Close()
	}

	keys := make([]int64, 0, len(results))
	for key := range results {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	entries := make([]memtable.Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, memtable.Entry{Key: key, Value: results[key]})
	}
	return entries
}

// MemtableLen returns the number of entries currently buffered in the
// memtable.
func (e *Engine) MemtableLen() int {
	return e.mt.Len()
}

// SegmentCount returns the number of live segments.
func (e *Engine) SegmentCount() int {
	return len(e.segments)
}

// Close flushes any buffered entries and runs a final compaction check.
func (e *Engine) Close() error {
	if e.mt.Len() > 0 {
		// flush runs the compaction check itself.
		return e.flush()
	}
	return e.maybeCompact()
}
