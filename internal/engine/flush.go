package engine

import (
	"fmt"

	"github.com/siltdb/silt/internal/record"
	"github.com/siltdb/silt/internal/segment"
)

// Flush freezes the memtable into a new segment regardless of the
// threshold. A no-op when the memtable is empty.
func (e *Engine) Flush() error {
	if e.mt.Len() == 0 {
		return nil
	}
	return e.flush()
}

// flush writes the memtable's entries, minus any tombstoned keys, as
// the newest segment, then clears the memtable and runs the compaction
// check. On a write failure the engine's visible state is unchanged:
// the memtable keeps its entries and no segment is appended.
func (e *Engine) flush() error {
	entries := e.mt.Entries()

	recs := make([]record.Entry, 0, len(entries))
	for _, entry := range entries {
		if e.tombstones.Contains(entry.Key) {
			continue
		}
		recs = append(recs, record.Entry{Key: entry.Key, Value: []byte(entry.Value)})
	}

	if len(recs) > 0 {
		seg := segment.New(e.dm, e.dir, e.nextSegmentID())
		if err := seg.Write(recs); err != nil {
			return fmt.Errorf("flush failed: %w", err)
		}
		e.segments = append(e.segments, seg)
		e.logger.Info("memtable flushed", "segment", seg.ID(), "entries", len(recs))
	}

	e.mt.Clear()

	// Every flush is followed by a compaction threshold check.
	return e.maybeCompact()
}
