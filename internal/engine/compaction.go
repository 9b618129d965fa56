package engine

import (
	"fmt"
	"sort"

	"github.com/siltdb/silt/internal/record"
	"github.com/siltdb/silt/internal/segment"
)

// maybeCompact runs a full merge when the segment count exceeds the
// configured maximum.
func (e *Engine) maybeCompact() error {
	if len(e.segments) <= e.cfg.MaxSegments {
		return nil
	}
	return e.compact()
}

// compact merges every segment, oldest to newest, into one in-memory
// mapping (newer entries overwrite older ones), applies and then clears
// the tombstone set, and rewrites the result as a run of consecutive
// key-chunked segments. Peak memory is the full merged dataset; that is
// the accepted cost of full, non-incremental compaction.
//
// No existing segment is destroyed until every replacement segment has
// been durably written, so any failure leaves the engine's visible
// state exactly as it was.
func (e *Engine) compact() error {
	merged := make(map[int64][]byte)
	for _, seg := range e.segments {
		sc, err := seg.Scan()
		if err != nil {
			return fmt.Errorf("compaction failed: %w", err)
		}
		for sc.Next() {
			entry := sc.Entry()
			if e.tombstones.Contains(entry.Key) {
				continue
			}
			merged[entry.Key] = entry.Value
		}
		scanErr := sc.Err()
		_ = sc.Close()
		if scanErr != nil {
			// An unreadable segment must abort the merge: treating it
			// as empty would silently drop its entries.
			return fmt.Errorf("compaction failed: %w", scanErr)
		}
	}

	keys := make([]int64, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	chunkSize := e.cfg.MemtableLimit
	if chunkSize < 1 {
		chunkSize = 1
	}

	var replacements []*segment.Segment
	for start := 0; start < len(keys); start += chunkSize {
		stop := min(start+chunkSize, len(keys))

		recs := make([]record.Entry, 0, stop-start)
		for _, key := range keys[start:stop] {
			recs = append(recs, record.Entry{Key: key, Value: merged[key]})
		}

		seg := segment.New(e.dm, e.dir, e.nextSegmentID())
		if err := seg.Write(recs); err != nil {
			for _, written := range replacements {
				_ = written.Remove()
			}
			return fmt.Errorf("compaction failed: %w", err)
		}
		replacements = append(replacements, seg)
	}

	// Replacements are durable; now the old segments can go.
	for _, seg := range e.segments {
		if err := seg.Remove(); err != nil {
			e.logger.Warn("failed to remove compacted segment",
				"segment", seg.ID(), "error", err)
		}
	}

	e.segments = replacements
	e.tombstones.Clear()

	e.logger.Info("compaction complete",
		"segments", len(replacements), "entries", len(keys))
	return nil
}
