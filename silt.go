// Package silt is an embedded key-value storage engine for integer keys
// based on the LSM-tree architecture.
//
// Writes land in an in-memory memtable, are flushed as immutable sorted
// segments once an entry-count threshold is reached, and the segments
// are periodically merged by a full compaction that reclaims the space
// held by overwritten and deleted entries. Reads consult the memtable
// first and then segments newest to oldest, so the most recently
// written copy of a key always wins.
//
// Example usage:
//
//	db, err := silt.Open("/path/to/database", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Insert(42, "value"); err != nil {
//		log.Printf("Insert failed: %v", err)
//	}
//
//	value, found := db.Find(42)
//	if found {
//		fmt.Printf("Value: %s\n", value)
//	}
//
//	db.Delete(42)
package silt

import (
	"github.com/siltdb/silt/internal/config"
	"github.com/siltdb/silt/internal/engine"
	"github.com/siltdb/silt/internal/memtable"
)

// Config is an alias for config.Config, re-exported for user convenience.
type Config = config.Config

// DefaultConfig returns a Config struct populated with default values.
// Re-exported for user convenience.
var DefaultConfig = config.DefaultConfig

// ErrInvalidConfig is returned by Open for out-of-range thresholds.
var ErrInvalidConfig = config.ErrInvalidConfig

// Entry is a key-value pair returned by Range.
type Entry = memtable.Entry

// DB is a single-writer silt instance. It is not safe for concurrent
// use; all operations run synchronously on the calling goroutine,
// including the flushes and compactions they trigger.
type DB struct {
	engine *engine.Engine
}

// Open opens or creates a silt database rooted at dir.
//
// The directory is created if it doesn't exist; segment files from a
// previous run are adopted. A nil cfg uses DefaultConfig.
func Open(dir string, cfg *Config) (*DB, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e, err := engine.NewEngine(dir, cfg, nil, nil)
	if err != nil {
		return nil, err
	}
	return &DB{engine: e}, nil
}

// Insert stores or overwrites the value for key. Inserting a deleted
// key un-deletes it. The returned error is non-nil only when the insert
// triggered a flush or compaction that failed; the write itself always
// succeeds.
func (db *DB) Insert(key int64, value string) error {
	return db.engine.Insert(key, value)
}

// Delete marks key as deleted. Idempotent; deleting an absent key is
// not an error.
func (db *DB) Delete(key int64) {
	db.engine.Delete(key)
}

// DeleteRange deletes every key in [start, end] inclusive. Best-effort
// per key; keys that were already absent are simply recorded as deleted.
func (db *DB) DeleteRange(start, end int64) {
	db.engine.DeleteRange(start, end)
}

// Find returns the value for key and true, or "" and false if the key
// is absent or deleted.
func (db *DB) Find(key int64) (string, bool) {
	return db.engine.Find(key)
}

// FindMany looks up each key and returns a map of the ones found.
func (db *DB) FindMany(keys []int64) map[int64]string {
	return db.engine.FindMany(keys)
}

// Range returns all visible entries with start <= key <= end, sorted
// ascending by key.
func (db *DB) Range(start, end int64) []Entry {
	return db.engine.Range(start, end)
}

// MemtableLen returns the number of entries currently buffered in
// memory.
func (db *DB) MemtableLen() int {
	return db.engine.MemtableLen()
}

// SegmentCount returns the number of on-disk segments.
func (db *DB) SegmentCount() int {
	return db.engine.SegmentCount()
}

// Flush forces the memtable to disk without waiting for the threshold.
func (db *DB) Flush() error {
	return db.engine.Flush()
}

// Close flushes any buffered entries and runs a final compaction check.
// After Close the database should not be used.
func (db *DB) Close() error {
	return db.engine.Close()
}
