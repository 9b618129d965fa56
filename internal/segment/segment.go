// Package segment implements the immutable, disk-resident, key-sorted
// segment (SSTable). A segment is written exactly once, at flush or as
// compaction output, and afterwards only scanned, searched, or removed.
package segment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/siltdb/silt/internal/diskmanager"
	"github.com/siltdb/silt/internal/record"
)

// ErrNotFound is returned by Lookup when the key is absent from the
// segment. Any other error from Lookup is a storage read failure scoped
// to this segment.
var ErrNotFound = errors.New("segment: key not found")

// FilePattern is the printf pattern for segment file names. The id is
// monotonically increasing and never reused while the segment it named
// is still referenced.
const FilePattern = "segment-%06d.seg"

// FileSuffix identifies segment files when listing a directory.
const FileSuffix = ".seg"

// Segment is a handle to one immutable on-disk segment. It holds no
// entry data in memory; records are streamed from disk on every scan.
type Segment struct {
	id   uint64
	path string
	dm   diskmanager.DiskManager
}

// New creates a handle for the segment with the given id inside dir.
// Nothing is written until Write is called.
func New(dm diskmanager.DiskManager, dir string, id uint64) *Segment {
	return &Segment{
		id:   id,
		path: filepath.Join(dir, fmt.Sprintf(FilePattern, id)),
		dm:   dm,
	}
}

// ID returns the segment's identifier.
func (s *Segment) ID() uint64 { return s.id }

// Path returns the segment's file path.
func (s *Segment) Path() string { return s.path }

// Write persists the given entries, which must already be sorted
// ascending by key, hold unique keys, and contain no absent values.
// On any failure the partially written file is removed and the error
// is returned; the segment is then unusable.
func (s *Segment) Write(entries []record.Entry) error {
	f, err := s.dm.Open(s.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create segment %d: %w", s.id, err)
	}

	var offset int64
	for _, e := range entries {
		offset, err = record.WriteEntryAt(f, offset, e)
		if err != nil {
			_ = f.Close()
			_ = s.dm.Delete(s.path)
			return fmt.Errorf("failed to write segment %d: %w", s.id, err)
		}
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = s.dm.Delete(s.path)
		return fmt.Errorf("failed to sync segment %d: %w", s.id, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close segment %d: %w", s.id, err)
	}

	return nil
}

// Scan opens a new scanner over the segment's records in ascending key
// order. Every call re-reads from the start. The caller must Close the
// scanner.
func (s *Segment) Scan() (*Scanner, error) {
	f, err := s.dm.Open(s.path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment %d: %w", s.id, err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat segment %d: %w", s.id, err)
	}

	return &Scanner{file: f, size: stat.Size()}, nil
}

// Lookup scans the segment for key, terminating early once a stored key
// exceeds the target. Returns ErrNotFound when the key is absent; any
// other error means the segment's storage could not be read.
func (s *Segment) Lookup(key int64) ([]byte, error) {
	sc, err := s.Scan()
	if err != nil {
		return nil, err
	}
	defer func() { _ = sc.Close() }()

	for sc.Next() {
		e := sc.Entry()
		if e.Key == key {
			return e.Value, nil
		}
		if e.Key > key {
			// Keys are sorted; no match is possible beyond this point.
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return nil, ErrNotFound
}

// Remove irreversibly deletes the segment's persisted storage. Only
// legal once the engine no longer references the segment.
func (s *Segment) Remove() error {
	if err := s.dm.Delete(s.path); err != nil {
		return fmt.Errorf("failed to remove segment %d: %w", s.id, err)
	}
	return nil
}

// Scanner provides sequential access to a segment's records.
type Scanner struct {
	file   diskmanager.FileHandle
	size   int64
	offset int64
	entry  record.Entry
	err    error
}

// Next advances to the next record. It returns false at the end of the
// segment or on a read failure; check Err to distinguish.
func (sc *Scanner) Next() bool {
	if sc.err != nil || sc.offset >= sc.size {
		return false
	}
	e, off, err := record.ReadEntryAt(sc.file, sc.offset)
	if err != nil {
		sc.err = err
		return false
	}
	sc.entry = e
	sc.offset = off
	return true
}

// Entry returns the current record.
func (sc *Scanner) Entry() record.Entry {
	return sc.entry
}

// Err returns the read failure that stopped the scan, if any.
func (sc *Scanner) Err() error {
	return sc.err
}

// Close releases the scanner's file handle.
func (sc *Scanner) Close() error {
	return sc.file.Close()
}
