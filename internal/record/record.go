// Package record defines the on-disk encoding for segment records.
//
// Each record is a fixed 8-byte big-endian key followed by a 4-byte
// big-endian value length and the raw value bytes. A record is only ever
// written for a present value; deletions are expressed by the absence of
// a record, never by a marker.
package record

import (
	"encoding/binary"
	"fmt"

	"github.com/siltdb/silt/internal/diskmanager"
)

// KeySize is the size in bytes of the encoded key.
const KeySize = 8

// LengthSize is the size in bytes of the value length prefix.
const LengthSize = 4

// PrefixSize is the total size of record metadata (key + value length).
const PrefixSize = KeySize + LengthSize

// Entry is a single key-value pair as stored in a segment.
type Entry struct {
	Key   int64
	Value []byte
}

// Size returns the encoded size of the entry in bytes.
func (e Entry) Size() int64 {
	return PrefixSize + int64(len(e.Value))
}

// WriteEntryAt writes an entry to the file at the given offset.
// Format: [8 bytes Key][4 bytes ValueLen][Value]
// Returns the offset immediately after the written record.
func WriteEntryAt(f diskmanager.FileHandle, offset int64, e Entry) (int64, error) {
	valueLen := len(e.Value)

	buf := make([]byte, PrefixSize+valueLen)
	binary.BigEndian.PutUint64(buf[:KeySize], uint64(e.Key))
	binary.BigEndian.PutUint32(buf[KeySize:PrefixSize], uint32(valueLen))
	copy(buf[PrefixSize:], e.Value)

	n, err := f.WriteAt(buf, offset)
	if err != nil {
		return 0, fmt.Errorf("failed to write record: %w", err)
	}

	return offset + int64(n), nil
}

// ReadEntryAt reads an entry from the file at the given offset.
// Returns the entry and the offset immediately after it.
func ReadEntryAt(f diskmanager.FileHandle, offset int64) (Entry, int64, error) {
	prefix := make([]byte, PrefixSize)
	if _, err := f.ReadAt(prefix, offset); err != nil {
		return Entry{}, 0, fmt.Errorf("failed to read record prefix: %w", err)
	}

	key := int64(binary.BigEndian.Uint64(prefix[:KeySize]))
	valueLen := binary.BigEndian.Uint32(prefix[KeySize:PrefixSize])

	value := make([]byte, valueLen)
	if valueLen > 0 {
		if _, err := f.ReadAt(value, offset+PrefixSize); err != nil {
			return Entry{}, 0, fmt.Errorf("failed to read record value: %w", err)
		}
	}

	newOffset := offset + PrefixSize + int64(valueLen)

	return Entry{Key: key, Value: value}, newOffset, nil
}
