package record_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siltdb/silt/internal/diskmanager/mockdm"
	"github.com/siltdb/silt/internal/record"
)

func TestRecordRoundTrip(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	f, err := dm.Open("records", os.O_CREATE, 0644)
	require.NoError(t, err)

	entries := []record.Entry{
		{Key: -9, Value: []byte("negative keys encode fine")},
		{Key: 0, Value: []byte{}},
		{Key: 1 << 40, Value: []byte("big")},
	}

	var offset int64
	for _, e := range entries {
		offset, err = record.WriteEntryAt(f, offset, e)
		require.NoError(t, err)
	}

	offset = 0
	for _, want := range entries {
		var got record.Entry
		got, offset, err = record.ReadEntryAt(f, offset)
		require.NoError(t, err)
		assert.Equal(t, want.Key, got.Key)
		assert.Equal(t, string(want.Value), string(got.Value))
	}
}

func TestRecordTruncatedRead(t *testing.T) {
	dm := mockdm.NewMockDiskManager()
	f, err := dm.Open("records", os.O_CREATE, 0644)
	require.NoError(t, err)

	// Write a record, then read past it: the prefix read hits EOF.
	end, err := record.WriteEntryAt(f, 0, record.Entry{Key: 1, Value: []byte("v")})
	require.NoError(t, err)

	_, _, err = record.ReadEntryAt(f, end)
	assert.Error(t, err)
}

func TestRecordSize(t *testing.T) {
	e := record.Entry{Key: 1, Value: []byte("abc")}
	assert.Equal(t, int64(record.PrefixSize+3), e.Size())
}
