// Package mockdm provides an in-memory disk manager for testing,
// including switches for injecting read and write failures.
package mockdm

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/siltdb/silt/internal/diskmanager"
)

// ErrInjected is returned by mock files whose manager has failure
// injection enabled.
var ErrInjected = errors.New("mockdm: injected I/O failure")

// MockDiskManager implements diskmanager.DiskManager against in-memory
// buffers. Setting FailReads or FailWrites makes every subsequent read
// or write on any of its files fail with ErrInjected.
type MockDiskManager struct {
	files      map[string]*MockFile
	FailReads  bool
	FailWrites bool
}

// NewMockDiskManager creates a new MockDiskManager instance.
func NewMockDiskManager() *MockDiskManager {
	return &MockDiskManager{
		files: make(map[string]*MockFile),
	}
}

// Open creates or opens an in-memory file.
func (dm *MockDiskManager) Open(path string, flags int, _ os.FileMode) (diskmanager.FileHandle, error) {
	if file, exists := dm.files[path]; exists {
		if flags&os.O_TRUNC != 0 {
			file.data = file.data[:0]
		}
		return file, nil
	}
	if flags&os.O_CREATE == 0 {
		return nil, os.ErrNotExist
	}

	file := &MockFile{dm: dm, name: path}
	dm.files[path] = file
	return file, nil
}

// Delete removes an in-memory file.
func (dm *MockDiskManager) Delete(path string) error {
	if _, exists := dm.files[path]; !exists {
		return os.ErrNotExist
	}
	delete(dm.files, path)
	return nil
}

// List returns the in-memory files whose path contains the filter.
func (dm *MockDiskManager) List(_ string, filter string) ([]string, error) {
	var files []string
	for name := range dm.files {
		if filter == "" || strings.Contains(name, filter) {
			files = append(files, name)
		}
	}
	return files, nil
}

// Exists reports whether the named file is present.
func (dm *MockDiskManager) Exists(path string) bool {
	_, ok := dm.files[path]
	return ok
}

// MockFile implements diskmanager.FileHandle over a byte slice.
type MockFile struct {
	dm   *MockDiskManager
	data []byte
	name string
}

// WriteAt writes len(b) bytes starting at byte offset off.
func (m *MockFile) WriteAt(b []byte, off int64) (int, error) {
	if m.dm.FailWrites {
		return 0, ErrInjected
	}
	requiredLen := int(off) + len(b)
	if requiredLen > len(m.data) {
		newData := make([]byte, requiredLen)
		copy(newData, m.data)
		m.data = newData
	}
	return copy(m.data[off:], b), nil
}

// ReadAt reads len(b) bytes starting at byte offset off.
func (m *MockFile) ReadAt(b []byte, off int64) (int, error) {
	if m.dm.FailReads {
		return 0, ErrInjected
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(b, m.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

// Close closes the mock file.
func (m *MockFile) Close() error { return nil }

// Sync simulates syncing file contents to disk.
func (m *MockFile) Sync() error {
	if m.dm.FailWrites {
		return ErrInjected
	}
	return nil
}

// Stat returns file information.
func (m *MockFile) Stat() (os.FileInfo, error) {
	return &mockFileInfo{size: int64(len(m.data)), name: m.name}, nil
}

type mockFileInfo struct {
	size int64
	name string
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() os.FileMode  { return 0644 }
func (m *mockFileInfo) ModTime() time.Time { return time.Now() }
func (m *mockFileInfo) IsDir() bool        { return false }
func (m *mockFileInfo) Sys() any           { return nil }
