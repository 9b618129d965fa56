// Package diskmanager abstracts the file operations the engine needs:
// opening segment files, deleting them, and listing a directory. The
// indirection exists so that storage failures can be injected in tests.
package diskmanager

import (
	"os"
	"strings"
)

// FileHandle abstracts file operations with random access and syncing.
type FileHandle interface {
	// ReadAt reads len(b) bytes from the file starting at byte offset off.
	ReadAt(b []byte, off int64) (int, error)
	// WriteAt writes len(b) bytes to the file starting at byte offset off.
	WriteAt(b []byte, off int64) (int, error)
	// Close closes the file handle, rendering it unusable for I/O.
	Close() error
	// Sync commits the current contents of the file to stable storage.
	Sync() error
	// Stat returns the file stat.
	Stat() (os.FileInfo, error)
}

// DiskManager defines the file operations used by the engine.
type DiskManager interface {
	// Open opens a file with the specified path, flags and permissions.
	Open(path string, flags int, perm os.FileMode) (FileHandle, error)
	// Delete removes the named file.
	Delete(path string) error
	// List returns the filenames in dir that contain the filter string.
	// An empty filter matches all files.
	List(dir string, filter string) ([]string, error)
}

type diskManager struct{}

// NewDiskManager returns a DiskManager backed by the OS filesystem.
func NewDiskManager() DiskManager {
	return diskManager{}
}

func (diskManager) Open(path string, flags int, perm os.FileMode) (FileHandle, error) {
	return os.OpenFile(path, flags, perm)
}

func (diskManager) Delete(path string) error {
	return os.Remove(path)
}

func (diskManager) List(dir string, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filter == "" || strings.Contains(entry.Name(), filter) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
