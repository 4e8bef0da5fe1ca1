// Package vfs is the storage seam between text buffers and the files they
// are loaded from and saved to.
//
// Buffers never touch the operating system directly; they read and write
// through a VFS, which lets tests run against MemFS and leaves room for
// remote backends.
package vfs

import (
	"io"
	"io/fs"
	"time"
)

// VFS is the set of file operations a text buffer needs.
type VFS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// OpenReaderAt opens a file for random access. The caller closes it.
	OpenReaderAt(path string) (ReaderAtCloser, error)

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// WriteFile writes data to a file, creating it with perm if necessary.
	// An existing file keeps its mode.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Exists returns true if the path exists.
	Exists(path string) bool
}

// ReaderAtCloser is an open file read on demand.
type ReaderAtCloser interface {
	io.ReaderAt
	io.Closer
}

// FileInfo describes a file.
type FileInfo struct {
	path    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

// NewFileInfo creates a FileInfo from the given parameters.
func NewFileInfo(path string, size int64, mode fs.FileMode, modTime time.Time) FileInfo {
	return FileInfo{path: path, size: size, mode: mode, modTime: modTime}
}

// Path returns the full path.
func (fi FileInfo) Path() string { return fi.path }

// Size returns the file size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// Mode returns the file mode.
func (fi FileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true if this is a directory.
func (fi FileInfo) IsDir() bool { return fi.mode.IsDir() }
