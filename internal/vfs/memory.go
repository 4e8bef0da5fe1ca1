package vfs

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemFS implements VFS in memory. It has a flat namespace: any cleaned path
// can hold a file without its parent existing.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
}

type memFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemFS creates a new in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string]*memFile)}
}

var _ VFS = (*MemFS)(nil)

// ReadFile returns a copy of the file content.
func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrNotExist}
	}
	return bytes.Clone(f.content), nil
}

// OpenReaderAt returns a reader over a snapshot of the file content.
func (m *MemFS) OpenReaderAt(filePath string) (ReaderAtCloser, error) {
	data, err := m.ReadFile(filePath)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: cleanPath(filePath), Err: fs.ErrNotExist}
	}
	return nopCloser{bytes.NewReader(data)}, nil
}

// Stat returns file information.
func (m *MemFS) Stat(filePath string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		return FileInfo{}, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
	}
	return NewFileInfo(filePath, int64(len(f.content)), f.mode, f.modTime), nil
}

// WriteFile stores a copy of data. An existing file keeps its mode.
func (m *MemFS) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)
	if f, ok := m.files[filePath]; ok {
		perm = f.mode
	}
	m.files[filePath] = &memFile{
		content: bytes.Clone(data),
		mode:    perm,
		modTime: time.Now(),
	}
	return nil
}

// Exists returns true if the path exists.
func (m *MemFS) Exists(filePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[cleanPath(filePath)]
	return ok
}

// AddFile is a convenience for test setup.
func (m *MemFS) AddFile(filePath string, content []byte, perm fs.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[cleanPath(filePath)] = &memFile{
		content: bytes.Clone(content),
		mode:    perm,
		modTime: time.Now(),
	}
}

// Files returns all file paths, sorted.
func (m *MemFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]string, 0, len(m.files))
	for f := range m.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func cleanPath(p string) string {
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

type nopCloser struct {
	io.ReaderAt
}

func (nopCloser) Close() error { return nil }
