package store

import (
	"fmt"
	"io"
	"sort"
)

// BufferID identifies a buffer within a Store.
type BufferID int

// NoBuffer is the zero-value sentinel for "no buffer".
const NoBuffer BufferID = -1

// State is the load state of a buffer.
type State uint8

const (
	// Unloaded buffers know their length but not their bytes.
	Unloaded State = iota
	// Loaded buffers hold their bytes in memory.
	Loaded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Buffer is one byte source. Loaded content is never rewritten; the add
// buffer only grows at its end.
type Buffer struct {
	id     BufferID
	state  State
	length int

	// Loaded
	data       []byte
	lineStarts []int // nil when no exact metadata is kept

	// Unloaded
	src io.ReaderAt
}

// ID returns the buffer id.
func (b *Buffer) ID() BufferID {
	return b.id
}

// State returns the buffer's load state.
func (b *Buffer) State() State {
	return b.state
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int {
	return b.length
}

// Data returns the buffer bytes. ok is false while the buffer is Unloaded.
// The returned slice must not be modified.
func (b *Buffer) Data() (data []byte, ok bool) {
	if b.state != Loaded {
		return nil, false
	}
	return b.data, true
}

// LineStarts returns the exact line-start offsets of the buffer's own
// content, or nil if the buffer carries no line metadata. When present,
// LineStarts()[0] == 0 and every later entry is the offset just past a '\n'.
func (b *Buffer) LineStarts() []int {
	return b.lineStarts
}

// HasLineStarts reports whether exact line metadata is available.
func (b *Buffer) HasLineStarts() bool {
	return b.lineStarts != nil
}

// countLineFeeds returns the number of '\n' bytes in data[start:end].
// It requires line metadata.
func (b *Buffer) countLineFeeds(start, end int) int {
	// A '\n' at position p produces a line start at p+1, so newlines in
	// [start, end) are exactly the line starts in (start, end].
	lo := sort.SearchInts(b.lineStarts, start+1)
	hi := sort.SearchInts(b.lineStarts, end+1)
	return hi - lo
}

// nthLineFeedAfter returns the offset just past the n-th (1-based) '\n'
// at or after start, or -1 if the buffer has fewer.
func (b *Buffer) nthLineFeedAfter(start, n int) int {
	idx := sort.SearchInts(b.lineStarts, start+1) + n - 1
	if idx >= len(b.lineStarts) {
		return -1
	}
	return b.lineStarts[idx]
}

// computeLineStarts scans data for '\n' and returns the line starts.
func computeLineStarts(data []byte) []int {
	starts := make([]int, 1, 1+len(data)/40)
	starts[0] = 0
	for i, c := range data {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// appendLineStarts extends starts with the line starts of data, which is
// being appended at byte offset base.
func appendLineStarts(starts []int, data []byte, base int) []int {
	for i, c := range data {
		if c == '\n' {
			starts = append(starts, base+i+1)
		}
	}
	return starts
}
