package store

import (
	"errors"
	"fmt"
	"io"
)

// DefaultLargeFileThreshold is the size at which a loaded buffer stops
// carrying exact line metadata.
const DefaultLargeFileThreshold = 1 << 20

// Errors returned by store operations.
var (
	// ErrUnknownBuffer indicates a BufferID that the store never issued.
	ErrUnknownBuffer = errors.New("unknown buffer")

	// ErrUnloaded indicates an operation that needs in-memory bytes was
	// called on an Unloaded buffer.
	ErrUnloaded = errors.New("buffer not loaded")

	// ErrRange indicates a read outside a buffer's bounds.
	ErrRange = errors.New("buffer range out of bounds")
)

// Option configures a Store.
type Option func(*Store)

// WithLargeFileThreshold sets the size at or above which loaded buffers
// are kept without line metadata. Non-positive values are ignored.
func WithLargeFileThreshold(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// Store owns every buffer of one document.
type Store struct {
	buffers   []*Buffer
	addID     BufferID
	threshold int
}

// New creates an empty store. The add buffer is created lazily on the
// first append.
func New(opts ...Option) *Store {
	s := &Store{
		addID:     NoBuffer,
		threshold: DefaultLargeFileThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LargeFileThreshold returns the configured threshold.
func (s *Store) LargeFileThreshold() int {
	return s.threshold
}

// Load stores data as a new Loaded buffer and returns its id. Line starts
// are computed iff len(data) is below the large-file threshold. The store
// keeps data; callers must not modify it afterwards.
func (s *Store) Load(data []byte) BufferID {
	b := &Buffer{
		id:     BufferID(len(s.buffers)),
		state:  Loaded,
		length: len(data),
		data:   data,
	}
	if len(data) < s.threshold {
		b.lineStarts = computeLineStarts(data)
	}
	s.buffers = append(s.buffers, b)
	return b.id
}

// LoadDeferred registers an Unloaded buffer of the given length whose bytes
// are read from src on demand.
func (s *Store) LoadDeferred(src io.ReaderAt, length int) BufferID {
	b := &Buffer{
		id:     BufferID(len(s.buffers)),
		state:  Unloaded,
		length: length,
		src:    src,
	}
	s.buffers = append(s.buffers, b)
	return b.id
}

// Materialize reads an Unloaded buffer fully into memory. It is a no-op for
// a Loaded buffer. Line metadata follows the same threshold rule as Load.
func (s *Store) Materialize(id BufferID) error {
	b, err := s.Buffer(id)
	if err != nil {
		return err
	}
	if b.state == Loaded {
		return nil
	}
	data := make([]byte, b.length)
	if _, err := b.src.ReadAt(data, 0); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("materializing buffer %d: %w", id, err)
	}
	b.data = data
	b.state = Loaded
	b.src = nil
	if b.length < s.threshold {
		b.lineStarts = computeLineStarts(data)
	}
	return nil
}

// Buffer returns the buffer with the given id.
func (s *Store) Buffer(id BufferID) (*Buffer, error) {
	if id < 0 || int(id) >= len(s.buffers) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBuffer, id)
	}
	return s.buffers[id], nil
}

// Len returns the number of buffers in the store.
func (s *Store) Len() int {
	return len(s.buffers)
}

// Data returns the bytes of a Loaded buffer. ok is false for an Unloaded or
// unknown buffer. The add buffer is always Loaded.
func (s *Store) Data(id BufferID) (data []byte, ok bool) {
	b, err := s.Buffer(id)
	if err != nil {
		return nil, false
	}
	return b.Data()
}

// ReadRange returns n bytes of buffer id starting at off, reading from the
// backing source if the buffer is Unloaded. The result for a Loaded buffer
// aliases the store and must not be modified.
func (s *Store) ReadRange(id BufferID, off, n int) ([]byte, error) {
	b, err := s.Buffer(id)
	if err != nil {
		return nil, err
	}
	if off < 0 || n < 0 || off+n > b.length {
		return nil, fmt.Errorf("%w: [%d,%d) of %d", ErrRange, off, off+n, b.length)
	}
	if b.state == Loaded {
		return b.data[off : off+n], nil
	}
	out := make([]byte, n)
	read, err := b.src.ReadAt(out, int64(off))
	if read < n {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading buffer %d: %w", id, err)
	}
	return out, nil
}

// AddBufferID returns the id of the add buffer, or NoBuffer if nothing has
// been appended yet.
func (s *Store) AddBufferID() BufferID {
	return s.addID
}

// AppendToAddBuffer appends data to the add buffer, creating it on first
// use, and returns the add buffer id and the offset at which data starts.
// The add buffer always keeps exact line metadata.
func (s *Store) AppendToAddBuffer(data []byte) (BufferID, int) {
	if s.addID == NoBuffer {
		b := &Buffer{
			id:         BufferID(len(s.buffers)),
			state:      Loaded,
			lineStarts: []int{0},
		}
		s.buffers = append(s.buffers, b)
		s.addID = b.id
	}
	b := s.buffers[s.addID]
	off := b.length
	b.data = append(b.data, data...)
	b.lineStarts = appendLineStarts(b.lineStarts, data, off)
	b.length = len(b.data)
	return s.addID, off
}

// LineStarts returns the line metadata for a buffer, or nil.
func (s *Store) LineStarts(id BufferID) []int {
	b, err := s.Buffer(id)
	if err != nil {
		return nil
	}
	return b.lineStarts
}

// CountLineFeeds returns the number of '\n' bytes in buffer id within
// [start, end). ok is false when the buffer has no line metadata.
func (s *Store) CountLineFeeds(id BufferID, start, end int) (n int, ok bool) {
	b, err := s.Buffer(id)
	if err != nil || b.lineStarts == nil {
		return 0, false
	}
	return b.countLineFeeds(start, end), true
}

// NthLineFeed returns the buffer offset just past the n-th (1-based) '\n'
// at or after start. ok is false if there is no line metadata or fewer
// than n newlines follow start.
func (s *Store) NthLineFeed(id BufferID, start, n int) (off int, ok bool) {
	b, err := s.Buffer(id)
	if err != nil || b.lineStarts == nil || n <= 0 {
		return 0, false
	}
	off = b.nthLineFeedAfter(start, n)
	return off, off >= 0
}
