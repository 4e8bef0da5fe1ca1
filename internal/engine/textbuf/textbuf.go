package textbuf

import (
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/dshills/piecetext/internal/engine/charset"
	"github.com/dshills/piecetext/internal/engine/piecetree"
	"github.com/dshills/piecetext/internal/engine/store"
	"github.com/dshills/piecetext/internal/logging"
	"github.com/dshills/piecetext/internal/vfs"
)

// Defaults applied when no option overrides them.
const (
	DefaultEstimatedLineLength = 80
	DefaultLargeFileThreshold  = store.DefaultLargeFileThreshold
)

// sniffSize is how much of a large file is inspected before deciding
// whether it can be read lazily.
const sniffSize = 64 << 10

// TextBuffer is an editable document: a piece tree over a buffer store,
// the encoding it is serialized with and a modification flag.
type TextBuffer struct {
	mu    sync.RWMutex
	store *store.Store
	tree  *piecetree.Tree

	detected   charset.Encoding
	encoding   charset.Encoding
	overridden bool
	modified   bool

	loadReport charset.Report
	lineEnding charset.LineEnding
	original   store.BufferID

	estLineLen      int
	threshold       int
	defaultEncoding charset.Encoding
	forced          charset.Encoding
	logger          *log.Logger

	fsys   vfs.VFS
	path   string
	source io.Closer
}

func newTextBuffer(opts []Option) *TextBuffer {
	b := &TextBuffer{
		estLineLen:      DefaultEstimatedLineLength,
		threshold:       DefaultLargeFileThreshold,
		defaultEncoding: charset.UTF8,
		logger:          logging.Default(),
		original:        store.NoBuffer,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.store = store.New(store.WithLargeFileThreshold(b.threshold))
	return b
}

// New creates an empty buffer in the default encoding.
func New(opts ...Option) *TextBuffer {
	b := newTextBuffer(opts)
	b.tree = piecetree.New(b.store)
	b.detected = b.defaultEncoding
	b.encoding = b.defaultEncoding
	b.lineEnding = charset.LineEndingLF
	return b
}

// FromBytes detects the encoding of content, decodes it and returns the
// buffer with the detected encoding. Empty content gets the default
// encoding. The buffer may keep content; callers must not modify it
// afterwards.
func FromBytes(content []byte, opts ...Option) (*TextBuffer, charset.Encoding) {
	b := newTextBuffer(opts)
	enc := b.encodingFor(content)
	b.load(content, enc)
	return b, enc
}

// encodingFor picks the encoding content is decoded with.
func (b *TextBuffer) encodingFor(content []byte) charset.Encoding {
	switch {
	case b.forced != "":
		return b.forced
	case len(content) == 0:
		return b.defaultEncoding
	}
	return charset.Detect(content)
}

// FromBytesWithEncoding decodes content as enc instead of detecting it.
func FromBytesWithEncoding(content []byte, enc charset.Encoding, opts ...Option) (*TextBuffer, error) {
	if !enc.Valid() {
		return nil, fmt.Errorf("%w: %q", charset.ErrUnknownEncoding, string(enc))
	}
	b := newTextBuffer(opts)
	b.load(content, enc)
	return b, nil
}

// FromReaderAt creates a buffer over size bytes of r.
//
// Content at or above the large-file threshold whose leading bytes are
// UTF-8 without a byte order mark is not read up front: the buffer refers
// to r and reads ranges on demand, so r must stay readable for the life
// of the buffer. Everything else is read fully and decoded.
func FromReaderAt(r io.ReaderAt, size int, opts ...Option) (*TextBuffer, charset.Encoding, error) {
	b := newTextBuffer(opts)
	if _, err := b.loadFrom(r, size); err != nil {
		return nil, "", err
	}
	return b, b.detected, nil
}

// loadFrom fills b from r and reports whether r is still referenced.
func (b *TextBuffer) loadFrom(r io.ReaderAt, size int) (bool, error) {
	if size >= b.threshold && (b.forced == "" || b.forced == charset.UTF8) {
		head := make([]byte, min(size, sniffSize))
		n, err := r.ReadAt(head, 0)
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("%w: %w", ErrIO, err)
		}
		head = head[:n]
		if enc, ok := lazyEncoding(head); ok {
			b.loadDeferred(r, size, enc, head)
			return true, nil
		}
	}

	content := make([]byte, size)
	n, err := r.ReadAt(content, 0)
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("%w: %w", ErrIO, err)
	}
	content = content[:n]
	b.load(content, b.encodingFor(content))
	return false, nil
}

// lazyEncoding reports whether head, the start of a large file, can be
// served from disk without decoding. Lazy buffers are always UTF-8 since
// the rest of the file is never inspected, and UTF-8 output is the
// document bytes unchanged.
func lazyEncoding(head []byte) (charset.Encoding, bool) {
	if _, _, bom := charset.StripBOM(head); bom || charset.IsBinary(head) {
		return "", false
	}
	// A multi-byte character may be cut at the end of the sample.
	for cut := 0; cut < utf8.UTFMax && cut < len(head); cut++ {
		if utf8.Valid(head[:len(head)-cut]) {
			return charset.UTF8, true
		}
	}
	return "", false
}

func (b *TextBuffer) load(content []byte, enc charset.Encoding) {
	text, report := charset.Decode(content, enc)
	b.original = b.store.Load(text)
	b.tree = piecetree.FromBuffer(b.store, b.original)
	b.detected = enc
	b.encoding = enc
	b.loadReport = report
	b.lineEnding = charset.DetectLineEnding(text)

	b.logger.Debug("loaded buffer",
		logging.FieldEncoding, enc,
		logging.FieldBytes, len(text),
		logging.FieldExact, b.tree.Exact())
	if report.Replaced > 0 {
		b.logger.Warn("undecodable bytes replaced",
			logging.FieldEncoding, enc,
			logging.FieldReplaced, report.Replaced)
	}
}

func (b *TextBuffer) loadDeferred(r io.ReaderAt, size int, enc charset.Encoding, head []byte) {
	b.original = b.store.LoadDeferred(r, size)
	b.tree = piecetree.FromBuffer(b.store, b.original)
	b.detected = enc
	b.encoding = enc
	b.lineEnding = charset.DetectLineEnding(head)

	b.logger.Debug("deferred load",
		logging.FieldEncoding, enc,
		logging.FieldBytes, size,
		logging.FieldThreshold, b.threshold)
}

// Len returns the document length in bytes.
func (b *TextBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Len()
}

// IsEmpty returns true if the document has no content.
func (b *TextBuffer) IsEmpty() bool {
	return b.Len() == 0
}

// TextRange returns a copy of length bytes starting at start. ok is false
// if the range exceeds the document or the bytes could not be read.
func (b *TextBuffer) TextRange(start, length int) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if start < 0 || length < 0 || start+length > b.tree.Len() {
		return nil, false
	}
	data, err := b.tree.Bytes(start, start+length)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Text returns the whole document, or "" if it could not be read.
func (b *TextBuffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, err := b.tree.Bytes(0, b.tree.Len())
	if err != nil {
		return ""
	}
	return string(data)
}

// Insert inserts text at offset. Content previously at offset follows the
// new text.
func (b *TextBuffer) Insert(offset int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if text == "" {
		return b.checkOffset(offset)
	}
	if err := b.tree.Insert(offset, []byte(text)); err != nil {
		return err
	}
	b.modified = true
	return nil
}

// Delete removes the bytes in [start, end).
func (b *TextBuffer) Delete(start, end int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if start == end {
		return b.checkOffset(start)
	}
	if err := b.tree.Delete(start, end); err != nil {
		return err
	}
	b.modified = true
	return nil
}

// Replace replaces [start, end) with text.
func (b *TextBuffer) Replace(start, end int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if start < 0 || start > end || end > b.tree.Len() {
		return fmt.Errorf("%w: replace [%d,%d), length %d", ErrOutOfRange, start, end, b.tree.Len())
	}
	if start == end && text == "" {
		return nil
	}
	if start < end {
		if err := b.tree.Delete(start, end); err != nil {
			return err
		}
	}
	if text != "" {
		if err := b.tree.Insert(start, []byte(text)); err != nil {
			return err
		}
	}
	b.modified = true
	return nil
}

func (b *TextBuffer) checkOffset(offset int) error {
	if offset < 0 || offset > b.tree.Len() {
		return fmt.Errorf("%w: offset %d, length %d", ErrOutOfRange, offset, b.tree.Len())
	}
	return nil
}

// IsModified reports whether an edit changed the document since it was
// loaded or last saved.
func (b *TextBuffer) IsModified() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.modified
}

// Generation returns a counter that changes on every edit.
func (b *TextBuffer) Generation() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Generation()
}

// HasExactLines reports whether the whole document has line metadata.
func (b *TextBuffer) HasExactLines() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Exact()
}

// EstimatedLineLength returns the configured estimated line length.
func (b *TextBuffer) EstimatedLineLength() int {
	return b.estLineLen
}

// LineEnding returns the dominant line terminator seen at load.
func (b *TextBuffer) LineEnding() charset.LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// LoadReport returns the replacements made while decoding the content.
func (b *TextBuffer) LoadReport() charset.Report {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loadReport
}

// View calls fn with the piece tree while holding the read lock. fn must
// not retain the tree or call methods of b that modify it.
func (b *TextBuffer) View(fn func(t *piecetree.Tree)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	fn(b.tree)
}

// Compact merges contiguous pieces. Document content is unchanged.
func (b *TextBuffer) Compact() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tree.Compact()
}
