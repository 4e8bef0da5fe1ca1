package textbuf

import (
	"fmt"

	"github.com/dshills/piecetext/internal/engine/charset"
)

// Encoding returns the encoding the buffer is serialized with.
func (b *TextBuffer) Encoding() charset.Encoding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.encoding
}

// DetectedEncoding returns the encoding chosen at load.
func (b *TextBuffer) DetectedEncoding() charset.Encoding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.detected
}

// EncodingOverridden reports whether SetEncoding has been called.
func (b *TextBuffer) EncodingOverridden() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.overridden
}

// SetEncoding changes the encoding used by the next serialization. The
// text is not decoded again. The BOM follows the new encoding: UTF-16
// always writes one, UTF-8 only as charset.UTF8BOM.
func (b *TextBuffer) SetEncoding(e charset.Encoding) error {
	if !e.Valid() {
		return fmt.Errorf("%w: %q", charset.ErrUnknownEncoding, string(e))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.encoding = e
	b.overridden = true
	return nil
}

// Bytes serializes the document in the buffer's encoding. The report
// counts characters the encoding could not represent; they were written
// as a replacement.
func (b *TextBuffer) Bytes() ([]byte, charset.Report, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.encodeLocked()
}

func (b *TextBuffer) encodeLocked() ([]byte, charset.Report, error) {
	text, err := b.tree.Bytes(0, b.tree.Len())
	if err != nil {
		return nil, charset.Report{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	out, report := charset.Encode(text, b.encoding)
	return out, report, nil
}
