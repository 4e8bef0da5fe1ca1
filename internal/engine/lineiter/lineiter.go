// Package lineiter walks the lines of a text buffer forward and backward.
//
// New and Prev choose between two regimes on every call, depending on
// whether the document has line metadata up to the current position. In
// the exact regime lines are newline-delimited and Prev steps to the
// previous line exactly. In the estimated regime, used for large files
// without line metadata, positions are rounded down to a multiple of the
// estimated line length and Prev yields the bytes from there up to the
// current position, which need not be a whole line. Exact reports the
// regime of the last positioning; callers check it before relying on line
// boundaries.
//
// Next always scans forward to the next newline, so it is exact in both
// regimes.
//
// An iterator is invalidated by any edit to the buffer; Next and Prev then
// return false and Err reports piecetree.ErrStaleIterator.
package lineiter

import (
	"bytes"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/piecetext/internal/engine/piecetree"
	"github.com/dshills/piecetext/internal/engine/textbuf"
	"github.com/dshills/piecetext/internal/logging"
)

// DefaultEstimatedLineLength is used when New is given a non-positive
// estimate.
const DefaultEstimatedLineLength = 80

// readChunk bounds a single read while scanning for a newline.
const readChunk = 4096

// Document is the view of a text buffer an iterator needs.
// *textbuf.TextBuffer implements it.
type Document interface {
	OffsetToPosition(offset int) (textbuf.Position, bool)
	View(fn func(t *piecetree.Tree))
}

// Line is one line produced by an iterator.
type Line struct {
	// Start is the document offset of the first byte.
	Start int
	// Text includes the terminating newline, if any.
	Text string
}

// End returns the offset just past the line.
func (l Line) End() int {
	return l.Start + len(l.Text)
}

// Width returns the terminal cell width of the line without its line
// terminator.
func (l Line) Width() int {
	return uniseg.StringWidth(strings.TrimRight(l.Text, "\r\n"))
}

// Iterator is a cursor over the lines of a document. It is not safe for
// concurrent use.
type Iterator struct {
	doc   Document
	pos   int
	est   int
	exact bool
	gen   uint64
	err   error
}

// New creates an iterator positioned at the start of the line containing
// offset. offset is clamped to the document.
func New(doc Document, offset, estimatedLineLength int) *Iterator {
	if estimatedLineLength <= 0 {
		estimatedLineLength = DefaultEstimatedLineLength
	}
	it := &Iterator{doc: doc, est: estimatedLineLength}

	var length int
	doc.View(func(t *piecetree.Tree) {
		it.gen = t.Generation()
		length = t.Len()
	})
	offset = max(0, min(offset, length))

	if pos, ok := doc.OffsetToPosition(offset); ok {
		it.exact = true
		it.pos = offset - pos.Column
		return it
	}

	it.pos = offset / it.est * it.est
	logging.Default().Debug("estimated line position",
		logging.FieldOffset, offset,
		logging.FieldLineStart, it.pos,
		logging.FieldLineLen, it.est)
	return it
}

// CurrentPosition returns the start of the line the iterator is positioned
// at.
func (it *Iterator) CurrentPosition() int {
	return it.pos
}

// Exact reports whether the iterator's last positioning, by New or Prev,
// used exact line boundaries.
func (it *Iterator) Exact() bool {
	return it.exact
}

// Err returns the error that stopped the iterator, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Next returns the line at the current position and advances past it.
// It returns false at the end of the document.
func (it *Iterator) Next() (Line, bool) {
	if it.err != nil {
		return Line{}, false
	}
	var (
		text []byte
		ok   bool
	)
	it.doc.View(func(t *piecetree.Tree) {
		if !it.check(t) || it.pos >= t.Len() {
			return
		}
		text, ok = it.scanLine(t)
	})
	if !ok {
		return Line{}, false
	}

	line := Line{Start: it.pos, Text: string(text)}
	it.pos += len(text)
	return line, true
}

// scanLine reads from the current position through the next newline or
// the end of the document.
func (it *Iterator) scanLine(t *piecetree.Tree) ([]byte, bool) {
	var out []byte
	end := t.Len()
	pieces := t.Pieces(it.pos, end)
	for pieces.Next() {
		p := pieces.Piece()
		bufOff, n := p.Clip(it.pos, end)
		for done := 0; done < n; {
			size := min(readChunk, n-done)
			data, err := t.Store().ReadRange(p.Buffer, bufOff+done, size)
			if err != nil {
				it.err = err
				return nil, false
			}
			if i := bytes.IndexByte(data, '\n'); i >= 0 {
				return append(out, data[:i+1]...), true
			}
			out = append(out, data...)
			done += size
		}
	}
	if err := pieces.Err(); err != nil {
		it.err = err
		return nil, false
	}
	return out, len(out) > 0
}

// Prev moves to the line before the current position and returns it.
// It returns false at the start of the document.
//
// When line metadata reaches the current position the previous line is
// exact. Otherwise the returned line starts at the previous multiple of
// the estimated line length and ends at the current position, so it never
// repeats bytes Next has already returned.
func (it *Iterator) Prev() (Line, bool) {
	if it.err != nil {
		return Line{}, false
	}
	var (
		line Line
		ok   bool
	)
	it.doc.View(func(t *piecetree.Tree) {
		if !it.check(t) || it.pos == 0 {
			return
		}
		start, end, exact := it.prevBounds(t)
		text, err := t.Bytes(start, end)
		if err != nil {
			it.err = err
			return
		}
		if !exact {
			logging.Default().Debug("estimated line position",
				logging.FieldOffset, it.pos,
				logging.FieldLineStart, start,
				logging.FieldLineLen, it.est)
		}
		it.pos = start
		it.exact = exact
		line, ok = Line{Start: start, Text: string(text)}, true
	})
	return line, ok
}

// prevBounds returns the range of the line before it.pos, it.pos > 0.
func (it *Iterator) prevBounds(t *piecetree.Tree) (start, end int, exact bool) {
	if n, lineStart, ok := t.OffsetToLine(it.pos); ok {
		if lineStart < it.pos {
			// Positioned inside a line; step back to its start.
			return lineStart, it.pos, true
		}
		if s, e, _, found := t.LineRange(n - 1); found {
			return s, e, true
		}
	}
	start = (it.pos - 1) / it.est * it.est
	return start, it.pos, false
}

// check records a stale error if the document changed since New.
func (it *Iterator) check(t *piecetree.Tree) bool {
	if t.Generation() != it.gen {
		it.err = piecetree.ErrStaleIterator
		return false
	}
	return true
}
