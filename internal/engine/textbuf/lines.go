package textbuf

import (
	"bytes"

	"github.com/rivo/uniseg"
)

// scanChunk bounds how much of a piece is read at once by the scanning
// fallbacks.
const scanChunk = 64 << 10

// OffsetToPosition converts a byte offset to a line and byte column.
// offset may equal Len(). ok is false when the offset is out of range or
// no exact line metadata covers the document up to it.
func (b *TextBuffer) OffsetToPosition(offset int) (Position, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	line, start, ok := b.tree.OffsetToLine(offset)
	if !ok {
		return Position{}, false
	}
	return Position{Line: line, Column: offset - start}, true
}

// PositionToOffset converts a position to a byte offset. The column is
// clamped to the line's length excluding its newline, and a line past the
// end of the document clamps to Len(). Without line metadata the lines
// are found by scanning.
func (b *TextBuffer) PositionToOffset(pos Position) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if pos.Line < 0 {
		return 0
	}
	start, end, ok := b.lineSpanLocked(pos.Line)
	if !ok {
		return b.tree.Len()
	}
	return start + max(0, min(pos.Column, end-start))
}

// lineSpanLocked returns the start of line and the offset of its newline
// (or Len() for the last line). ok is false past the last line.
func (b *TextBuffer) lineSpanLocked(line int) (start, end int, ok bool) {
	if start, next, hasEnd, exact := b.tree.LineRange(line); exact {
		if hasEnd {
			return start, next - 1, true
		}
		return start, next, true
	}
	if b.tree.Exact() {
		return 0, 0, false
	}

	start, ok = b.scanLineStart(line)
	if !ok {
		return 0, 0, false
	}
	return start, b.scanNewline(start), true
}

// scanLineStart finds the start of line by counting newlines from the
// beginning of the document.
func (b *TextBuffer) scanLineStart(line int) (int, bool) {
	if line == 0 {
		return 0, true
	}
	remaining := line
	found := -1
	b.scanForward(0, func(off int, data []byte) bool {
		for i := 0; ; {
			j := bytes.IndexByte(data[i:], '\n')
			if j < 0 {
				return true
			}
			i += j + 1
			if remaining--; remaining == 0 {
				found = off + i
				return false
			}
		}
	})
	return found, found >= 0
}

// scanNewline returns the offset of the first newline at or after from,
// or Len() if there is none.
func (b *TextBuffer) scanNewline(from int) int {
	pos := b.tree.Len()
	b.scanForward(from, func(off int, data []byte) bool {
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			pos = off + i
			return false
		}
		return true
	})
	return pos
}

// scanForward calls fn with consecutive chunks of the document from
// start, stopping when fn returns false or a read fails.
func (b *TextBuffer) scanForward(start int, fn func(off int, data []byte) bool) {
	end := b.tree.Len()
	it := b.tree.Pieces(start, end)
	for it.Next() {
		p := it.Piece()
		bufOff, n := p.Clip(start, end)
		docOff := max(start, p.DocOffset)
		for done := 0; done < n; {
			size := min(scanChunk, n-done)
			data, err := b.store.ReadRange(p.Buffer, bufOff+done, size)
			if err != nil || !fn(docOff+done, data) {
				return
			}
			done += size
		}
	}
}

// LineCount returns the number of lines, newlines + 1: a trailing newline
// starts an empty last line. ok is false unless the whole document has line
// metadata.
func (b *TextBuffer) LineCount() (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.LineCount()
}

// LineBounds returns the range [start, end) of the line containing offset,
// including its newline. It works with or without line metadata.
func (b *TextBuffer) LineBounds(offset int) (start, end int, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 || offset > b.tree.Len() {
		return 0, 0, false
	}
	if line, ls, exact := b.tree.OffsetToLine(offset); exact {
		if s, e, _, ok := b.tree.LineRange(line); ok {
			return s, e, true
		}
		start = ls
	} else {
		start = b.scanLineStartBefore(offset)
	}
	end = b.scanNewline(offset)
	if end < b.tree.Len() {
		end++
	}
	return start, end, true
}

// scanLineStartBefore returns the offset just after the last newline
// before offset, or 0.
func (b *TextBuffer) scanLineStartBefore(offset int) int {
	for hi := offset; hi > 0; {
		lo := max(0, hi-scanChunk)
		data, err := b.tree.Bytes(lo, hi)
		if err != nil {
			return 0
		}
		if i := bytes.LastIndexByte(data, '\n'); i >= 0 {
			return lo + i + 1
		}
		hi = lo
	}
	return 0
}

// GraphemeColumn returns the number of grapheme clusters before pos on its
// line, after clamping pos like PositionToOffset.
func (b *TextBuffer) GraphemeColumn(pos Position) int {
	start := b.PositionToOffset(Position{Line: pos.Line})
	end := b.PositionToOffset(pos)
	if end <= start {
		return 0
	}
	text, ok := b.TextRange(start, end-start)
	if !ok {
		return 0
	}
	return uniseg.GraphemeClusterCount(string(text))
}
