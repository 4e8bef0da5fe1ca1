package piecetree

// LineCount returns the number of lines (newlines + 1). ok is false unless
// every piece has line metadata.
func (t *Tree) LineCount() (int, bool) {
	if !t.Exact() {
		return 0, false
	}
	return t.root.summary.LineFeeds + 1, true
}

// LineStart returns the document offset at which line (0-indexed) begins.
// ok is false if the document has fewer lines, or if a piece without line
// metadata precedes the line's first byte.
func (t *Tree) LineStart(line int) (int, bool) {
	if line < 0 {
		return 0, false
	}
	if line == 0 {
		return 0, true
	}

	remaining := line
	base := 0
	n := t.root
	for !n.isLeaf() {
		next := -1
		for i, cs := range n.childSummaries {
			if cs.Unknown > 0 || cs.LineFeeds >= remaining {
				next = i
				break
			}
			remaining -= cs.LineFeeds
			base += cs.Bytes
		}
		if next < 0 {
			return 0, false
		}
		n = n.children[next]
	}

	for _, p := range n.pieces {
		if !p.HasLineFeeds() {
			return 0, false
		}
		if p.LineFeeds >= remaining {
			off, ok := t.store.NthLineFeed(p.Buffer, p.Start, remaining)
			if !ok {
				return 0, false
			}
			return base + off - p.Start, true
		}
		remaining -= p.LineFeeds
		base += p.Length
	}
	return 0, false
}

// LineRange returns the byte range of line. end is the offset of the next
// line's start (so the range includes the terminating newline); hasEnd is
// false when line is the document's last line, whose end is Len().
//
// ok is false for a line past the end of the document, or when the line's
// bounds fall in a region without line metadata. LineRange never estimates.
func (t *Tree) LineRange(line int) (start, end int, hasEnd, ok bool) {
	start, ok = t.LineStart(line)
	if !ok {
		return 0, 0, false, false
	}
	if next, found := t.LineStart(line + 1); found {
		return start, next, true, true
	}
	if !t.Exact() {
		return 0, 0, false, false
	}
	return start, t.Len(), false, true
}

// OffsetToLine returns the line containing offset and that line's start.
// offset may equal Len(). ok is false when offset is out of range or any
// piece up to and including the one holding offset lacks line metadata.
func (t *Tree) OffsetToLine(offset int) (line, lineStart int, ok bool) {
	if offset < 0 || offset > t.Len() {
		return 0, 0, false
	}

	rel := offset
	n := t.root
	for !n.isLeaf() {
		idx, childOffset := n.findChild(rel)
		for i := 0; i < idx; i++ {
			if n.childSummaries[i].Unknown > 0 {
				return 0, 0, false
			}
			line += n.childSummaries[i].LineFeeds
		}
		rel = childOffset
		n = n.children[idx]
	}

	for _, p := range n.pieces {
		if !p.HasLineFeeds() {
			return 0, 0, false
		}
		if rel <= p.Length {
			c, _ := t.store.CountLineFeeds(p.Buffer, p.Start, p.Start+rel)
			line += c
			break
		}
		line += p.LineFeeds
		rel -= p.Length
	}

	lineStart, ok = t.LineStart(line)
	return line, lineStart, ok
}
