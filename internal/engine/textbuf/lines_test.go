package textbuf

import (
	"bytes"
	"strings"
	"testing"
)

func TestOffsetToPosition(t *testing.T) {
	b := fromString(t, "Hello\nWorld!!\n")

	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{5, Position{0, 5}},
		{6, Position{1, 0}},
		{7, Position{1, 1}},
		{13, Position{1, 7}},
		{14, Position{2, 0}},
	}
	for _, tt := range tests {
		got, ok := b.OffsetToPosition(tt.offset)
		if !ok || got != tt.want {
			t.Errorf("OffsetToPosition(%d) = %v, %v; want %v, true", tt.offset, got, ok, tt.want)
		}
	}
	if _, ok := b.OffsetToPosition(15); ok {
		t.Error("OffsetToPosition(15) ok past the end")
	}
}

func TestOffsetPositionInverse(t *testing.T) {
	docs := []string{
		"",
		"no newline",
		"ab\ncd\n\nxyz",
		"\n\n\n",
		"h\xc3\xa9llo\nw\xc3\xb6rld\n",
	}
	for _, doc := range docs {
		b := fromString(t, doc)
		// Fragment the tree so lookups cross pieces.
		if len(doc) > 2 {
			_ = b.Insert(len(doc)/2, "mid\n")
		}
		for o := 0; o <= b.Len(); o++ {
			pos, ok := b.OffsetToPosition(o)
			if !ok {
				t.Fatalf("%q: OffsetToPosition(%d) not available", doc, o)
			}
			if got := b.PositionToOffset(pos); got != o {
				t.Errorf("%q: PositionToOffset(%v) = %d, want %d", doc, pos, got, o)
			}
		}
	}
}

func TestPositionToOffsetClamps(t *testing.T) {
	b := fromString(t, "ab\ncd")

	tests := []struct {
		pos  Position
		want int
	}{
		{Position{0, 0}, 0},
		{Position{0, 10}, 2},
		{Position{1, 1}, 4},
		{Position{1, 10}, 5},
		{Position{5, 0}, 5},
		{Position{-1, 3}, 0},
		{Position{1, -4}, 3},
	}
	for _, tt := range tests {
		if got := b.PositionToOffset(tt.pos); got != tt.want {
			t.Errorf("PositionToOffset(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestPositionsWithoutLineMetadata(t *testing.T) {
	b := fromString(t, "one\ntwo\nthree\n", WithLargeFileThreshold(8))
	if b.HasExactLines() {
		t.Fatal("HasExactLines() = true above threshold")
	}
	if _, ok := b.OffsetToPosition(5); ok {
		t.Error("OffsetToPosition ok without line metadata")
	}
	if _, ok := b.LineCount(); ok {
		t.Error("LineCount ok without line metadata")
	}

	tests := []struct {
		pos  Position
		want int
	}{
		{Position{0, 2}, 2},
		{Position{1, 1}, 5},
		{Position{2, 100}, 13},
		{Position{3, 0}, 14},
		{Position{9, 0}, 14},
	}
	for _, tt := range tests {
		if got := b.PositionToOffset(tt.pos); got != tt.want {
			t.Errorf("PositionToOffset(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestExactPrefixBeforeLargeRegion(t *testing.T) {
	b := fromString(t, strings.Repeat("z", 20), WithLargeFileThreshold(16))
	if err := b.Insert(0, "x\ny\n"); err != nil {
		t.Fatal(err)
	}

	if pos, ok := b.OffsetToPosition(3); !ok || pos != (Position{1, 1}) {
		t.Errorf("OffsetToPosition(3) = %v, %v; want (1:1), true", pos, ok)
	}
	if _, ok := b.OffsetToPosition(6); ok {
		t.Error("OffsetToPosition(6) ok inside region without metadata")
	}
	if got := b.PositionToOffset(Position{2, 3}); got != 7 {
		t.Errorf("PositionToOffset(2:3) = %d, want 7", got)
	}
}

func TestLineBounds(t *testing.T) {
	const doc = "ab\ncd"
	exact := fromString(t, doc)
	scanned := fromString(t, doc, WithLargeFileThreshold(2))

	tests := []struct {
		offset     int
		start, end int
	}{
		{0, 0, 3},
		{1, 0, 3},
		{2, 0, 3},
		{3, 3, 5},
		{5, 3, 5},
	}
	for _, tt := range tests {
		for name, b := range map[string]*TextBuffer{"exact": exact, "scanned": scanned} {
			start, end, ok := b.LineBounds(tt.offset)
			if !ok || start != tt.start || end != tt.end {
				t.Errorf("%s: LineBounds(%d) = %d, %d, %v; want %d, %d, true",
					name, tt.offset, start, end, ok, tt.start, tt.end)
			}
		}
	}
	if _, _, ok := exact.LineBounds(6); ok {
		t.Error("LineBounds(6) ok past the end")
	}
}

func TestScanAcrossChunks(t *testing.T) {
	var doc bytes.Buffer
	doc.WriteString(strings.Repeat("a", scanChunk+10))
	doc.WriteString("\nsecond line\n")

	b := fromString(t, doc.String(), WithLargeFileThreshold(1024))
	if got := b.PositionToOffset(Position{1, 6}); got != scanChunk+17 {
		t.Errorf("PositionToOffset(1:6) = %d, want %d", got, scanChunk+17)
	}
	start, end, ok := b.LineBounds(scanChunk + 5)
	if !ok || start != 0 || end != scanChunk+11 {
		t.Errorf("LineBounds = %d, %d, %v", start, end, ok)
	}
}

func TestGraphemeColumn(t *testing.T) {
	// Line 1 is e-acute (2 bytes), t, thumbs up with a skin tone modifier
	// (8 bytes, one cluster), '!'.
	b := fromString(t, "x\n\u00e9t\U0001F44D\U0001F3FD!\n")

	tests := []struct {
		pos  Position
		want int
	}{
		{Position{0, 1}, 1},
		{Position{1, 0}, 0},
		{Position{1, 2}, 1},
		{Position{1, 3}, 2},
		{Position{1, 11}, 3},
		{Position{1, 12}, 4},
		{Position{1, 99}, 4},
	}
	for _, tt := range tests {
		if got := b.GraphemeColumn(tt.pos); got != tt.want {
			t.Errorf("GraphemeColumn(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestLineCountMatchesLastPosition(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"one", 1},
		{"one\ntwo\nthree\n", 4},
		{"one\r\ntwo", 2},
	}
	for _, tt := range tests {
		b := fromString(t, tt.text)
		n, ok := b.LineCount()
		if !ok || n != tt.want {
			t.Errorf("LineCount(%q) = %d, %v; want %d", tt.text, n, ok, tt.want)
		}
		pos, ok := b.OffsetToPosition(b.Len())
		if !ok || pos.Line != n-1 {
			t.Errorf("OffsetToPosition(Len) of %q = %v, %v; want line %d", tt.text, pos, ok, n-1)
		}
	}
}
