package piecetree

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/dshills/piecetext/internal/engine/store"
	"github.com/google/go-cmp/cmp"
)

func newTree(t *testing.T, s string) *Tree {
	t.Helper()
	st := store.New()
	return FromBuffer(st, st.Load([]byte(s)))
}

func content(t *testing.T, tr *Tree) string {
	t.Helper()
	b, err := tr.Bytes(0, tr.Len())
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	return string(b)
}

// checkPartition verifies that pieces tile [0, Len()) with no gaps.
func checkPartition(t *testing.T, tr *Tree) {
	t.Helper()
	if err := tr.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	next := 0
	for _, p := range tr.All() {
		if p.DocOffset != next {
			t.Fatalf("piece at %d, expected %d", p.DocOffset, next)
		}
		if p.Length <= 0 {
			t.Fatalf("empty piece at %d", p.DocOffset)
		}
		next = p.DocEnd()
	}
	if next != tr.Len() {
		t.Fatalf("pieces cover %d bytes, length is %d", next, tr.Len())
	}
}

func TestNewTreeIsEmpty(t *testing.T) {
	tr := New(store.New())
	if tr.Len() != 0 {
		t.Errorf("Len = %d, want 0", tr.Len())
	}
	if _, _, ok := tr.Lookup(0); ok {
		t.Error("Lookup(0) on empty tree should fail")
	}
	checkPartition(t, tr)
}

func TestFromBufferSinglePiece(t *testing.T) {
	tr := newTree(t, "hello world")
	if tr.PieceCount() != 1 {
		t.Errorf("PieceCount = %d, want 1", tr.PieceCount())
	}
	if got := content(t, tr); got != "hello world" {
		t.Errorf("content = %q", got)
	}
	checkPartition(t, tr)
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name   string
		init   string
		offset int
		text   string
		want   string
	}{
		{"start", "world", 0, "hello ", "hello world"},
		{"middle", "helloworld", 5, ", ", "hello, world"},
		{"end", "hello", 5, " world", "hello world"},
		{"empty doc", "", 0, "abc", "abc"},
		{"empty text", "abc", 1, "", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTree(t, tt.init)
			if err := tr.Insert(tt.offset, []byte(tt.text)); err != nil {
				t.Fatalf("Insert: %v", err)
			}
			if got := content(t, tr); got != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
			checkPartition(t, tr)
		})
	}
}

func TestInsertOutOfRange(t *testing.T) {
	tr := newTree(t, "abc")
	if err := tr.Insert(4, []byte("x")); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Insert past end: got %v, want ErrOutOfRange", err)
	}
	if err := tr.Insert(-1, []byte("x")); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Insert before start: got %v, want ErrOutOfRange", err)
	}
	if got := content(t, tr); got != "abc" {
		t.Errorf("failed insert modified content: %q", got)
	}
}

func TestInsertAtPieceBoundaryPrecedesExisting(t *testing.T) {
	tr := newTree(t, "abcdef")
	// Split into pieces "abc" | "X" | "def".
	if err := tr.Insert(3, []byte("X")); err != nil {
		t.Fatal(err)
	}
	// Offset 4 is the boundary between "X" and "def".
	if err := tr.Insert(4, []byte("Y")); err != nil {
		t.Fatal(err)
	}
	if got := content(t, tr); got != "abcXYdef" {
		t.Fatalf("content = %q, want %q", got, "abcXYdef")
	}

	// The byte previously at offset 4 ('d') now sits after the new piece.
	p, inner, ok := tr.Lookup(4)
	if !ok || inner != 0 {
		t.Fatalf("Lookup(4) = %+v, %d, %v", p, inner, ok)
	}
	data, _ := tr.Store().Data(p.Buffer)
	if data[p.Start] != 'Y' {
		t.Errorf("byte at 4 = %q, want 'Y'", data[p.Start])
	}
	if b, _ := tr.Bytes(5, 6); string(b) != "d" {
		t.Errorf("byte at 5 = %q, want \"d\"", b)
	}

	// Inserting at offset 0 and at Len() also keeps order stable.
	_ = tr.Insert(0, []byte("<"))
	_ = tr.Insert(tr.Len(), []byte(">"))
	if got := content(t, tr); got != "<abcXYdef>" {
		t.Errorf("content = %q", got)
	}
	checkPartition(t, tr)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name       string
		init       string
		start, end int
		want       string
	}{
		{"prefix", "hello world", 0, 6, "world"},
		{"suffix", "hello world", 5, 11, "hello"},
		{"inside piece", "hello world", 2, 4, "heo world"},
		{"all", "hello", 0, 5, ""},
		{"empty range", "hello", 2, 2, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTree(t, tt.init)
			if err := tr.Delete(tt.start, tt.end); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if got := content(t, tr); got != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
			checkPartition(t, tr)
		})
	}
}

func TestDeleteAcrossPieces(t *testing.T) {
	tr := newTree(t, "0123456789")
	_ = tr.Insert(3, []byte("abc"))
	_ = tr.Insert(8, []byte("XYZ"))
	// "012abc34XYZ56789"
	if err := tr.Delete(2, 13); err != nil {
		t.Fatal(err)
	}
	if got := content(t, tr); got != "01789" {
		t.Errorf("content = %q, want %q", got, "01789")
	}
	checkPartition(t, tr)
}

func TestDeleteOutOfRange(t *testing.T) {
	tr := newTree(t, "abc")
	for _, r := range [][2]int{{2, 1}, {0, 4}, {-1, 2}} {
		if err := tr.Delete(r[0], r[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Delete(%d,%d): got %v, want ErrOutOfRange", r[0], r[1], err)
		}
	}
}

func TestLookup(t *testing.T) {
	tr := newTree(t, "abcdef")
	_ = tr.Insert(3, []byte("XY"))
	// "abcXYdef": pieces "abc"(0) "XY"(3) "def"(5)

	tests := []struct {
		offset    int
		docOffset int
		inner     int
	}{
		{0, 0, 0},
		{2, 0, 2},
		{3, 3, 0},
		{4, 3, 1},
		{5, 5, 0},
		{7, 5, 2},
	}
	for _, tt := range tests {
		p, inner, ok := tr.Lookup(tt.offset)
		if !ok {
			t.Fatalf("Lookup(%d) failed", tt.offset)
		}
		if p.DocOffset != tt.docOffset || inner != tt.inner {
			t.Errorf("Lookup(%d) = doc %d inner %d; want doc %d inner %d",
				tt.offset, p.DocOffset, inner, tt.docOffset, tt.inner)
		}
	}
	if _, _, ok := tr.Lookup(8); ok {
		t.Error("Lookup(Len()) should fail")
	}
}

func TestManyInsertsStayBalanced(t *testing.T) {
	tr := newTree(t, "")
	var want strings.Builder
	for i := 0; i < 2000; i++ {
		_ = tr.Insert(tr.Len(), []byte{byte('a' + i%26)})
		want.WriteByte(byte('a' + i%26))
	}
	if got := content(t, tr); got != want.String() {
		t.Fatal("content mismatch after appends")
	}
	checkPartition(t, tr)
	// 2000 pieces with fanout >= 4 must fit in a shallow tree.
	if h := tr.Height(); h > 8 {
		t.Errorf("Height = %d, tree is not balanced", h)
	}
}

func TestRandomEditsPreservePartition(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tr := newTree(t, "The quick brown fox\njumps over\nthe lazy dog\n")
	model := []byte(content(t, tr))

	for step := 0; step < 1500; step++ {
		if rng.Intn(3) > 0 || len(model) == 0 {
			off := rng.Intn(len(model) + 1)
			text := []byte(strings.Repeat(string(rune('a'+rng.Intn(26))), 1+rng.Intn(4)))
			if rng.Intn(5) == 0 {
				text = append(text, '\n')
			}
			if err := tr.Insert(off, text); err != nil {
				t.Fatal(err)
			}
			model = append(model[:off], append(text, model[off:]...)...)
		} else {
			start := rng.Intn(len(model))
			end := start + rng.Intn(min(len(model)-start, 12)+1)
			if err := tr.Delete(start, end); err != nil {
				t.Fatal(err)
			}
			model = append(model[:start], model[end:]...)
		}
		if step%50 == 0 {
			checkPartition(t, tr)
			if got := content(t, tr); got != string(model) {
				t.Fatalf("step %d: content mismatch", step)
			}
		}
	}
	checkPartition(t, tr)
	if got := content(t, tr); got != string(model) {
		t.Fatal("final content mismatch")
	}
}

func TestCompact(t *testing.T) {
	tr := newTree(t, "")
	for _, s := range []string{"ab", "cd", "ef"} {
		_ = tr.Insert(tr.Len(), []byte(s))
	}
	if tr.PieceCount() != 3 {
		t.Fatalf("PieceCount = %d, want 3", tr.PieceCount())
	}
	gen := tr.Generation()

	tr.Compact()

	if tr.PieceCount() != 1 {
		t.Errorf("PieceCount after Compact = %d, want 1", tr.PieceCount())
	}
	if got := content(t, tr); got != "abcdef" {
		t.Errorf("content = %q", got)
	}
	if tr.Generation() == gen {
		t.Error("Compact should bump the generation")
	}
	checkPartition(t, tr)
}

func TestCompactKeepsNonContiguousPieces(t *testing.T) {
	tr := newTree(t, "abcdef")
	_ = tr.Insert(3, []byte("X"))
	tr.Compact()

	var got []int
	for _, p := range tr.All() {
		got = append(got, p.Length)
	}
	if diff := cmp.Diff([]int{3, 1, 3}, got); diff != "" {
		t.Errorf("piece lengths (-want +got):\n%s", diff)
	}
}
