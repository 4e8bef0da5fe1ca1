package store

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadComputesLineStarts(t *testing.T) {
	s := New()
	id := s.Load([]byte("Hello\nWorld!!\n"))

	got := s.LineStarts(id)
	want := []int{0, 6, 14}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LineStarts mismatch (-want +got):\n%s", diff)
	}

	data, ok := s.Data(id)
	if !ok {
		t.Fatal("loaded buffer should expose data")
	}
	if string(data) != "Hello\nWorld!!\n" {
		t.Errorf("Data = %q", data)
	}
}

func TestLoadAboveThresholdHasNoLineStarts(t *testing.T) {
	s := New(WithLargeFileThreshold(8))

	small := s.Load([]byte("a\nb\n"))
	large := s.Load([]byte("0123456789\n"))
	exact := s.Load([]byte("01234567"))

	if s.LineStarts(small) == nil {
		t.Error("buffer below threshold should have line starts")
	}
	if s.LineStarts(large) != nil {
		t.Error("buffer above threshold should not have line starts")
	}
	if s.LineStarts(exact) != nil {
		t.Error("buffer at threshold should not have line starts")
	}
}

func TestEmptyBufferLineStarts(t *testing.T) {
	s := New()
	id := s.Load(nil)
	if diff := cmp.Diff([]int{0}, s.LineStarts(id)); diff != "" {
		t.Errorf("empty buffer line starts (-want +got):\n%s", diff)
	}
}

func TestAppendToAddBuffer(t *testing.T) {
	s := New()
	orig := s.Load([]byte("abc"))

	if s.AddBufferID() != NoBuffer {
		t.Fatal("add buffer should not exist before first append")
	}

	id1, off1 := s.AppendToAddBuffer([]byte("x\ny"))
	id2, off2 := s.AppendToAddBuffer([]byte("z\n"))

	if id1 != id2 {
		t.Errorf("appends went to different buffers: %d, %d", id1, id2)
	}
	if id1 == orig {
		t.Error("add buffer must differ from the original buffer")
	}
	if off1 != 0 || off2 != 3 {
		t.Errorf("offsets = %d, %d; want 0, 3", off1, off2)
	}

	data, ok := s.Data(id1)
	if !ok || string(data) != "x\nyz\n" {
		t.Errorf("add buffer data = %q, ok=%v", data, ok)
	}
	if diff := cmp.Diff([]int{0, 2, 5}, s.LineStarts(id1)); diff != "" {
		t.Errorf("add buffer line starts (-want +got):\n%s", diff)
	}
}

func TestAddBufferKeepsLineStartsAboveThreshold(t *testing.T) {
	s := New(WithLargeFileThreshold(4))
	id, _ := s.AppendToAddBuffer([]byte("one\ntwo\nthree\n"))
	if s.LineStarts(id) == nil {
		t.Error("add buffer should always keep line metadata")
	}
}

func TestCountLineFeeds(t *testing.T) {
	s := New()
	id := s.Load([]byte("a\nbb\n\nccc"))

	tests := []struct {
		start, end int
		want       int
	}{
		{0, 0, 0},
		{0, 1, 0},
		{0, 2, 1},
		{1, 2, 1},
		{2, 5, 1},
		{2, 6, 2},
		{0, 9, 3},
		{6, 9, 0},
	}
	for _, tt := range tests {
		got, ok := s.CountLineFeeds(id, tt.start, tt.end)
		if !ok {
			t.Fatalf("CountLineFeeds(%d,%d) not ok", tt.start, tt.end)
		}
		if got != tt.want {
			t.Errorf("CountLineFeeds(%d,%d) = %d, want %d", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestNthLineFeed(t *testing.T) {
	s := New()
	id := s.Load([]byte("a\nbb\n\nccc"))

	tests := []struct {
		start, n int
		want     int
		ok       bool
	}{
		{0, 1, 2, true},
		{0, 2, 5, true},
		{0, 3, 6, true},
		{0, 4, 0, false},
		{2, 1, 5, true},
		{5, 1, 6, true},
		{6, 1, 0, false},
	}
	for _, tt := range tests {
		got, ok := s.NthLineFeed(id, tt.start, tt.n)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("NthLineFeed(%d,%d) = %d,%v; want %d,%v", tt.start, tt.n, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDeferredBuffer(t *testing.T) {
	content := []byte("line one\nline two\n")
	s := New()
	id := s.LoadDeferred(bytes.NewReader(content), len(content))

	if _, ok := s.Data(id); ok {
		t.Error("unloaded buffer should not expose data")
	}
	b, err := s.Buffer(id)
	if err != nil {
		t.Fatal(err)
	}
	if b.State() != Unloaded || b.Len() != len(content) {
		t.Errorf("state=%v len=%d", b.State(), b.Len())
	}

	got, err := s.ReadRange(id, 5, 3)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if string(got) != "one" {
		t.Errorf("ReadRange = %q, want %q", got, "one")
	}

	if err := s.Materialize(id); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	data, ok := s.Data(id)
	if !ok || !bytes.Equal(data, content) {
		t.Errorf("materialized data = %q, ok=%v", data, ok)
	}
	if s.LineStarts(id) == nil {
		t.Error("small materialized buffer should have line starts")
	}
}

func TestReadRangeErrors(t *testing.T) {
	s := New()
	id := s.Load([]byte("abc"))

	if _, err := s.ReadRange(id, 2, 5); !errors.Is(err, ErrRange) {
		t.Errorf("expected ErrRange, got %v", err)
	}
	if _, err := s.ReadRange(BufferID(42), 0, 1); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("expected ErrUnknownBuffer, got %v", err)
	}
}
