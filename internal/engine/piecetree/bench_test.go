package piecetree

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/dshills/piecetext/internal/engine/store"
)

// generateText creates text of the given size made of short words and
// lines of roughly 60 bytes.
func generateText(size int) string {
	var sb strings.Builder
	sb.Grow(size)

	words := []string{"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog", "hello", "world"}
	lineLen := 0

	for sb.Len() < size {
		word := words[rand.Intn(len(words))]
		if sb.Len()+len(word)+1 > size {
			break
		}
		if sb.Len() > 0 {
			if lineLen > 60 {
				sb.WriteByte('\n')
				lineLen = 0
			} else {
				sb.WriteByte(' ')
				lineLen++
			}
		}
		sb.WriteString(word)
		lineLen += len(word)
	}

	return sb.String()
}

func benchTree(text string) *Tree {
	st := store.New()
	return FromBuffer(st, st.Load([]byte(text)))
}

// fragmented returns a tree over text split into roughly n pieces by
// alternating inserts and deletes.
func fragmented(text string, n int) *Tree {
	tr := benchTree(text)
	size := len(text)
	for i := 0; i < n/2; i++ {
		off := rand.Intn(size)
		_ = tr.Insert(off, []byte("x"))
		_ = tr.Delete(off, off+1)
	}
	return tr
}

var benchSizes = []int{1000, 10000, 100000, 1000000}

func BenchmarkInsertStart(b *testing.B) {
	for _, size := range benchSizes {
		tr := benchTree(generateText(size))
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = tr.Insert(0, []byte("x"))
			}
		})
	}
}

func BenchmarkInsertRandom(b *testing.B) {
	for _, size := range benchSizes {
		tr := benchTree(generateText(size))
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = tr.Insert(rand.Intn(tr.Len()+1), []byte("x"))
			}
		})
	}
}

func BenchmarkDeleteMiddle(b *testing.B) {
	for _, size := range benchSizes {
		text := generateText(size)
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			tr := benchTree(text)
			for i := 0; i < b.N; i++ {
				if tr.Len() < 2 {
					b.StopTimer()
					tr = benchTree(text)
					b.StartTimer()
				}
				mid := tr.Len() / 2
				_ = tr.Delete(mid, mid+1)
			}
		})
	}
}

func BenchmarkLookup(b *testing.B) {
	for _, pieces := range []int{1, 100, 10000} {
		text := generateText(100000)
		tr := fragmented(text, pieces)
		b.Run(fmt.Sprintf("pieces=%d", tr.PieceCount()), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _, _ = tr.Lookup(rand.Intn(tr.Len()))
			}
		})
	}
}

func BenchmarkLineStart(b *testing.B) {
	text := generateText(1000000)
	tr := fragmented(text, 1000)
	lines, _ := tr.LineCount()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tr.LineStart(rand.Intn(lines))
	}
}

func BenchmarkOffsetToLine(b *testing.B) {
	text := generateText(1000000)
	tr := fragmented(text, 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = tr.OffsetToLine(rand.Intn(tr.Len()))
	}
}

func BenchmarkPieces(b *testing.B) {
	text := generateText(1000000)
	tr := fragmented(text, 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it := tr.Pieces(0, tr.Len())
		for it.Next() {
		}
	}
}

func BenchmarkCompact(b *testing.B) {
	text := generateText(100000)
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		tr := fragmented(text, 1000)
		b.StartTimer()
		tr.Compact()
	}
}
