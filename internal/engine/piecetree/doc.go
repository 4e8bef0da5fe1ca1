// Package piecetree implements a balanced piece table over a store.Store.
//
// A piece is a reference (buffer, offset, length) into one of the store's
// buffers. The tree keeps pieces in document order in a B+ tree whose
// internal nodes carry aggregated summaries (byte count, newline count and
// the number of pieces without line metadata), so that byte-offset lookup,
// insert and delete are O(log n) in the number of pieces.
//
// Basic usage:
//
//	s := store.New()
//	t := piecetree.FromBuffer(s, s.Load([]byte("hello world")))
//	_ = t.Insert(5, []byte(","))   // "hello, world"
//	_ = t.Delete(0, 7)             // "world"
//	it := t.Pieces(0, t.Len())
//	for it.Next() {
//	    p := it.Piece()
//	    // p.DocOffset, p.Buffer, p.Start, p.Length
//	}
//
// Line navigation (LineStart, LineRange, OffsetToLine) is exact and only
// available over pieces whose buffers carry line metadata; over other
// regions those calls report ok == false rather than guessing.
//
// Every mutation bumps the tree generation. Iterators created before a
// mutation stop with ErrStaleIterator.
package piecetree
