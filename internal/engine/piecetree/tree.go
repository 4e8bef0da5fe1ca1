package piecetree

import (
	"fmt"

	"github.com/dshills/piecetext/internal/engine/store"
)

// Tree is an ordered collection of pieces whose concatenation is the
// document. It is not safe for concurrent mutation.
type Tree struct {
	root  *node
	store *store.Store
	gen   uint64
}

// New creates an empty tree over s.
func New(s *store.Store) *Tree {
	return &Tree{root: newLeaf(nil), store: s}
}

// FromBuffer creates a tree with a single piece spanning buffer id.
func FromBuffer(s *store.Store, id store.BufferID) *Tree {
	t := New(s)
	b, err := s.Buffer(id)
	if err != nil || b.Len() == 0 {
		return t
	}
	t.root = newLeaf([]Piece{newPiece(s, id, 0, b.Len())})
	return t
}

// Store returns the store the tree's pieces refer to.
func (t *Tree) Store() *store.Store {
	return t.store
}

// Len returns the document length in bytes.
func (t *Tree) Len() int {
	return t.root.summary.Bytes
}

// Summary returns the aggregated metrics for the whole document.
func (t *Tree) Summary() Summary {
	return t.root.summary
}

// Exact reports whether every piece has line metadata.
func (t *Tree) Exact() bool {
	return t.root.summary.Exact()
}

// PieceCount returns the number of pieces.
func (t *Tree) PieceCount() int {
	return t.root.summary.Pieces
}

// Height returns the number of levels in the tree.
func (t *Tree) Height() int {
	return int(t.root.height) + 1
}

// Generation returns a counter that changes on every mutation.
func (t *Tree) Generation() uint64 {
	return t.gen
}

// Insert appends data to the store's add buffer and inserts a piece for it
// at offset. Content previously at offset follows the new bytes.
func (t *Tree) Insert(offset int, data []byte) error {
	if offset < 0 || offset > t.Len() {
		return fmt.Errorf("%w: insert at %d, length %d", ErrOutOfRange, offset, t.Len())
	}
	if len(data) == 0 {
		return nil
	}
	id, off := t.store.AppendToAddBuffer(data)
	t.insertPiece(offset, newPiece(t.store, id, off, len(data)))
	return nil
}

// InsertPiece inserts a piece referring to existing bytes of buffer id.
func (t *Tree) InsertPiece(offset int, id store.BufferID, start, length int) error {
	if offset < 0 || offset > t.Len() {
		return fmt.Errorf("%w: insert at %d, length %d", ErrOutOfRange, offset, t.Len())
	}
	b, err := t.store.Buffer(id)
	if err != nil {
		return err
	}
	if start < 0 || length < 0 || start+length > b.Len() {
		return fmt.Errorf("%w: buffer range [%d,%d) of %d", ErrOutOfRange, start, start+length, b.Len())
	}
	if length == 0 {
		return nil
	}
	t.insertPiece(offset, newPiece(t.store, id, start, length))
	return nil
}

func (t *Tree) insertPiece(offset int, p Piece) {
	t.setRoot(t.insert(t.root, offset, p))
	t.gen++
}

// insert places p at offset within n and returns n's replacement siblings.
func (t *Tree) insert(n *node, offset int, p Piece) []*node {
	if n.isLeaf() {
		i, inner := n.findPiece(offset)
		pieces := make([]Piece, 0, len(n.pieces)+2)
		pieces = append(pieces, n.pieces[:i]...)
		if inner == 0 {
			pieces = append(pieces, p)
			pieces = append(pieces, n.pieces[i:]...)
		} else {
			left, right := t.splitPiece(n.pieces[i], inner)
			pieces = append(pieces, left, p, right)
			pieces = append(pieces, n.pieces[i+1:]...)
		}
		n.pieces = pieces
		return n.finish()
	}

	idx, childOffset := n.findChild(offset)
	n.spliceChild(idx, t.insert(n.children[idx], childOffset, p))
	return n.finish()
}

// splitPiece splits p at inner bytes from its start.
func (t *Tree) splitPiece(p Piece, inner int) (Piece, Piece) {
	left := newPiece(t.store, p.Buffer, p.Start, inner)
	right := newPiece(t.store, p.Buffer, p.Start+inner, p.Length-inner)
	return left, right
}

// Delete removes the bytes in [start, end).
func (t *Tree) Delete(start, end int) error {
	if start < 0 || start > end || end > t.Len() {
		return fmt.Errorf("%w: delete [%d,%d), length %d", ErrOutOfRange, start, end, t.Len())
	}
	if start == end {
		return nil
	}
	t.setRoot(t.delete(t.root, start, end))
	t.gen++
	return nil
}

// delete removes [start, end) relative to n and returns n's replacement
// siblings.
func (t *Tree) delete(n *node, start, end int) []*node {
	if n.isLeaf() {
		pieces := make([]Piece, 0, len(n.pieces)+1)
		cur := 0
		for _, p := range n.pieces {
			ps, pe := cur, cur+p.Length
			cur = pe
			if pe <= start || ps >= end {
				pieces = append(pieces, p)
				continue
			}
			if ps < start {
				pieces = append(pieces, newPiece(t.store, p.Buffer, p.Start, start-ps))
			}
			if pe > end {
				skip := end - ps
				pieces = append(pieces, newPiece(t.store, p.Buffer, p.Start+skip, p.Length-skip))
			}
		}
		n.pieces = pieces
		return n.finish()
	}

	children := make([]*node, 0, len(n.children)+1)
	cur := 0
	for i, child := range n.children {
		cs, ce := cur, cur+n.childSummaries[i].Bytes
		cur = ce
		if ce <= start || cs >= end {
			children = append(children, child)
			continue
		}
		children = append(children, t.delete(child, max(start, cs)-cs, min(end, ce)-cs)...)
	}
	n.children = children
	n.rebalance()
	return n.finish()
}

// setRoot installs the replacement siblings of the old root.
func (t *Tree) setRoot(nodes []*node) {
	switch len(nodes) {
	case 0:
		t.root = newLeaf(nil)
		return
	case 1:
		t.root = nodes[0]
	default:
		t.root = newInternal(nodes)
	}
	for !t.root.isLeaf() && len(t.root.children) == 1 {
		t.root = t.root.children[0]
	}
}

// Lookup returns the piece containing offset and the offset within it.
// ok is false if offset is outside [0, Len()).
func (t *Tree) Lookup(offset int) (p Piece, inner int, ok bool) {
	if offset < 0 || offset >= t.Len() {
		return Piece{}, 0, false
	}
	n := t.root
	base := 0
	for !n.isLeaf() {
		idx, childOffset := n.findChild(offset)
		base += offset - childOffset
		offset = childOffset
		n = n.children[idx]
	}
	i, inner := n.findPiece(offset)
	p = n.pieces[i]
	p.DocOffset = base + offset - inner
	return p, inner, true
}

// All returns every piece in document order with DocOffset set.
func (t *Tree) All() []Piece {
	pieces := t.root.collect(make([]Piece, 0, t.PieceCount()))
	off := 0
	for i := range pieces {
		pieces[i].DocOffset = off
		off += pieces[i].Length
	}
	return pieces
}

// Bytes returns a copy of the document bytes in [start, end).
func (t *Tree) Bytes(start, end int) ([]byte, error) {
	if start < 0 || start > end || end > t.Len() {
		return nil, fmt.Errorf("%w: read [%d,%d), length %d", ErrOutOfRange, start, end, t.Len())
	}
	out := make([]byte, 0, end-start)
	it := t.Pieces(start, end)
	for it.Next() {
		off, n := it.Piece().Clip(start, end)
		data, err := t.store.ReadRange(it.Piece().Buffer, off, n)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Compact merges adjacent pieces that are contiguous in the same buffer and
// rebuilds a balanced tree. Document content is unchanged; iterators are
// invalidated.
func (t *Tree) Compact() {
	pieces := t.root.collect(nil)
	merged := pieces[:0]
	for _, p := range pieces {
		if k := len(merged) - 1; k >= 0 && merged[k].Buffer == p.Buffer && merged[k].End() == p.Start {
			prev := merged[k]
			prev.Length += p.Length
			if prev.HasLineFeeds() && p.HasLineFeeds() {
				prev.LineFeeds += p.LineFeeds
			} else {
				prev.LineFeeds = UnknownLineFeeds
			}
			merged[k] = prev
			continue
		}
		merged = append(merged, p)
	}
	t.root = buildFromPieces(merged)
	t.gen++
}
