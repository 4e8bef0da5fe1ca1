package piecetree

// iterFrame is a position in the tree traversal.
type iterFrame struct {
	node *node
	idx  int // child index for internal nodes, next piece index for leaves
}

// Iterator yields the pieces intersecting a document range, in order.
// Pieces are not clipped; use Piece.Clip with the requested range.
//
// An Iterator is single-pass and becomes stale when the tree is mutated:
// Next then returns false and Err returns ErrStaleIterator.
type Iterator struct {
	tree  *Tree
	gen   uint64
	stack []iterFrame
	pos   int // document offset of the next piece
	end   int
	piece Piece
	err   error
	done  bool
}

// Pieces returns an iterator over the pieces intersecting [start, end).
// The range is clamped to the document.
func (t *Tree) Pieces(start, end int) *Iterator {
	it := &Iterator{
		tree:  t,
		gen:   t.gen,
		stack: make([]iterFrame, 0, t.Height()),
		end:   min(end, t.Len()),
	}
	start = max(start, 0)
	if start >= it.end {
		it.done = true
		return it
	}

	n := t.root
	offset := start
	base := 0
	for !n.isLeaf() {
		idx, childOffset := n.findChild(offset)
		base += offset - childOffset
		offset = childOffset
		it.stack = append(it.stack, iterFrame{node: n, idx: idx})
		n = n.children[idx]
	}
	i, inner := n.findPiece(offset)
	it.stack = append(it.stack, iterFrame{node: n, idx: i})
	it.pos = base + offset - inner
	return it
}

// Next advances to the next piece.
// Returns true if there is a piece, false if iteration is complete.
func (it *Iterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if it.gen != it.tree.gen {
		it.err = ErrStaleIterator
		return false
	}
	if it.pos >= it.end {
		it.done = true
		return false
	}

	leaf := &it.stack[len(it.stack)-1]
	for leaf.idx >= len(leaf.node.pieces) {
		if !it.nextLeaf() {
			it.done = true
			return false
		}
		leaf = &it.stack[len(it.stack)-1]
	}

	p := leaf.node.pieces[leaf.idx]
	p.DocOffset = it.pos
	leaf.idx++
	it.pos += p.Length
	it.piece = p
	return true
}

// nextLeaf moves the stack to the first piece of the following leaf.
func (it *Iterator) nextLeaf() bool {
	it.stack = it.stack[:len(it.stack)-1]
	for len(it.stack) > 0 {
		parent := &it.stack[len(it.stack)-1]
		parent.idx++
		if parent.idx < len(parent.node.children) {
			n := parent.node.children[parent.idx]
			for !n.isLeaf() {
				it.stack = append(it.stack, iterFrame{node: n})
				n = n.children[0]
			}
			it.stack = append(it.stack, iterFrame{node: n})
			return true
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
	return false
}

// Piece returns the current piece with DocOffset set.
func (it *Iterator) Piece() Piece {
	return it.piece
}

// Err returns ErrStaleIterator if the tree changed during iteration.
func (it *Iterator) Err() error {
	return it.err
}
