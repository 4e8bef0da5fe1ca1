package piecetree

// Tree shape constants.
const (
	// MinChildren is the fill below which adjacent siblings are merged.
	MinChildren = 4

	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MaxPiecesPerLeaf is the maximum pieces in a leaf node.
	MaxPiecesPerLeaf = 8
)

// node is a node of the B+ tree.
// Leaf nodes (height == 0) hold pieces; internal nodes hold children.
// All leaves are at the same depth.
type node struct {
	height  uint8
	summary Summary

	// Internal node fields (height > 0)
	children       []*node
	childSummaries []Summary

	// Leaf node fields (height == 0)
	pieces []Piece
}

func newLeaf(pieces []Piece) *node {
	n := &node{pieces: pieces}
	n.recomputeSummary()
	return n
}

func newInternal(children []*node) *node {
	n := &node{
		height:   children[0].height + 1,
		children: children,
	}
	n.recomputeSummary()
	return n
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

// size is the number of direct entries: pieces for a leaf, children otherwise.
func (n *node) size() int {
	if n.isLeaf() {
		return len(n.pieces)
	}
	return len(n.children)
}

// recomputeSummary recalculates the summary from pieces or children.
func (n *node) recomputeSummary() {
	var sum Summary
	if n.isLeaf() {
		for _, p := range n.pieces {
			sum = sum.Add(summaryOf(p))
		}
	} else {
		if cap(n.childSummaries) < len(n.children) {
			n.childSummaries = make([]Summary, len(n.children))
		}
		n.childSummaries = n.childSummaries[:len(n.children)]
		for i, child := range n.children {
			n.childSummaries[i] = child.summary
			sum = sum.Add(child.summary)
		}
	}
	n.summary = sum
}

// findChild returns the index of the child containing offset and the
// offset relative to that child. An offset equal to the node length maps
// to the end of the last child.
func (n *node) findChild(offset int) (int, int) {
	cur := 0
	for i, s := range n.childSummaries {
		if offset < cur+s.Bytes {
			return i, offset - cur
		}
		cur += s.Bytes
	}
	last := len(n.children) - 1
	return last, offset - (cur - n.childSummaries[last].Bytes)
}

// findPiece returns the index of the leaf piece containing offset and the
// offset within it. An offset equal to the leaf length returns
// (len(pieces), 0).
func (n *node) findPiece(offset int) (int, int) {
	cur := 0
	for i, p := range n.pieces {
		if offset < cur+p.Length {
			return i, offset - cur
		}
		cur += p.Length
	}
	return len(n.pieces), 0
}

// splitNode splits an overfull node into two halves of the same height.
func (n *node) splitNode() []*node {
	if n.isLeaf() {
		h := len(n.pieces) / 2
		left := append([]Piece(nil), n.pieces[:h]...)
		right := append([]Piece(nil), n.pieces[h:]...)
		return []*node{newLeaf(left), newLeaf(right)}
	}
	h := len(n.children) / 2
	left := append([]*node(nil), n.children[:h]...)
	right := append([]*node(nil), n.children[h:]...)
	return []*node{newInternal(left), newInternal(right)}
}

// spliceChild replaces child idx with repl (zero, one or two nodes).
func (n *node) spliceChild(idx int, repl []*node) {
	children := make([]*node, 0, len(n.children)-1+len(repl))
	children = append(children, n.children[:idx]...)
	children = append(children, repl...)
	children = append(children, n.children[idx+1:]...)
	n.children = children
}

// mergeSiblings merges two nodes of equal height.
func mergeSiblings(a, b *node) *node {
	if a.isLeaf() {
		pieces := make([]Piece, 0, len(a.pieces)+len(b.pieces))
		pieces = append(pieces, a.pieces...)
		pieces = append(pieces, b.pieces...)
		return newLeaf(pieces)
	}
	children := make([]*node, 0, len(a.children)+len(b.children))
	children = append(children, a.children...)
	children = append(children, b.children...)
	return newInternal(children)
}

// rebalance merges adjacent underfull children whose combined size fits in
// one node. It keeps every leaf at the same depth.
func (n *node) rebalance() {
	limit := MaxChildren
	if n.height == 1 {
		limit = MaxPiecesPerLeaf
	}
	for i := 0; i+1 < len(n.children); {
		a, b := n.children[i], n.children[i+1]
		if (a.size() < MinChildren || b.size() < MinChildren) && a.size()+b.size() <= limit {
			n.children[i] = mergeSiblings(a, b)
			n.children = append(n.children[:i+1], n.children[i+2:]...)
			continue
		}
		i++
	}
}

// finish recomputes n's summary and returns its replacement siblings:
// none if it became empty, two if it overflowed, otherwise n itself.
func (n *node) finish() []*node {
	n.recomputeSummary()
	switch {
	case n.size() == 0:
		return nil
	case n.isLeaf() && len(n.pieces) > MaxPiecesPerLeaf:
		return n.splitNode()
	case !n.isLeaf() && len(n.children) > MaxChildren:
		return n.splitNode()
	}
	return []*node{n}
}

// buildFromPieces builds a balanced tree bottom-up from pieces in order.
func buildFromPieces(pieces []Piece) *node {
	if len(pieces) == 0 {
		return newLeaf(nil)
	}

	var nodes []*node
	for i := 0; i < len(pieces); i += MaxPiecesPerLeaf {
		end := min(i+MaxPiecesPerLeaf, len(pieces))
		nodes = append(nodes, newLeaf(append([]Piece(nil), pieces[i:end]...)))
	}

	for len(nodes) > 1 {
		var parents []*node
		for i := 0; i < len(nodes); i += MaxChildren {
			end := min(i+MaxChildren, len(nodes))
			parents = append(parents, newInternal(append([]*node(nil), nodes[i:end]...)))
		}
		nodes = parents
	}
	return nodes[0]
}

// collect appends every piece under n, in order, to dst.
func (n *node) collect(dst []Piece) []Piece {
	if n.isLeaf() {
		return append(dst, n.pieces...)
	}
	for _, child := range n.children {
		dst = child.collect(dst)
	}
	return dst
}
