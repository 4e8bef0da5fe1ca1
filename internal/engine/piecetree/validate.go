package piecetree

import "fmt"

// Validate checks the tree's structural invariants: every leaf at the same
// depth, no empty pieces or non-root nodes, summaries consistent with their
// contents, and pieces within their buffers with correct newline counts.
// It is O(n) and meant for tests and debugging.
func (t *Tree) Validate() error {
	if t.root.size() == 0 && !t.root.isLeaf() {
		return fmt.Errorf("empty internal root")
	}
	_, err := t.validate(t.root, true)
	return err
}

func (t *Tree) validate(n *node, isRoot bool) (Summary, error) {
	if !isRoot && n.size() == 0 {
		return Summary{}, fmt.Errorf("empty non-root node at height %d", n.height)
	}

	var sum Summary
	if n.isLeaf() {
		if len(n.pieces) > MaxPiecesPerLeaf {
			return Summary{}, fmt.Errorf("leaf holds %d pieces", len(n.pieces))
		}
		for _, p := range n.pieces {
			if err := t.validatePiece(p); err != nil {
				return Summary{}, err
			}
			sum = sum.Add(summaryOf(p))
		}
	} else {
		if len(n.children) > MaxChildren {
			return Summary{}, fmt.Errorf("node holds %d children", len(n.children))
		}
		if len(n.childSummaries) != len(n.children) {
			return Summary{}, fmt.Errorf("%d child summaries for %d children", len(n.childSummaries), len(n.children))
		}
		for i, child := range n.children {
			if child.height+1 != n.height {
				return Summary{}, fmt.Errorf("child height %d under height %d", child.height, n.height)
			}
			cs, err := t.validate(child, false)
			if err != nil {
				return Summary{}, err
			}
			if cs != n.childSummaries[i] {
				return Summary{}, fmt.Errorf("stale child summary %+v, want %+v", n.childSummaries[i], cs)
			}
			sum = sum.Add(cs)
		}
	}

	if sum != n.summary {
		return Summary{}, fmt.Errorf("stale summary %+v, want %+v", n.summary, sum)
	}
	return sum, nil
}

func (t *Tree) validatePiece(p Piece) error {
	if p.Length <= 0 {
		return fmt.Errorf("piece with length %d", p.Length)
	}
	b, err := t.store.Buffer(p.Buffer)
	if err != nil {
		return err
	}
	if p.Start < 0 || p.End() > b.Len() {
		return fmt.Errorf("piece [%d,%d) outside buffer %d of length %d", p.Start, p.End(), p.Buffer, b.Len())
	}
	want := UnknownLineFeeds
	if n, ok := t.store.CountLineFeeds(p.Buffer, p.Start, p.End()); ok {
		want = n
	}
	if p.LineFeeds != want {
		return fmt.Errorf("piece [%d,%d) of buffer %d has %d line feeds, want %d", p.Start, p.End(), p.Buffer, p.LineFeeds, want)
	}
	return nil
}
