package piecetree

import "github.com/dshills/piecetext/internal/engine/store"

// UnknownLineFeeds marks a piece whose buffer has no line metadata.
const UnknownLineFeeds = -1

// Piece is a contiguous run of bytes from one buffer that forms part of the
// document.
//
// DocOffset is only meaningful on pieces returned by the tree (Lookup,
// iterators, All); it is computed from the piece's position and is not
// stored in the tree.
type Piece struct {
	Buffer    store.BufferID
	Start     int // offset within the buffer
	Length    int
	LineFeeds int // number of '\n' bytes, or UnknownLineFeeds
	DocOffset int
}

// End returns the buffer offset just past the piece.
func (p Piece) End() int {
	return p.Start + p.Length
}

// DocEnd returns the document offset just past the piece.
func (p Piece) DocEnd() int {
	return p.DocOffset + p.Length
}

// HasLineFeeds reports whether the piece's newline count is known.
func (p Piece) HasLineFeeds() bool {
	return p.LineFeeds != UnknownLineFeeds
}

// Clip returns the buffer range of the part of p that overlaps the document
// range [start, end). n is 0 if they do not overlap.
func (p Piece) Clip(start, end int) (bufOff, n int) {
	lo := max(start, p.DocOffset)
	hi := min(end, p.DocEnd())
	if lo >= hi {
		return p.Start, 0
	}
	return p.Start + (lo - p.DocOffset), hi - lo
}

// Summary holds aggregated metrics for a run of pieces.
type Summary struct {
	// Bytes is the total length.
	Bytes int

	// LineFeeds is the number of '\n' bytes in pieces with known counts.
	LineFeeds int

	// Unknown is the number of pieces without line metadata.
	Unknown int

	// Pieces is the number of pieces.
	Pieces int
}

// Add combines two summaries.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Bytes:     s.Bytes + other.Bytes,
		LineFeeds: s.LineFeeds + other.LineFeeds,
		Unknown:   s.Unknown + other.Unknown,
		Pieces:    s.Pieces + other.Pieces,
	}
}

// Exact reports whether every piece in the run has line metadata.
func (s Summary) Exact() bool {
	return s.Unknown == 0
}

// summaryOf returns the summary of a single piece.
func summaryOf(p Piece) Summary {
	s := Summary{Bytes: p.Length, Pieces: 1}
	if p.HasLineFeeds() {
		s.LineFeeds = p.LineFeeds
	} else {
		s.Unknown = 1
	}
	return s
}

// newPiece builds a piece over buffer id, filling in its newline count from
// the store's line metadata when the buffer has any.
func newPiece(s *store.Store, id store.BufferID, start, length int) Piece {
	p := Piece{Buffer: id, Start: start, Length: length, LineFeeds: UnknownLineFeeds}
	if n, ok := s.CountLineFeeds(id, start, start+length); ok {
		p.LineFeeds = n
	}
	return p
}
