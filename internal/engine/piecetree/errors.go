package piecetree

import "errors"

// Errors returned by piece tree operations.
var (
	// ErrOutOfRange indicates an offset or range outside the document.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrStaleIterator indicates an iterator was used after the tree changed.
	ErrStaleIterator = errors.New("iterator invalidated by edit")
)
