package textbuf

import (
	"errors"

	"github.com/dshills/piecetext/internal/engine/piecetree"
)

// Errors returned by buffer operations.
var (
	// ErrOutOfRange indicates an offset or range outside the document.
	ErrOutOfRange = piecetree.ErrOutOfRange

	// ErrIO indicates the backing storage could not be read or written.
	// The underlying error is wrapped alongside it.
	ErrIO = errors.New("storage i/o failed")

	// ErrNoStorage indicates Save on a buffer that is not bound to a file.
	ErrNoStorage = errors.New("buffer has no backing file")
)
