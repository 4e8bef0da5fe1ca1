// Package store owns the raw byte buffers that back a document.
//
// A Store holds one buffer per source: the original file contents and a
// single append-only "add" buffer that accumulates every inserted byte.
// Buffers are addressed by BufferID; the piece tree only ever holds ids,
// never slices, so the store is the single owner of all document bytes.
//
// Each buffer is in one of two states:
//
//   - Unloaded: the length is known but the bytes live in an io.ReaderAt
//     and are read on demand. Used for very large original files.
//   - Loaded: the bytes are in memory, optionally paired with exact
//     line-start offsets when the buffer is below the large-file threshold.
//
// Basic usage:
//
//	s := store.New(store.WithLargeFileThreshold(1 << 20))
//	orig := s.Load(data)
//	id, off := s.AppendToAddBuffer([]byte("inserted"))
//	b, _ := s.Data(orig)
//
// A Store is not safe for concurrent mutation; the text buffer that owns it
// serialises access.
package store
