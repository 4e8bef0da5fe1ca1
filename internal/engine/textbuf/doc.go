// Package textbuf provides the document-level text buffer used by editing
// commands.
//
// A TextBuffer composes a piece tree over a buffer store with the encoding
// the document was loaded in and a modification flag. Text inside the
// buffer is always UTF-8; the original encoding, including its byte order
// mark, is applied again when the buffer is serialized.
//
// Basic usage:
//
//	buf, enc := textbuf.FromBytes(data)
//	_ = buf.Insert(buf.Len(), "more\n")
//	pos, ok := buf.OffsetToPosition(3)   // ok is false without line metadata
//	out, report, err := buf.Bytes()      // encoded back to enc
//
// Buffers bound to a file with Open can be written back with Save:
//
//	buf, err := textbuf.Open(vfs.NewOSFS(), "notes.txt")
//	if err != nil {
//	    return err
//	}
//	defer buf.Close()
//	_ = buf.Insert(0, "# ")
//	err = buf.Save(ctx)
//
// # Line metadata
//
// Line positions are exact only where every piece before an offset carries
// line metadata. Files at or above the large-file threshold are stored
// without it, so OffsetToPosition reports ok == false for offsets in (or
// after) such a region. Callers must handle that case; the lineiter package
// falls back to estimation.
//
// All methods are safe for concurrent use.
package textbuf
