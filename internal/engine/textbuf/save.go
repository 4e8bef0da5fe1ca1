package textbuf

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/dshills/piecetext/internal/logging"
	"github.com/dshills/piecetext/internal/vfs"
)

// newFilePerm is the mode of files created by Save.
const newFilePerm fs.FileMode = 0o644

// Open loads path from fsys and binds the buffer to it for Save.
//
// Large UTF-8 files are read lazily through fsys.OpenReaderAt; the file
// stays open until Close.
func Open(fsys vfs.VFS, path string, opts ...Option) (*TextBuffer, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrIO, path)
	}

	b := newTextBuffer(opts)
	b.fsys = fsys
	b.path = path

	size := int(info.Size())
	if size < b.threshold {
		data, err := fsys.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		b.load(data, b.encodingFor(data))
		return b, nil
	}

	src, err := fsys.OpenReaderAt(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	lazy, err := b.loadFrom(src, size)
	if err != nil || !lazy {
		_ = src.Close()
	}
	if err != nil {
		return nil, err
	}
	if lazy {
		b.source = src
	}
	return b, nil
}

// Path returns the file the buffer is bound to, or "".
func (b *TextBuffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// Save encodes the document and writes it to the bound file. An existing
// file keeps its mode; a new one is created 0644. On success the modified
// flag is cleared. Characters the encoding cannot represent are replaced
// and logged; they do not fail the save.
//
// ctx is checked before writing. A cancelled save leaves the buffer
// modified.
func (b *TextBuffer) Save(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fsys == nil {
		return ErrNoStorage
	}
	return b.saveLocked(ctx, b.fsys, b.path)
}

// SaveAs writes the document to path in fsys and binds the buffer to it.
func (b *TextBuffer) SaveAs(ctx context.Context, fsys vfs.VFS, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.saveLocked(ctx, fsys, path); err != nil {
		return err
	}
	b.fsys = fsys
	b.path = path
	return nil
}

func (b *TextBuffer) saveLocked(ctx context.Context, fsys vfs.VFS, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, report, err := b.encodeLocked()
	if err != nil {
		b.logger.Error("save failed", logging.FieldPath, path, logging.FieldError, err)
		return err
	}
	if report.Lossy() {
		b.logger.Warn("characters not representable in target encoding",
			logging.FieldPath, path,
			logging.FieldTarget, b.encoding,
			logging.FieldUnrepresentable, report.Unrepresentable,
			logging.FieldReplaced, report.Replaced)
	}

	// The lazily read original must not be read back after the file under
	// it is rewritten.
	if err := b.detachSourceLocked(); err != nil {
		b.logger.Error("save failed", logging.FieldPath, path, logging.FieldError, err)
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fsys.WriteFile(path, data, newFilePerm); err != nil {
		b.logger.Error("save failed", logging.FieldPath, path, logging.FieldError, err)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	b.modified = false
	b.logger.Info("saved",
		logging.FieldPath, path,
		logging.FieldBytes, len(data),
		logging.FieldEncoding, b.encoding)
	return nil
}

// detachSourceLocked reads a lazily loaded original into memory and closes
// the file it came from.
func (b *TextBuffer) detachSourceLocked() error {
	if b.source == nil {
		return nil
	}
	if err := b.store.Materialize(b.original); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	err := b.source.Close()
	b.source = nil
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Close releases the file a lazily loaded buffer reads from. The buffer
// must not be used afterwards.
func (b *TextBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.source == nil {
		return nil
	}
	err := b.source.Close()
	b.source = nil
	return err
}
