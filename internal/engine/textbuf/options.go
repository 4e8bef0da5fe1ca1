package textbuf

import (
	"github.com/charmbracelet/log"

	"github.com/dshills/piecetext/internal/config"
	"github.com/dshills/piecetext/internal/engine/charset"
)

// Option is a functional option for configuring a TextBuffer.
type Option func(*TextBuffer)

// WithConfig applies the editor and files sections of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(b *TextBuffer) {
		if cfg == nil {
			return
		}
		WithEstimatedLineLength(cfg.Editor.EstimatedLineLength)(b)
		WithLargeFileThreshold(cfg.Editor.LargeFileThreshold)(b)
		b.defaultEncoding = cfg.Encoding()
	}
}

// WithLogger sets the logger used for load and save events.
func WithLogger(l *log.Logger) Option {
	return func(b *TextBuffer) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithLargeFileThreshold sets the size at and above which content is
// stored without line metadata and files are read lazily.
func WithLargeFileThreshold(n int) Option {
	return func(b *TextBuffer) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithEstimatedLineLength sets the line length assumed by estimating line
// iterators.
func WithEstimatedLineLength(n int) Option {
	return func(b *TextBuffer) {
		if n > 0 {
			b.estLineLen = n
		}
	}
}

// WithDefaultEncoding sets the encoding used for empty content.
func WithDefaultEncoding(e charset.Encoding) Option {
	return func(b *TextBuffer) {
		if e.Valid() {
			b.defaultEncoding = e
		}
	}
}

// WithEncoding decodes content as e instead of detecting its encoding.
// Unknown encodings are ignored.
func WithEncoding(e charset.Encoding) Option {
	return func(b *TextBuffer) {
		if e.Valid() {
			b.forced = e
		}
	}
}
