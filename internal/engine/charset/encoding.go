package charset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEncoding is returned when an encoding name cannot be resolved.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Encoding identifies a character encoding.
type Encoding string

const (
	// UTF8 is UTF-8 without a byte order mark (default).
	UTF8 Encoding = "utf-8"

	// UTF8BOM is UTF-8 with a byte order mark.
	UTF8BOM Encoding = "utf-8-bom"

	// UTF16LE is UTF-16 little endian.
	UTF16LE Encoding = "utf-16le"

	// UTF16BE is UTF-16 big endian.
	UTF16BE Encoding = "utf-16be"

	// ASCII is 7-bit US-ASCII.
	ASCII Encoding = "ascii"

	// Latin1 is ISO-8859-1.
	Latin1 Encoding = "iso-8859-1"

	// Windows1252 is the Windows Western European code page.
	Windows1252 Encoding = "windows-1252"

	// GB18030 is the Chinese national standard encoding.
	GB18030 Encoding = "gb18030"
)

// Byte order marks.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

var all = []Encoding{UTF8, UTF8BOM, UTF16LE, UTF16BE, ASCII, Latin1, Windows1252, GB18030}

var displayNames = map[Encoding]string{
	UTF8:        "UTF-8",
	UTF8BOM:     "UTF-8 BOM",
	UTF16LE:     "UTF-16 LE",
	UTF16BE:     "UTF-16 BE",
	ASCII:       "ASCII",
	Latin1:      "Latin-1",
	Windows1252: "Windows-1252",
	GB18030:     "GB18030",
}

// aliases maps normalized names (lower case, no separators) to encodings.
var aliases = map[string]Encoding{
	"utf8":        UTF8,
	"utf8bom":     UTF8BOM,
	"utf8withbom": UTF8BOM,
	"utf16":       UTF16LE,
	"utf16le":     UTF16LE,
	"utf16be":     UTF16BE,
	"ascii":       ASCII,
	"usascii":     ASCII,
	"latin1":      Latin1,
	"iso88591":    Latin1,
	"windows1252": Windows1252,
	"cp1252":      Windows1252,
	"gb18030":     GB18030,
}

// All returns the supported encodings in selector order.
func All() []Encoding {
	return append([]Encoding(nil), all...)
}

// Parse resolves an encoding from its canonical name, display name or a
// common alias. Matching ignores case, spaces, '-' and '_'.
func Parse(name string) (Encoding, error) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))

	if e, ok := aliases[key]; ok {
		return e, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// Valid reports whether e is a supported encoding.
func (e Encoding) Valid() bool {
	_, ok := displayNames[e]
	return ok
}

// String returns the canonical name.
func (e Encoding) String() string {
	return string(e)
}

// DisplayName returns the human-readable name shown in selectors and status
// lines.
func (e Encoding) DisplayName() string {
	if name, ok := displayNames[e]; ok {
		return name
	}
	return string(e)
}

// HasBOM reports whether files in this encoding are written with a byte
// order mark.
func (e Encoding) HasBOM() bool {
	return len(e.bom()) > 0
}

// BOM returns a copy of the byte order mark written for e, or nil.
func (e Encoding) BOM() []byte {
	return bytes.Clone(e.bom())
}

func (e Encoding) bom() []byte {
	switch e {
	case UTF8BOM:
		return bomUTF8
	case UTF16LE:
		return bomUTF16LE
	case UTF16BE:
		return bomUTF16BE
	}
	return nil
}

// Unicode reports whether e can represent every Unicode character.
func (e Encoding) Unicode() bool {
	switch e {
	case UTF8, UTF8BOM, UTF16LE, UTF16BE, GB18030:
		return true
	}
	return false
}
