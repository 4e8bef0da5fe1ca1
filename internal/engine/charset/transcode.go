package charset

import (
	"bytes"
	"unicode/utf8"

	gdencoding "github.com/gdamore/encoding"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// ReplacementByte is written in place of characters a single-byte encoding
// cannot represent.
const ReplacementByte = '?'

var replacementUTF8 = []byte(string(utf8.RuneError))

// gbReplacement is U+FFFD encoded in GB18030.
var gbReplacement = []byte{0x84, 0x31, 0xA4, 0x37}

// Report counts lossy substitutions made while transcoding.
type Report struct {
	// Replaced is the number of input sequences that were invalid in the
	// source encoding (or invalid UTF-8, when encoding) and were substituted.
	Replaced int

	// Unrepresentable is the number of characters outside the target
	// encoding's repertoire that were substituted on encode.
	Unrepresentable int
}

// Lossy reports whether any substitution happened.
func (r Report) Lossy() bool {
	return r.Replaced > 0 || r.Unrepresentable > 0
}

// Add combines two reports.
func (r Report) Add(other Report) Report {
	return Report{
		Replaced:        r.Replaced + other.Replaced,
		Unrepresentable: r.Unrepresentable + other.Unrepresentable,
	}
}

// Single-byte code pages, all substituting ReplacementByte on encode.
var (
	asciiMap       = &gdencoding.Charmap{Map: asciiTable(), ReplacementChar: ReplacementByte}
	latin1Map      = &gdencoding.Charmap{ReplacementChar: ReplacementByte}
	windows1252Map = &gdencoding.Charmap{Map: tableFrom(charmap.Windows1252), ReplacementChar: ReplacementByte}
)

func asciiTable() map[byte]rune {
	m := make(map[byte]rune, 128)
	for b := 0x80; b <= 0xFF; b++ {
		m[byte(b)] = utf8.RuneError
	}
	return m
}

// tableFrom copies the upper half of an x/text code page. Bytes the code page
// leaves undefined decode to U+FFFD and therefore stay invalid.
func tableFrom(cm *charmap.Charmap) map[byte]rune {
	m := make(map[byte]rune, 128)
	for b := 0x80; b <= 0xFF; b++ {
		m[byte(b)] = cm.DecodeByte(byte(b))
	}
	return m
}

func singleByte(e Encoding) *gdencoding.Charmap {
	switch e {
	case ASCII:
		return asciiMap
	case Latin1:
		return latin1Map
	case Windows1252:
		return windows1252Map
	}
	return nil
}

func utf16For(e Encoding) encoding.Encoding {
	if e == UTF16BE {
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}

// Decode converts content in encoding e to UTF-8 text. It never fails:
// invalid sequences become U+FFFD and are counted in the report.
//
// The UTF-8 BOM is removed for UTF8BOM and the matching BOM for UTF-16.
// Plain UTF8 keeps a leading U+FEFF as text so it is written back unchanged.
// An unknown encoding decodes as UTF8. The result may share storage with
// content.
func Decode(content []byte, e Encoding) ([]byte, Report) {
	switch e {
	case UTF8BOM:
		return decodeUTF8(bytes.TrimPrefix(content, bomUTF8))

	case UTF16LE, UTF16BE:
		content = bytes.TrimPrefix(content, e.bom())
		out, err := utf16For(e).NewDecoder().Bytes(content)
		if err != nil {
			return decodeUTF8(content)
		}
		return out, Report{Replaced: bytes.Count(out, replacementUTF8) - countUTF16Replacement(content, e)}

	case GB18030:
		out, err := simplifiedchinese.GB18030.NewDecoder().Bytes(content)
		if err != nil {
			return decodeUTF8(content)
		}
		return out, Report{Replaced: bytes.Count(out, replacementUTF8) - bytes.Count(content, gbReplacement)}

	case ASCII, Latin1, Windows1252:
		out, err := singleByte(e).NewDecoder().Bytes(content)
		if err != nil {
			return decodeUTF8(content)
		}
		return out, Report{Replaced: bytes.Count(out, replacementUTF8)}
	}
	return decodeUTF8(content)
}

// Encode converts UTF-8 text to encoding e, prefixed with e's BOM if it has
// one.
//
// Characters e cannot represent become ReplacementByte in the single-byte
// encodings and are counted as unrepresentable. Invalid UTF-8 in text is
// counted as replaced; it becomes U+FFFD in the Unicode encodings and
// ReplacementByte in the others. UTF8 output is text unchanged, so raw bytes
// survive a load/save cycle even when they are not valid UTF-8.
func Encode(text []byte, e Encoding) ([]byte, Report) {
	switch e {
	case UTF8BOM:
		return append(e.BOM(), text...), Report{}

	case UTF16LE, UTF16BE:
		clean, n := sanitize(text)
		out, err := utf16For(e).NewEncoder().Bytes(clean)
		if err != nil {
			return nil, Report{Replaced: n}
		}
		return append(e.BOM(), out...), Report{Replaced: n}

	case GB18030:
		clean, n := sanitize(text)
		out, err := simplifiedchinese.GB18030.NewEncoder().Bytes(clean)
		if err != nil {
			return nil, Report{Replaced: n}
		}
		return out, Report{Replaced: n}

	case ASCII, Latin1, Windows1252:
		rep := singleByteReport(text, e)
		clean, _ := sanitize(text)
		out, err := singleByte(e).NewEncoder().Bytes(clean)
		if err != nil {
			return nil, rep
		}
		return out, rep
	}
	return bytes.Clone(text), Report{}
}

// CanEncode reports whether text survives encoding to e without
// substitution.
func CanEncode(text []byte, e Encoding) bool {
	if !utf8.Valid(text) {
		return e == UTF8 || !e.Valid()
	}
	if e.Unicode() || !e.Valid() {
		return true
	}
	return singleByteReport(text, e).Unrepresentable == 0
}

func decodeUTF8(content []byte) ([]byte, Report) {
	out, n := sanitize(content)
	return out, Report{Replaced: n}
}

// sanitize replaces each invalid UTF-8 byte with U+FFFD. Valid input is
// returned as is.
func sanitize(text []byte) ([]byte, int) {
	if utf8.Valid(text) {
		return text, 0
	}
	out := make([]byte, 0, len(text)+8)
	n := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRune(text[i:])
		if r == utf8.RuneError && size == 1 {
			out = utf8.AppendRune(out, utf8.RuneError)
			n++
		} else {
			out = append(out, text[i:i+size]...)
		}
		i += size
	}
	return out, n
}

func singleByteReport(text []byte, e Encoding) Report {
	var rep Report
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRune(text[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
			rep.Replaced++
		case !representable(r, e):
			rep.Unrepresentable++
		}
	}
	return rep
}

func representable(r rune, e Encoding) bool {
	switch e {
	case ASCII:
		return r < utf8.RuneSelf
	case Latin1:
		return r <= 0xFF
	case Windows1252:
		_, ok := charmap.Windows1252.EncodeRune(r)
		return ok && r != utf8.RuneError
	}
	return true
}

// countUTF16Replacement counts literal U+FFFD code units in UTF-16 content.
func countUTF16Replacement(content []byte, e Encoding) int {
	n := 0
	for i := 0; i+1 < len(content); i += 2 {
		hi, lo := content[i+1], content[i]
		if e == UTF16BE {
			hi, lo = content[i], content[i+1]
		}
		if hi == 0xFF && lo == 0xFD {
			n++
		}
	}
	return n
}
