package charset

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// binarySample is how much of the content IsBinary inspects.
const binarySample = 8192

// LineEnding is the line terminator style of a document.
type LineEnding string

const (
	// LineEndingLF is "\n".
	LineEndingLF LineEnding = "lf"

	// LineEndingCRLF is "\r\n".
	LineEndingCRLF LineEnding = "crlf"

	// LineEndingCR is a lone "\r".
	LineEndingCR LineEnding = "cr"

	// LineEndingMixed means no single style dominates.
	LineEndingMixed LineEnding = "mixed"
)

// Info describes detected properties of file content.
type Info struct {
	// Encoding is the detected character encoding.
	Encoding Encoding

	// HasBOM is true if the content starts with the encoding's BOM.
	HasBOM bool

	// Binary is true if the content has no BOM and looks like binary data.
	// Binary content is detected as Latin-1 so that it survives a load/save
	// cycle.
	Binary bool

	// LineEnding is the dominant line terminator.
	LineEnding LineEnding
}

// Detect returns the encoding of file content.
//
// A byte order mark wins. Otherwise content that is valid UTF-8 is ASCII or
// UTF-8, and anything else goes through a best-effort heuristic choosing
// between the single-byte Western encodings and GB18030. Empty content is
// UTF-8.
func Detect(content []byte) Encoding {
	if e, ok := sniffBOM(content); ok {
		return e
	}
	if utf8.Valid(content) {
		if isASCII(content) && len(content) > 0 {
			return ASCII
		}
		return UTF8
	}
	if IsBinary(content) {
		return Latin1
	}
	return guessLegacy(content)
}

// DetectInfo performs full detection on content.
func DetectInfo(content []byte) Info {
	info := Info{Encoding: Detect(content)}
	_, info.HasBOM = sniffBOM(content)
	info.Binary = !info.HasBOM && IsBinary(content)
	info.LineEnding = DetectLineEnding(content)
	return info
}

// StripBOM removes a leading byte order mark and returns the rest of the
// content with the encoding the mark identifies. Content without a BOM is
// returned unchanged with ok false.
func StripBOM(content []byte) (rest []byte, e Encoding, ok bool) {
	e, ok = sniffBOM(content)
	if !ok {
		return content, "", false
	}
	return content[len(e.bom()):], e, true
}

func sniffBOM(content []byte) (Encoding, bool) {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		return UTF8BOM, true
	case bytes.HasPrefix(content, bomUTF16LE):
		return UTF16LE, true
	case bytes.HasPrefix(content, bomUTF16BE):
		return UTF16BE, true
	}
	return "", false
}

// IsBinary reports whether content looks like binary data: it contains a
// NUL byte, or more than 10% of its leading bytes are control characters
// other than tab, newline, carriage return and form feed.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	sample := content[:min(len(content), binarySample)]
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	control := 0
	for _, b := range sample {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			control++
		}
	}
	return control*10 > len(sample)
}

// DetectLineEnding returns the dominant line ending in content. If more
// than one style accounts for at least 10% of the terminators the result is
// LineEndingMixed. Content without terminators reports LineEndingLF.
func DetectLineEnding(content []byte) LineEnding {
	var lf, crlf, cr int
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			lf++
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				crlf++
				i++
			} else {
				cr++
			}
		}
	}

	total := lf + crlf + cr
	if total == 0 {
		return LineEndingLF
	}

	floor := max(total/10, 1)
	styles := 0
	for _, n := range []int{lf, crlf, cr} {
		if n >= floor {
			styles++
		}
	}
	switch {
	case styles > 1:
		return LineEndingMixed
	case crlf >= lf && crlf >= cr:
		return LineEndingCRLF
	case cr > lf:
		return LineEndingCR
	}
	return LineEndingLF
}

func isASCII(content []byte) bool {
	for _, b := range content {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// guessLegacy picks an encoding for content that is not valid UTF-8.
//
// Content that does not parse as GB18030 is Latin-family. Otherwise every
// maximal run of high bytes casts a vote: odd-length runs, and runs of two
// bytes touching an ASCII letter or digit (accented letters inside a word),
// vote Latin; other even-length runs made of GB2312-range pairs vote
// GB18030. Ties go to Latin. Pure high-byte text is ambiguous and may be misdetected; callers
// offer a manual override for that.
func guessLegacy(content []byte) Encoding {
	latin := westernEncoding(content)
	if !validGB18030(content) {
		return latin
	}

	var latinVotes, cjkVotes int
	for i := 0; i < len(content); {
		if content[i] < utf8.RuneSelf {
			i++
			continue
		}
		j := i
		for j < len(content) && content[j] >= utf8.RuneSelf {
			j++
		}
		switch {
		case (j-i)%2 == 1:
			latinVotes++
		case j-i < 4 && (i > 0 && isWordByte(content[i-1]) || j < len(content) && isWordByte(content[j])):
			latinVotes++
		case gb2312Pairs(content[i:j]):
			cjkVotes++
		default:
			latinVotes++
		}
		i = j
	}

	if cjkVotes > latinVotes {
		return GB18030
	}
	return latin
}

// westernEncoding returns Windows1252 if content uses bytes in the C1
// range, which Windows-1252 assigns to printable characters, else Latin1.
// A byte Windows-1252 leaves undefined selects Latin1, which maps every
// byte and so keeps the content intact on save.
func westernEncoding(content []byte) Encoding {
	c1 := false
	for _, b := range content {
		if b < 0x80 || b > 0x9F {
			continue
		}
		if !windows1252Defined(b) {
			return Latin1
		}
		c1 = true
	}
	if c1 {
		return Windows1252
	}
	return Latin1
}

// windows1252Defined reports whether Windows-1252 assigns a character to b.
func windows1252Defined(b byte) bool {
	return charmap.Windows1252.DecodeByte(b) != utf8.RuneError
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// gb2312Pairs reports whether run splits into pairs with both bytes in the
// GB2312 range 0xA1-0xFE.
func gb2312Pairs(run []byte) bool {
	if len(run)%2 != 0 {
		return false
	}
	for i := 0; i < len(run); i += 2 {
		if run[i] < 0xA1 || run[i] > 0xF7 || run[i+1] < 0xA1 || run[i+1] > 0xFE {
			return false
		}
	}
	return true
}

// validGB18030 reports whether content is structurally valid GB18030:
// ASCII, two-byte sequences (lead 0x81-0xFE, trail 0x40-0x7E or 0x80-0xFE)
// and four-byte sequences (0x81-0xFE, 0x30-0x39, 0x81-0xFE, 0x30-0x39).
func validGB18030(content []byte) bool {
	for i := 0; i < len(content); {
		c0 := content[i]
		if c0 < 0x80 {
			i++
			continue
		}
		if c0 == 0x80 || c0 == 0xFF || i+1 >= len(content) {
			return false
		}
		c1 := content[i+1]
		switch {
		case (c1 >= 0x40 && c1 <= 0x7E) || (c1 >= 0x80 && c1 <= 0xFE):
			i += 2
		case c1 >= 0x30 && c1 <= 0x39:
			if i+3 >= len(content) {
				return false
			}
			c2, c3 := content[i+2], content[i+3]
			if c2 < 0x81 || c2 > 0xFE || c3 < 0x30 || c3 > 0x39 {
				return false
			}
			i += 4
		default:
			return false
		}
	}
	return true
}
