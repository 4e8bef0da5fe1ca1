// Package charset detects and transcodes the character encodings a text
// buffer can be loaded from and saved to.
//
// Document text is always held as UTF-8. Decode turns file bytes into that
// text and never fails: undecodable sequences become U+FFFD and are counted
// in the returned Report. Encode turns text back into file bytes; characters
// the target cannot represent are substituted and counted, so a save is never
// blocked by its encoding.
//
// Supported encodings:
//
//   - UTF-8, with or without a byte order mark
//   - UTF-16 little and big endian (always written with a BOM)
//   - ASCII
//   - ISO-8859-1 (Latin-1)
//   - Windows-1252
//   - GB18030
//
// For every encoding d and content b made only of characters d can
// represent, Encode(Decode(b, d), d) reproduces b byte for byte, BOM
// included.
package charset
