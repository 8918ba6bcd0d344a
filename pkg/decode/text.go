package decode

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Text converts raw bytes to a UTF-8 string. UTF-8 and UTF-16 byte order
// marks are honored; invalid UTF-8 sequences are replaced rather than
// rejected so a slightly corrupt text file still previews.
func Text(b []byte) string {
	switch {
	case bytes.HasPrefix(b, bomUTF8):
		b = b[len(bomUTF8):]
	case bytes.HasPrefix(b, bomUTF16LE), bytes.HasPrefix(b, bomUTF16BE):
		endian := unicode.LittleEndian
		if bytes.HasPrefix(b, bomUTF16BE) {
			endian = unicode.BigEndian
		}
		decoder := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, b)
		if err == nil {
			return string(decoded)
		}
		// Fall through and treat as bytes on a broken UTF-16 stream.
	}

	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}
