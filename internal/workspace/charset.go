package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupportedCharset is returned for charsets without a codec.
var ErrUnsupportedCharset = errors.New("unsupported charset")

var charsets = map[string]encoding.Encoding{
	"utf8":    unicode.UTF8,
	"utf8bom": unicode.UTF8BOM,
	"latin1":  charmap.ISO8859_1,
	"utf16be": unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"utf16le": unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Charset returns the codec of a normalized charset name.
func Charset(name string) (encoding.Encoding, error) {
	enc, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, name)
	}
	return enc, nil
}

// SupportedCharset reports whether name can be read and written.
func SupportedCharset(name string) bool {
	_, ok := charsets[name]
	return ok
}

// DetectCharset guesses the charset of file content from its byte order
// mark, falling back to utf8 for valid UTF-8 and latin1 otherwise.
func DetectCharset(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return "utf8bom"
	case bytes.HasPrefix(data, bomUTF16BE):
		return "utf16be"
	case bytes.HasPrefix(data, bomUTF16LE):
		return "utf16le"
	case utf8.Valid(data):
		return "utf8"
	default:
		return "latin1"
	}
}

// Decode converts data in charset name to a UTF-8 string. A leading byte
// order mark is dropped.
func Decode(name string, data []byte) (string, error) {
	enc, err := Charset(name)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return string(out), nil
}

// Encode converts text to charset name.
func Encode(name, text string) ([]byte, error) {
	enc, err := Charset(name)
	if err != nil {
		return nil, err
	}
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	return out, nil
}
