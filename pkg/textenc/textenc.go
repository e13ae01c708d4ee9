// Package textenc converts between the interpreter's native text encodings and
// the canonical in-process representation (UTF-8, no byte order mark).
//
// Windows PowerShell 5.x defaults to UTF-16LE with a BOM for redirected output;
// PowerShell 7+ defaults to BOM-less UTF-8. Decoding always trusts a marker when
// one is present and only falls back to the caller's hint without one.
package textenc

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies one of the interpreter's native default encodings.
type Encoding int

const (
	// UTF8NoBOM is BOM-less UTF-8, the PowerShell 7+ default and the
	// canonical in-process representation.
	UTF8NoBOM Encoding = iota
	// UTF16LEBOM is little-endian UTF-16 with a byte order mark, the
	// Windows PowerShell 5.x default for redirected output.
	UTF16LEBOM
)

func (e Encoding) String() string {
	switch e {
	case UTF8NoBOM:
		return "utf-8"
	case UTF16LEBOM:
		return "utf-16le-bom"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// MarshalYAML renders the encoding by name in capability dumps.
func (e Encoding) MarshalYAML() (any, error) {
	return e.String(), nil
}

// Warnings reported by Decode. These are data-quality signals, not errors:
// the decode still produces a best-effort string.
const (
	// WarnMissingByteOrderMark is reported when the hint names a 16-bit
	// encoding but the bytes carry no marker. Endianness cannot be detected
	// reliably in that case and the bytes are decoded as little-endian.
	WarnMissingByteOrderMark = "16-bit encoding hinted but no byte order mark present; decoded as UTF-16LE"
	// WarnMalformedInput is reported when the byte stream could not be
	// decoded cleanly and replacement characters were substituted.
	WarnMalformedInput = "malformed input bytes; replacement characters substituted"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw interpreter output to a canonical UTF-8 string without a
// byte order mark. A marker, when present, wins over the hint. The returned
// warnings flag undetectable or malformed input; they never abort the decode.
func Decode(raw []byte, hint Encoding) (string, []string) {
	if len(raw) == 0 {
		return "", nil
	}

	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(raw[len(bomUTF8):]), nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeUTF16(raw[len(bomUTF16LE):], unicode.LittleEndian)
	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeUTF16(raw[len(bomUTF16BE):], unicode.BigEndian)
	}

	if hint == UTF16LEBOM {
		s, warnings := decodeUTF16(raw, unicode.LittleEndian)
		return s, append([]string{WarnMissingByteOrderMark}, warnings...)
	}
	return string(raw), nil
}

func decodeUTF16(raw []byte, endianness unicode.Endianness) (string, []string) {
	var warnings []string
	if len(raw)%2 != 0 {
		warnings = append(warnings, WarnMalformedInput)
	}
	dec := unicode.UTF16(endianness, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		// The UTF-16 decoder substitutes U+FFFD rather than failing; treat
		// a hard error the same way and keep what was produced.
		warnings = append(warnings, WarnMalformedInput)
	}
	return string(out), warnings
}

// EncodeNative converts a canonical string to the interpreter's native
// encoding. 16-bit output always carries a byte order mark: the readback
// normalization can only detect endianness in the presence of a marker.
func EncodeNative(s string, enc Encoding) ([]byte, error) {
	switch enc {
	case UTF8NoBOM:
		return []byte(s), nil
	case UTF16LEBOM:
		e := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		out, err := e.Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("encoding to %s: %w", enc, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported native encoding %s", enc)
	}
}
