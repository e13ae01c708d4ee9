package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoding_String(t *testing.T) {
	assert.Equal(t, "utf-8", UTF8NoBOM.String())
	assert.Equal(t, "utf-16le-bom", UTF16LEBOM.String())
	assert.Equal(t, "encoding(42)", Encoding(42).String())
}

func TestEncoding_MarshalYAML(t *testing.T) {
	v, err := UTF16LEBOM.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "utf-16le-bom", v)
}

func TestDecode_Empty(t *testing.T) {
	s, warnings := Decode(nil, UTF16LEBOM)
	assert.Equal(t, "", s)
	assert.Empty(t, warnings)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	inputs := []string{
		"hello",
		"hi\r\n",
		"multi\nline\ntext",
		"accented: café, naïve",
		"cyrillic: привет",
		"cjk: 設定が変更されました",
		"quotes: it's a 'test'",
		"",
	}

	for _, enc := range []Encoding{UTF8NoBOM, UTF16LEBOM} {
		for _, in := range inputs {
			raw, err := EncodeNative(in, enc)
			require.NoError(t, err)

			out, warnings := Decode(raw, enc)
			assert.Equal(t, in, out, "round trip through %s", enc)
			assert.Empty(t, warnings, "round trip through %s", enc)
		}
	}
}

func TestEncodeNative_UTF16CarriesMarker(t *testing.T) {
	raw, err := EncodeNative("x", UTF16LEBOM)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(raw), 4)
	assert.Equal(t, byte(0xFF), raw[0])
	assert.Equal(t, byte(0xFE), raw[1])
	// 'x' little-endian
	assert.Equal(t, byte('x'), raw[2])
	assert.Equal(t, byte(0x00), raw[3])
}

func TestEncodeNative_Unsupported(t *testing.T) {
	_, err := EncodeNative("x", Encoding(42))
	assert.Error(t, err)
}

func TestDecode_MarkerWinsOverHint(t *testing.T) {
	// UTF-8 bytes with a UTF-8 BOM, but a 16-bit hint: the marker decides.
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)
	s, warnings := Decode(raw, UTF16LEBOM)
	assert.Equal(t, "hello", s)
	assert.Empty(t, warnings)
}

func TestDecode_UTF16BigEndian(t *testing.T) {
	raw := []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}
	s, warnings := Decode(raw, UTF8NoBOM)
	assert.Equal(t, "hi", s)
	assert.Empty(t, warnings)
}

func TestDecode_MissingMarkerWith16BitHint(t *testing.T) {
	// UTF-16LE bytes with no marker. The decode is best-effort and must be
	// flagged: without the marker, endianness detection is not reliable.
	raw := []byte{'h', 0x00, 'i', 0x00}
	s, warnings := Decode(raw, UTF16LEBOM)

	assert.Equal(t, "hi", s)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnMissingByteOrderMark, warnings[0])
}

func TestDecode_OddLength16BitInput(t *testing.T) {
	raw := []byte{0xFF, 0xFE, 'h', 0x00, 'i'}
	_, warnings := Decode(raw, UTF16LEBOM)
	assert.Contains(t, warnings, WarnMalformedInput)
}

func TestDecode_PlainUTF8WithUTF8Hint(t *testing.T) {
	s, warnings := Decode([]byte("no marker at all"), UTF8NoBOM)
	assert.Equal(t, "no marker at all", s)
	assert.Empty(t, warnings)
}
