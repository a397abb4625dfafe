package textcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeShiftJIS(t *testing.T) {
	// "こんにちは" in Shift-JIS
	raw := []byte{0x82, 0xb1, 0x82, 0xf1, 0x82, 0xc9, 0x82, 0xbf, 0x82, 0xcd}
	s, err := Decode(raw, "SJIS")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", s)
}

func TestDecodeUTF16LEStripsNUL(t *testing.T) {
	raw := []byte{0x53, 0x30, 0x93, 0x30, 0x00, 0x00}
	s, err := Decode(raw, "utf-16le")
	require.NoError(t, err)
	assert.Equal(t, "こん", s)
}

func TestDecodeUTF8Validates(t *testing.T) {
	s, err := Decode([]byte("hello"), "")
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	_, err = Decode([]byte{0xff, 0xfe, 0xfd}, "utf8")
	assert.Error(t, err)
}

func TestLookupFallsBackToHTMLIndex(t *testing.T) {
	e, err := Lookup("shift_jis")
	require.NoError(t, err)
	assert.NotNil(t, e)

	_, err = Lookup("klingon")
	assert.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, enc := range []string{"sjis", "gbk", "utf-16le", "big5", "utf-8"} {
		in := "漢字"
		b, err := Encode(in, enc)
		require.NoError(t, err, enc)
		out, err := Decode(b, enc)
		require.NoError(t, err, enc)
		assert.Equal(t, in, out, enc)
	}
}

func TestCodepage(t *testing.T) {
	for name, want := range map[string]int{"shift_jis": 932, "SJIS": 932, "gbk": 936, "big5": 950, "euc-kr": 949, "utf-8": 65001} {
		cp, ok := Codepage(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, cp, name)
	}
	for _, name := range []string{"", "utf-16le", "no-such-encoding"} {
		_, ok := Codepage(name)
		assert.False(t, ok, name)
	}
}
