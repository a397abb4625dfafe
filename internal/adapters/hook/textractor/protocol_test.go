package textractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yagt/internal/domain"
)

func TestParseLine(t *testing.T) {
	tl, ok := parseLine("[1A:10E2:7FF6A000:0:0:TextOutA:HS-1C@0:game.exe] こんにちは] world")
	require.True(t, ok)
	assert.Equal(t, 0x10E2, tl.PID)
	assert.Equal(t, "TextOutA", tl.Name)
	assert.Equal(t, "HS-1C@0:game.exe", tl.Code)
	assert.Equal(t, "こんにちは] world", tl.Text)

	tl, ok = parseLine("[0:0:0:0:0:Console:Console] Textractor: hook inserted")
	require.True(t, ok)
	assert.Equal(t, consoleThread, tl.Name)

	for _, bad := range []string{"", "plain text", "[1:2:3] text", "[1:zz:0:0:0:T:C] text"} {
		_, ok := parseLine(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseLineStripsByteOrderMark(t *testing.T) {
	tl, ok := parseLine("\uFEFF[1:2A:0:0:0:GetGlyphOutlineW:HW-8@401000] はい")
	require.True(t, ok)
	assert.Equal(t, 0x2A, tl.PID)
	assert.Equal(t, "はい", tl.Text)
}

func TestWithCodepage(t *testing.T) {
	cases := []struct{ code, enc, want string }{
		{"HS-1C@0:game.exe", "shift_jis", "HS932#-1C@0:game.exe"},
		{"HAN8@401000", "gbk", "HAN936#8@401000"},
		{"RS@44", "big5", "RS950#@44"},
		{"HS932#-1C@0", "gbk", "HS932#-1C@0"},
		{"HW-8@401000", "", "HW-8@401000"},
		{"HW-8@401000", "utf-16le", "HW-8@401000"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, withCodepage(c.code, c.enc), c.code+" "+c.enc)
	}
}

func TestConsoleVerdict(t *testing.T) {
	ok, err := consoleVerdict("Textractor: hook inserted")
	assert.True(t, ok)
	assert.NoError(t, err)

	_, err = consoleVerdict("Textractor: access denied, run as administrator")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = consoleVerdict("Could not open process")
	assert.ErrorIs(t, err, domain.ErrProcessNotFound)

	_, err = consoleVerdict("Textractor: invalid code")
	assert.ErrorIs(t, err, domain.ErrUnsupportedTarget)

	ok, err = consoleVerdict("Textractor: pipe connected")
	assert.False(t, ok)
	assert.NoError(t, err)
}
