package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yagt/internal/domain"
)

func TestParseHookCode(t *testing.T) {
	d, err := ParseHookCode(" /HS-1C@0:game.exe ", "sjis")
	require.NoError(t, err)
	assert.Equal(t, "HS-1C@0:game.exe", d.Code)
	assert.Equal(t, "sjis", d.Encoding)
	assert.Nil(t, d.Params)

	d, err = ParseHookCode("HQN-14*0@4F2A30:engine.dll:DrawText;encoding=utf-16le;thread=TextOutW", "")
	require.NoError(t, err)
	assert.Equal(t, "HQN-14*0@4F2A30:engine.dll:DrawText", d.Code)
	assert.Equal(t, "utf-16le", d.Encoding)
	assert.Equal(t, "TextOutW", d.Param("thread"))

	d, err = ParseHookCode("RS@1234", "")
	require.NoError(t, err)
	assert.Equal(t, "RS@1234", d.Code)

	for _, bad := range []string{"hello", "HS4", "HS4@xyz", "HS4@0;thread", "XS4@0"} {
		_, err := ParseHookCode(bad, "")
		assert.ErrorIs(t, err, domain.ErrUnsupportedTarget, bad)
	}
}
