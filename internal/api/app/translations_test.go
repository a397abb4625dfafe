package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yagt/internal/usecase/library"
)

func TestDictionaryImportFeedsLocalBackend(t *testing.T) {
	f := newFixture(t)
	tr := NewTranslationsAPI(f.manager, f.dict, nopEmitter{})

	n, err := tr.ImportDictionary("source,translation\nさようなら,goodbye\nはい,yes\n")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cfg := NewConfigAPI(f.lib, f.manager, nil, zap.NewNop().Sugar())
	_, err = cfg.Save(library.SectionTranslators, `[{"name":"user","type":"local","enabled":true}]`)
	require.NoError(t, err)

	r, err := tr.Translate("さようなら")
	require.NoError(t, err)
	assert.True(t, r.OK)
	assert.Equal(t, "goodbye", r.Text)

	out, err := tr.ExportDictionary("en", "")
	require.NoError(t, err)
	assert.Equal(t, "source,lang,translation\nさようなら,en,goodbye\nはい,en,yes\n", out)
}

func TestDictionaryImportRejectsBadHeader(t *testing.T) {
	f := newFixture(t)
	tr := NewTranslationsAPI(f.manager, f.dict, nopEmitter{})
	_, err := tr.ImportDictionary("key,value\na,b\n")
	require.Error(t, err)
}
