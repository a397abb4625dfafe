package local

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yagt/internal/adapters/db/sqlite"
	"yagt/internal/domain"
)

func TestTranslateBeforeInitialize(t *testing.T) {
	b := New("local", nil)
	_, err := b.Translate(context.Background(), "こんにちは", "en")
	assert.ErrorIs(t, err, domain.ErrNotInitialized)

	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "local", be.Backend)
}

func TestTranslateDictionary(t *testing.T) {
	b := New("local", nil)
	require.NoError(t, b.Initialize(context.Background(), domain.BackendConfig{
		Type:       "local",
		Dictionary: map[string]string{"こんにちは": "hello"},
	}))

	out, err := b.Translate(context.Background(), " こんにちは ", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = b.Translate(context.Background(), "さようなら", "en")
	assert.ErrorIs(t, err, domain.ErrNoTranslation)
}

func TestTranslateRules(t *testing.T) {
	b := New("local", nil)
	require.NoError(t, b.Initialize(context.Background(), domain.BackendConfig{
		Dictionary: map[string]string{"こんにちは": "hello"},
		Rules: []domain.Rule{
			{Pattern: `「(.*)」`, Replace: "$1"},
			{Pattern: `……`, Replace: "..."},
		},
	}))

	out, err := b.Translate(context.Background(), "「こんにちは」", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = b.Translate(context.Background(), "……", "en")
	require.NoError(t, err)
	assert.Equal(t, "...", out)
}

func TestInitializeRejectsBadRule(t *testing.T) {
	b := New("local", nil)
	err := b.Initialize(context.Background(), domain.BackendConfig{Rules: []domain.Rule{{Pattern: "("}}})
	var ce *domain.ConfigError
	assert.ErrorAs(t, err, &ce)

	_, err = b.Translate(context.Background(), "x", "en")
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestTranslatePersistedDictionary(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "yagt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewDictionaryRepo(db)
	require.NoError(t, repo.Put(ctx, &domain.DictionaryEntry{SourceText: "ありがとう", TgtLang: "en", Translation: "thank you"}))

	b := New("local", repo)
	require.NoError(t, b.Initialize(ctx, domain.BackendConfig{}))

	out, err := b.Translate(ctx, "ありがとう", "en")
	require.NoError(t, err)
	assert.Equal(t, "thank you", out)

	_, err = b.Translate(ctx, "ありがとう", "de")
	assert.ErrorIs(t, err, domain.ErrNoTranslation)
}
