package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yagt/internal/domain"
)

type sink struct {
	lang        string
	apis        []domain.BackendConfig
	translators []domain.BackendConfig
}

func (s *sink) SetTargetLanguage(lang string) { s.lang = lang }
func (s *sink) InitializeAPIs(_ context.Context, c []domain.BackendConfig) error {
	s.apis = c
	return nil
}
func (s *sink) InitializeTranslators(_ context.Context, c []domain.BackendConfig) error {
	s.translators = c
	return nil
}

func TestApply(t *testing.T) {
	s, repo := newService(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, SectionDefault, `{"target_language":"de","onlineApis":[{"name":"ollama","type":"ollama","enabled":true}]}`))
	require.NoError(t, repo.Set(ctx, SectionTranslators, `[{"name":"dict","type":"local","enabled":true}]`))

	var got sink
	require.NoError(t, s.Apply(ctx, &got))
	assert.Equal(t, "de", got.lang)
	require.Len(t, got.apis, 1)
	assert.Equal(t, "ollama", got.apis[0].Name)
	require.Len(t, got.translators, 1)
	assert.Equal(t, "local", got.translators[0].Type)
}

func TestApplyWithMalformedDefault(t *testing.T) {
	s, repo := newService(t)
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, SectionDefault, `nope`))

	var got sink
	err := s.Apply(ctx, &got)
	var ce *domain.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "en", got.lang)
	assert.Equal(t, DefaultSettings().OnlineAPIs, got.apis)
}
