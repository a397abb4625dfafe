package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yagt/internal/adapters/hook/hooktest"
	"yagt/internal/domain"
	"yagt/internal/platform/config"
)

func testConfig() *config.Config {
	return &config.Config{
		DBPath:           ":memory:",
		ExtractorPath:    "TextractorCLI.exe",
		AttachTimeout:    time.Second,
		LivenessInterval: time.Second,
		ReadyDelay:       time.Second,
		TeardownTimeout:  time.Second,
		TargetLanguage:   "en",
		TranslateWorkers: 2,
		TranslateTimeout: time.Second,
		CaptureBuffer:    16,
	}
}

func TestNewLoadsBackendDefaults(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, testConfig(), zap.NewNop().Sugar(), WithHooks(hooktest.New()))
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close(ctx)) }()

	backends := c.Manager.Backends()
	require.Len(t, backends, 1)
	assert.Equal(t, "google", backends[0].Name)
	assert.Equal(t, "api", backends[0].Kind)
	assert.Nil(t, c.Supervisor.Current())
}

func TestNewDefaultsToExtractorInstaller(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, testConfig(), zap.NewNop().Sugar())
	require.NoError(t, err)
	defer func() { _ = c.Close(ctx) }()
	assert.NotNil(t, c.Hooks)
	assert.NotNil(t, c.Processes)
}

type recorder struct{ names []string }

func (r *recorder) Emit(name string, _ any) { r.names = append(r.names, name) }

func TestEmitterForwardsOnceSet(t *testing.T) {
	e := NewEmitter(zap.NewNop().Sugar())
	e.Emit(domain.EventGameStarted, nil)

	r := &recorder{}
	e.Set(r)
	e.Emit(domain.EventGameExited, nil)
	assert.Equal(t, []string{domain.EventGameExited}, r.names)
}
