package app

import (
	"context"
	"errors"

	"yagt/internal/adapters/backend/remote"
	"yagt/internal/domain"
	"yagt/internal/ports"
	"yagt/internal/usecase/translator"
)

// BackendBuilder builds an uninitialized backend from a config entry.
type BackendBuilder interface {
	translator.Builder
	Types() []string
}

type BackendsAPI struct {
	builder BackendBuilder
	manager *translator.Manager
}

func NewBackendsAPI(builder BackendBuilder, manager *translator.Manager) *BackendsAPI {
	return &BackendsAPI{builder: builder, manager: manager}
}

// List reports the live backends in priority order.
func (a *BackendsAPI) List() []translator.BackendStatus { return a.manager.Backends() }

func (a *BackendsAPI) Types() []string { return a.builder.Types() }

type ModelInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ContextTokens int    `json:"context_tokens,omitempty"`
}

// ListModelsPreview returns models for a transient configuration without
// persisting it.
func (a *BackendsAPI) ListModelsPreview(cfg domain.BackendConfig) ([]ModelInfo, error) {
	ctx := context.Background()
	b, err := a.builder.Build(cfg)
	if err != nil {
		return nil, err
	}
	lister, ok := b.(interface {
		ListModels(context.Context) ([]remote.ModelInfo, error)
	})
	if !ok {
		return nil, errors.New("backend type does not list models")
	}
	if err := b.Initialize(ctx, cfg); err != nil {
		return nil, err
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		out = append(out, ModelInfo{Name: m.Name, Description: m.Description, ContextTokens: m.ContextTokens})
	}
	return out, nil
}

// BackendTestResult contains details of a connectivity/translate test.
type BackendTestResult struct {
	Ok          bool   `json:"ok"`
	Translation string `json:"translation,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Test checks the endpoint of a transient backend built from cfg, when the
// backend supports that, then translates a fixed phrase through it.
// Backend failures are reported in the result, not as an error.
func (a *BackendsAPI) Test(cfg domain.BackendConfig, text string) (BackendTestResult, error) {
	ctx := context.Background()
	if text == "" {
		text = "こんにちは"
	}
	b, err := a.builder.Build(cfg)
	if err != nil {
		return BackendTestResult{}, err
	}
	if err := b.Initialize(ctx, cfg); err != nil {
		return BackendTestResult{Error: err.Error()}, nil
	}
	if tester, ok := b.(ports.BackendTester); ok {
		if err := tester.Test(ctx); err != nil {
			return BackendTestResult{Error: err.Error()}, nil
		}
	}
	out, err := b.Translate(ctx, text, a.manager.TargetLanguage())
	if err != nil {
		return BackendTestResult{Error: err.Error()}, nil
	}
	return BackendTestResult{Ok: true, Translation: out}, nil
}

func mask(s string) string {
	if len(s) <= 4 {
		return s
	}
	return "****" + s[len(s)-4:]
}
