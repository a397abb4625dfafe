package ports

import (
	"context"

	"yagt/internal/domain"
)

// Backend is a translation provider. Ordinary failures come back as
// *domain.BackendError so the manager can fall through to the next backend.
type Backend interface {
	Name() string
	Initialize(ctx context.Context, cfg domain.BackendConfig) error
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// BackendTester is implemented by backends that can check their endpoint.
type BackendTester interface {
	Test(ctx context.Context) error
}

type EventEmitter interface {
	Emit(name string, payload any)
}
