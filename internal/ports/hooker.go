package ports

import (
	"context"

	"yagt/internal/domain"
)

// HookSession is one active interception inside one process.
type HookSession interface {
	ID() string
	PID() int
	Descriptor() domain.HookDescriptor
	Status() domain.HookStatus
	// Captures is closed once the session is detached.
	Captures() <-chan domain.CapturedText
}

// HookInstaller installs interception code inside a foreign process.
// Concrete strategies (extractor host, debug events, shared memory) are
// interchangeable behind it.
type HookInstaller interface {
	Install(ctx context.Context, pid int, d domain.HookDescriptor) (HookSession, error)
	// Uninstall is idempotent; detached sessions are a no-op.
	Uninstall(ctx context.Context, s HookSession) error
}
