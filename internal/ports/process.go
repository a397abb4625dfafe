package ports

import (
	"context"

	"yagt/internal/domain"
)

// Process is a live OS process owned by one game controller.
type Process interface {
	PID() int
	// Done is closed when the process has exited.
	Done() <-chan struct{}
	ExitCode() int
	Terminate() error
}

type ProcessController interface {
	Start(ctx context.Context, spec domain.LaunchSpec) (Process, error)
	Alive(pid int) bool
}
