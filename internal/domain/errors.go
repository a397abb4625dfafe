package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProcessNotFound   = errors.New("process not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnsupportedTarget = errors.New("hook target not supported")
	ErrAlreadyActive     = errors.New("hook session already active")
	ErrNotRunning        = errors.New("game is not running")
	ErrInvalidState      = errors.New("invalid game state")
	ErrSessionLost       = errors.New("hook session ended unexpectedly")

	ErrNetwork           = errors.New("network error")
	ErrAuth              = errors.New("authentication failed")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrNotInitialized    = errors.New("backend not initialized")
	ErrNoTranslation     = errors.New("no translation available")
	ErrBackendsExhausted = errors.New("all translation backends failed")
	ErrNoBackends        = errors.New("no translation backends enabled")

	ErrGameNotFound   = errors.New("game not found")
	ErrUnknownSection = errors.New("unknown config section")
)

// ProcessError covers spawn, attach and liveness failures. It is fatal to the
// current game instance.
type ProcessError struct {
	Op   string
	Path string
	PID  int
	Err  error
}

func (e *ProcessError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("process %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("process %s pid=%d: %v", e.Op, e.PID, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// HookError covers install and uninstall failures. The game keeps running.
type HookError struct {
	Op   string
	PID  int
	Code string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %s %q pid=%d: %v", e.Op, e.Code, e.PID, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// BackendError is the typed failure every backend reports instead of panicking.
type BackendError struct {
	Backend    string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s: status %d: %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// ConfigError marks a malformed configuration section.
type ConfigError struct {
	Section string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Section, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsTransient reports failures worth retrying against the same backend.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// DisablesBackend reports failures that take a backend out of rotation until
// it is reconfigured.
func DisablesBackend(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrQuotaExceeded)
}

// ErrorKind returns a short machine-readable name for event payloads.
func ErrorKind(err error) string {
	var (
		pe *ProcessError
		he *HookError
		be *BackendError
		ce *ConfigError
	)
	switch {
	case errors.As(err, &pe):
		return "process"
	case errors.As(err, &he):
		return "hook"
	case errors.As(err, &be):
		return "backend"
	case errors.As(err, &ce):
		return "config"
	default:
		return "internal"
	}
}
