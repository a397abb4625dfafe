package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	cases := map[string]error{
		"process":  &ProcessError{Op: "start", Path: "game.exe", Err: ErrProcessNotFound},
		"hook":     fmt.Errorf("insert: %w", &HookError{Op: "install", PID: 7, Err: ErrPermissionDenied}),
		"backend":  &BackendError{Backend: "google", StatusCode: 503, Err: ErrNetwork},
		"config":   &ConfigError{Section: "games", Err: errors.New("bad json")},
		"internal": errors.New("boom"),
	}
	for want, err := range cases {
		assert.Equal(t, want, ErrorKind(err), err.Error())
	}
}

func TestBackendErrorClassification(t *testing.T) {
	network := &BackendError{Backend: "ollama", Err: ErrNetwork}
	assert.True(t, IsTransient(network))
	assert.False(t, DisablesBackend(network))

	for _, err := range []error{ErrAuth, ErrQuotaExceeded} {
		be := &BackendError{Backend: "openrouter", StatusCode: 401, Err: err}
		assert.True(t, DisablesBackend(be))
		assert.False(t, IsTransient(be))
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "process start game.exe: process not found",
		(&ProcessError{Op: "start", Path: "game.exe", Err: ErrProcessNotFound}).Error())
	assert.Equal(t, "process liveness pid=12: process not found",
		(&ProcessError{Op: "liveness", PID: 12, Err: ErrProcessNotFound}).Error())
	assert.Equal(t, "backend google: status 429: quota exceeded",
		(&BackendError{Backend: "google", StatusCode: 429, Err: ErrQuotaExceeded}).Error())
	assert.ErrorIs(t, &HookError{Op: "install", Err: ErrAlreadyActive}, ErrAlreadyActive)
}
