package bootstrap

import (
	"sync"

	"go.uber.org/zap"

	"yagt/internal/ports"
)

// Emitter forwards events to a target installed once the UI is up. Events
// before that are dropped.
type Emitter struct {
	log *zap.SugaredLogger

	mu     sync.RWMutex
	target ports.EventEmitter
}

func NewEmitter(log *zap.SugaredLogger) *Emitter { return &Emitter{log: log} }

func (e *Emitter) Set(target ports.EventEmitter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = target
}

func (e *Emitter) Emit(name string, payload any) {
	e.mu.RLock()
	t := e.target
	e.mu.RUnlock()
	if t == nil {
		e.log.Debugw("event without listener", "event", name)
		return
	}
	t.Emit(name, payload)
}
