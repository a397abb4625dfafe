// Package registry maps backend config types to constructors.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"yagt/internal/adapters/backend/local"
	"yagt/internal/adapters/backend/remote"
	"yagt/internal/domain"
	"yagt/internal/ports"
)

// Constructor returns an uninitialized backend named name.
type Constructor func(name string) ports.Backend

type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

func New() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

func (r *Registry) Register(typ string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[strings.ToLower(typ)] = c
}

// Build constructs, but does not initialize, the backend for cfg.
func (r *Registry) Build(cfg domain.BackendConfig) (ports.Backend, error) {
	r.mu.RLock()
	c, ok := r.ctors[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()
	if !ok {
		return nil, &domain.ConfigError{Section: "backend " + cfg.Name, Err: fmt.Errorf("unknown backend type %q", cfg.Type)}
	}
	name := cfg.Name
	if name == "" {
		name = strings.ToLower(cfg.Type)
	}
	return c(name), nil
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ctors))
	for t := range r.ctors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Default registers the local engine and every remote API type.
func Default(dict ports.DictionaryRepository, prompts ports.PromptRenderer, log *zap.SugaredLogger) *Registry {
	r := New()
	r.Register("local", func(name string) ports.Backend { return local.New(name, dict) })
	for _, typ := range []string{remote.TypeGoogle, remote.TypeOpenRouter, remote.TypeOllama} {
		r.Register(typ, func(name string) ports.Backend { return remote.New(name, prompts, log.With("backend", name)) })
	}
	return r
}
