package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"yagt/internal/domain"
)

// Supervisor keeps at most one current controller. Starting a game tears
// the previous one down first: uninstall hook, terminate, wait for exited.
type Supervisor struct {
	deps     Deps
	opts     Options
	teardown time.Duration
	log      *zap.SugaredLogger

	mu      sync.Mutex // serializes Run and Stop
	current *Controller
}

func NewSupervisor(deps Deps, opts Options, teardown time.Duration) *Supervisor {
	if teardown <= 0 {
		teardown = 10 * time.Second
	}
	return &Supervisor{deps: deps, opts: opts, teardown: teardown, log: deps.Log}
}

func (s *Supervisor) Run(ctx context.Context, g domain.Game) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev := s.current; prev != nil {
		if err := s.stop(ctx, prev); err != nil {
			return nil, err
		}
		s.current = nil
	}

	c := New(g, s.deps, s.opts)
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	s.current = c
	return c, nil
}

func (s *Supervisor) stop(ctx context.Context, c *Controller) error {
	tctx, cancel := context.WithTimeout(ctx, s.teardown)
	defer cancel()
	if err := c.Stop(tctx); err != nil {
		s.log.Warnw("stopping previous game failed", "game", c.game.Name, "err", err)
	}
	select {
	case <-c.Done():
		return nil
	case <-tctx.Done():
		return fmt.Errorf("previous game %s did not exit: %w", c.game.Name, tctx.Err())
	}
}

// Current returns the live controller, or nil once it has exited.
func (s *Supervisor) Current() *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	select {
	case <-s.current.Done():
		return nil
	default:
		return s.current
	}
}

func (s *Supervisor) InsertHook(ctx context.Context, code string) error {
	c := s.Current()
	if c == nil {
		return &domain.HookError{Op: "install", Code: code, Err: domain.ErrNotRunning}
	}
	return c.InsertHook(ctx, code)
}

func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	err := s.stop(ctx, s.current)
	if err == nil {
		s.current = nil
	}
	return err
}
