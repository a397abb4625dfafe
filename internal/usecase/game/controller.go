// Package game owns the lifecycle of one launched game: process, hook
// session, capture pump and the events the overlay sees.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"yagt/internal/adapters/metrics"
	"yagt/internal/domain"
	"yagt/internal/ports"
	"yagt/internal/textcodec"
)

// Translator is the part of the translation manager a controller needs.
type Translator interface {
	Translate(text string, cb func(domain.TranslationResult))
	EndSession()
}

type Deps struct {
	Processes  ports.ProcessController
	Hooks      ports.HookInstaller
	Translator Translator
	Emitter    ports.EventEmitter
	Clock      clockwork.Clock
	Log        *zap.SugaredLogger
}

type Options struct {
	LivenessInterval time.Duration
	// ReadyDelay is how long a process must stay alive before the game's
	// default hook code is applied.
	ReadyDelay  time.Duration
	HookTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.LivenessInterval <= 0 {
		o.LivenessInterval = time.Second
	}
	if o.ReadyDelay <= 0 {
		o.ReadyDelay = 2 * time.Second
	}
	if o.HookTimeout <= 0 {
		o.HookTimeout = 5 * time.Second
	}
	return o
}

// Controller states run Idle -> Launching -> Running -> Exited. A failed
// launch returns to Idle. Exited is terminal.
type Controller struct {
	game domain.Game
	d    Deps
	opts Options
	id   string
	log  *zap.SugaredLogger

	mu        sync.Mutex
	state     domain.GameState
	hook      domain.HookState
	proc      ports.Process
	pid       int
	session   ports.HookSession
	startedAt time.Time

	// hookMu serializes install and replace.
	hookMu sync.Mutex

	// emitMu orders events; nothing is emitted once detached.
	emitMu   sync.Mutex
	detached bool

	exitOnce sync.Once
	done     chan struct{}
}

func New(g domain.Game, d Deps, opts Options) *Controller {
	id := uuid.NewString()
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	return &Controller{
		game:  g,
		d:     d,
		opts:  opts.withDefaults(),
		id:    id,
		log:   d.Log.With("game", g.Name, "session", id),
		state: domain.GameIdle,
		hook:  domain.HookNone,
		done:  make(chan struct{}),
	}
}

func (c *Controller) ID() string { return c.id }

// Done is closed once the controller reached Exited.
func (c *Controller) Done() <-chan struct{} { return c.done }

func (c *Controller) Info() domain.GameInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.GameInfo{SessionID: c.id, Game: c.game, PID: c.pid, State: c.state, Hook: c.hook, StartedAt: c.startedAt}
}

func (c *Controller) State() (domain.GameState, domain.HookState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.hook
}

// Start spawns the game. A launch failure is not retried: the controller
// goes back to Idle and no started event is sent.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.GameIdle {
		st := c.state
		c.mu.Unlock()
		return fmt.Errorf("start %s in state %s: %w", c.game.Name, st, domain.ErrInvalidState)
	}
	c.state = domain.GameLaunching
	c.mu.Unlock()

	proc, err := c.d.Processes.Start(ctx, c.game.LaunchSpec())
	if err != nil {
		c.mu.Lock()
		c.state = domain.GameIdle
		c.mu.Unlock()
		var pe *domain.ProcessError
		if !errors.As(err, &pe) {
			err = &domain.ProcessError{Op: "start", Path: c.game.Path, Err: err}
		}
		c.log.Warnw("game launch failed", "path", c.game.Path, "err", err)
		c.publish(domain.EventError, domain.ErrorEvent{SessionID: c.id, Kind: domain.ErrorKind(err), Message: err.Error()})
		return err
	}

	// started goes out before the state allows a hook, so it precedes any text.
	c.publish(domain.EventGameStarted, domain.StartedEvent{SessionID: c.id, Game: c.game.Name, PID: proc.PID()})

	c.mu.Lock()
	c.state = domain.GameRunning
	c.proc = proc
	c.pid = proc.PID()
	c.startedAt = c.d.Clock.Now()
	c.mu.Unlock()
	metrics.GamesRunning.Inc()
	c.log.Infow("game started", "pid", proc.PID(), "path", c.game.Path)

	go c.watch(proc)
	if strings.TrimSpace(c.game.HookCode) != "" {
		go c.autoHook()
	}
	return nil
}

func (c *Controller) watch(p ports.Process) {
	ticker := c.d.Clock.NewTicker(c.opts.LivenessInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.Done():
			c.finalize(fmt.Sprintf("exited with code %d", p.ExitCode()), true)
			return
		case <-ticker.Chan():
			if !c.d.Processes.Alive(p.PID()) {
				c.finalize("process no longer alive", true)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Controller) autoHook() {
	select {
	case <-c.d.Clock.After(c.opts.ReadyDelay):
	case <-c.done:
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.HookTimeout)
	defer cancel()
	if err := c.InsertHook(ctx, c.game.HookCode); err != nil {
		c.log.Warnw("default hook code failed", "code", c.game.HookCode, "err", err)
	}
}

// InsertHook installs code into the running game, replacing any active
// session. An empty code is ignored. On failure the game keeps running
// without capture.
func (c *Controller) InsertHook(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		c.log.Debugw("ignoring empty hook code")
		return nil
	}

	c.hookMu.Lock()
	defer c.hookMu.Unlock()

	c.mu.Lock()
	if c.state != domain.GameRunning {
		c.mu.Unlock()
		return &domain.HookError{Op: "install", Code: code, Err: domain.ErrNotRunning}
	}
	pid, prev := c.pid, c.session
	c.mu.Unlock()

	d, err := ParseHookCode(code, c.game.Encoding)
	if err != nil {
		return c.hookFailed(&domain.HookError{Op: "install", PID: pid, Code: code, Err: err})
	}

	if prev != nil {
		// Detach first so the old pump stops forwarding before uninstall.
		c.mu.Lock()
		if c.session == prev {
			c.session = nil
			c.hook = domain.HookNone
		}
		c.mu.Unlock()
		if err := c.d.Hooks.Uninstall(ctx, prev); err != nil {
			c.log.Warnw("uninstalling previous hook failed", "session", prev.ID(), "err", err)
		}
	}

	s, err := c.d.Hooks.Install(ctx, pid, d)
	if err != nil {
		var he *domain.HookError
		if !errors.As(err, &he) {
			err = &domain.HookError{Op: "install", PID: pid, Code: d.Code, Err: err}
		}
		return c.hookFailed(err)
	}

	c.mu.Lock()
	if c.state != domain.GameRunning {
		c.mu.Unlock()
		_ = c.d.Hooks.Uninstall(ctx, s)
		return &domain.HookError{Op: "install", PID: pid, Code: d.Code, Err: domain.ErrNotRunning}
	}
	c.session = s
	c.hook = domain.HookActive
	c.mu.Unlock()

	metrics.HookInstalls.WithLabelValues("ok").Inc()
	c.log.Infow("hook active", "pid", pid, "code", d.Code, "hook_session", s.ID())
	go c.pump(s)
	return nil
}

func (c *Controller) hookFailed(err error) error {
	c.mu.Lock()
	if c.state == domain.GameRunning {
		c.hook = domain.HookFailed
	}
	c.mu.Unlock()
	metrics.HookInstalls.WithLabelValues("failed").Inc()
	c.log.Warnw("hook install failed", "err", err)
	c.publish(domain.EventError, domain.ErrorEvent{SessionID: c.id, Kind: domain.ErrorKind(err), Message: err.Error()})
	return err
}

// pump forwards one session's captures in order. It ends when the session's
// channel closes.
func (c *Controller) pump(s ports.HookSession) {
	enc := s.Descriptor().Encoding
	for ct := range s.Captures() {
		metrics.CapturesTotal.Inc()
		if !c.current(s) {
			c.drop(ct, "stale_session")
			continue
		}
		e := ct.Encoding
		if e == "" {
			e = enc
		}
		text, err := textcodec.Decode(ct.Data, e)
		if err != nil {
			c.log.Warnw("dropping undecodable capture", "seq", ct.Seq, "encoding", e, "err", err)
			metrics.CaptureDrops.WithLabelValues("decode").Inc()
			continue
		}
		if strings.TrimSpace(text) == "" {
			c.drop(ct, "empty")
			continue
		}
		if !c.publish(domain.EventTextCaptured, domain.TextEvent{SessionID: c.id, Seq: ct.Seq, Thread: ct.Thread, Text: text}) {
			c.drop(ct, "exited")
			continue
		}
		c.d.Translator.Translate(text, func(r domain.TranslationResult) {
			if !c.publish(domain.EventTranslated, domain.TranslatedEvent{SessionID: c.id, Result: r}) {
				c.log.Debugw("discarding translation after exit", "seq", ct.Seq)
			}
		})
	}
	c.sessionLost(s)
}

// sessionLost handles a session whose captures ended while it was still the
// current one, e.g. the extractor host died. The game keeps running without
// capture.
func (c *Controller) sessionLost(s ports.HookSession) {
	c.mu.Lock()
	if c.session != s || c.state != domain.GameRunning {
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.hook = domain.HookFailed
	pid := c.pid
	c.mu.Unlock()

	err := &domain.HookError{Op: "capture", PID: pid, Code: s.Descriptor().Code, Err: domain.ErrSessionLost}
	c.log.Warnw("hook session ended unexpectedly", "hook_session", s.ID(), "status", s.Status(), "err", err)
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.HookTimeout)
	if uerr := c.d.Hooks.Uninstall(ctx, s); uerr != nil {
		c.log.Debugw("releasing lost session", "err", uerr)
	}
	cancel()
	c.publish(domain.EventError, domain.ErrorEvent{SessionID: c.id, Kind: domain.ErrorKind(err), Message: err.Error()})
}

func (c *Controller) drop(ct domain.CapturedText, reason string) {
	c.log.Debugw("dropping capture", "seq", ct.Seq, "reason", reason)
	metrics.CaptureDrops.WithLabelValues(reason).Inc()
}

func (c *Controller) current(s ports.HookSession) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session == s && c.state == domain.GameRunning
}

// Stop uninstalls the hook, terminates the process and waits for Exited.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	state, proc, sess := c.state, c.proc, c.session
	c.mu.Unlock()

	switch state {
	case domain.GameExited:
		return nil
	case domain.GameIdle:
		c.finalize("stopped before launch", false)
		return nil
	case domain.GameLaunching:
		return fmt.Errorf("stop %s while launching: %w", c.game.Name, domain.ErrInvalidState)
	}

	if sess != nil {
		c.hookMu.Lock()
		c.mu.Lock()
		if c.session == sess {
			c.session = nil
			c.hook = domain.HookNone
		}
		c.mu.Unlock()
		if err := c.d.Hooks.Uninstall(ctx, sess); err != nil {
			c.log.Warnw("uninstall on stop failed", "err", err)
		}
		c.hookMu.Unlock()
	}
	if err := proc.Terminate(); err != nil {
		return &domain.ProcessError{Op: "terminate", PID: proc.PID(), Err: err}
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finalize runs once. announce is false for a controller that never launched.
func (c *Controller) finalize(reason string, announce bool) {
	c.exitOnce.Do(func() {
		c.mu.Lock()
		c.state = domain.GameExited
		sess := c.session
		c.session = nil
		hadProc := c.proc != nil
		c.proc = nil
		c.mu.Unlock()

		if sess != nil {
			ctx, cancel := context.WithTimeout(context.Background(), c.opts.HookTimeout)
			if err := c.d.Hooks.Uninstall(ctx, sess); err != nil {
				c.log.Warnw("force uninstall failed", "err", err)
			}
			cancel()
		}
		c.d.Translator.EndSession()

		c.emitMu.Lock()
		if announce && !c.detached {
			c.d.Emitter.Emit(domain.EventGameExited, domain.ExitedEvent{SessionID: c.id, Game: c.game.Name, Reason: reason})
		}
		c.detached = true
		c.emitMu.Unlock()

		if hadProc {
			metrics.GamesRunning.Dec()
		}
		c.log.Infow("game exited", "reason", reason)
		close(c.done)
	})
}

// publish reports false once the controller has detached its listeners.
func (c *Controller) publish(name string, payload any) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if c.detached {
		return false
	}
	c.d.Emitter.Emit(name, payload)
	return true
}
