// Package textractor installs hooks through an external extractor host
// process (TextractorCLI compatible) and relays what it reports.
package textractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yagt/internal/domain"
	"yagt/internal/ports"
	"yagt/internal/textcodec"
)

var errHostExited = errors.New("extractor host exited")

type Options struct {
	HostPath      string
	HostArgs      []string
	Env           []string
	Encoding      string // host stdio encoding
	AttachTimeout time.Duration
	StopTimeout   time.Duration
	Buffer        int
	// ReplaceActive detaches an existing session for the same pid instead of
	// failing with ErrAlreadyActive.
	ReplaceActive bool
	Alive         func(pid int) bool
}

type Installer struct {
	opts Options
	log  *zap.SugaredLogger

	installMu sync.Mutex
	mu        sync.Mutex
	sessions  map[int]*session
}

var _ ports.HookInstaller = (*Installer)(nil)

func New(opts Options, log *zap.SugaredLogger) (*Installer, error) {
	if opts.HostPath == "" {
		return nil, errors.New("textractor: host path is required")
	}
	if _, err := textcodec.Lookup(opts.Encoding); err != nil {
		return nil, fmt.Errorf("textractor: %w", err)
	}
	if opts.AttachTimeout <= 0 {
		opts.AttachTimeout = 3 * time.Second
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 2 * time.Second
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	if opts.Alive == nil {
		opts.Alive = func(int) bool { return true }
	}
	return &Installer{opts: opts, log: log, sessions: map[int]*session{}}, nil
}

func (i *Installer) Install(ctx context.Context, pid int, d domain.HookDescriptor) (ports.HookSession, error) {
	i.installMu.Lock()
	defer i.installMu.Unlock()

	herr := func(err error) error { return &domain.HookError{Op: "install", PID: pid, Code: d.Code, Err: err} }
	if !i.opts.Alive(pid) {
		return nil, herr(domain.ErrProcessNotFound)
	}

	i.mu.Lock()
	prev := i.sessions[pid]
	i.mu.Unlock()
	if prev != nil {
		if !i.opts.ReplaceActive {
			return nil, herr(domain.ErrAlreadyActive)
		}
		i.log.Infow("replacing active hook session", "pid", pid, "old", prev.id, "old_code", prev.desc.Code, "code", d.Code)
		if err := i.Uninstall(ctx, prev); err != nil {
			return nil, herr(err)
		}
	}

	s, err := i.spawn(pid, d)
	if err != nil {
		return nil, herr(err)
	}
	if err := s.handshake(ctx, i.opts.AttachTimeout); err != nil {
		s.stop(i.opts.StopTimeout, i.log)
		s.setStatus(domain.StatusFailed)
		return nil, herr(err)
	}
	s.setStatus(domain.StatusActive)

	i.mu.Lock()
	i.sessions[pid] = s
	i.mu.Unlock()
	i.log.Infow("hook installed", "pid", pid, "session", s.id, "code", d.Code)
	return s, nil
}

func (i *Installer) Uninstall(_ context.Context, hs ports.HookSession) error {
	s, ok := hs.(*session)
	if !ok {
		return &domain.HookError{Op: "uninstall", PID: hs.PID(), Code: hs.Descriptor().Code, Err: fmt.Errorf("foreign session type %T", hs)}
	}
	i.mu.Lock()
	if i.sessions[s.pid] == s {
		delete(i.sessions, s.pid)
	}
	i.mu.Unlock()
	if s.stop(i.opts.StopTimeout, i.log) {
		i.log.Infow("hook uninstalled", "pid", s.pid, "session", s.id, "dropped", s.dropped.Load())
	}
	return nil
}

func (i *Installer) spawn(pid int, d domain.HookDescriptor) (*session, error) {
	cmd := exec.Command(i.opts.HostPath, i.opts.HostArgs...)
	cmd.Env = append(os.Environ(), i.opts.Env...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start extractor host %s: %w", i.opts.HostPath, err)
	}

	s := newSession(uuid.NewString(), pid, d, i.opts.Encoding, i.opts.Buffer, cmd, stdin)
	go s.read(stdout, i.log)
	go s.reap()

	for _, line := range []string{attachCmd(pid), hookCmd(withCodepage(d.Code, d.Encoding), pid)} {
		if err := s.send(line); err != nil {
			s.stop(i.opts.StopTimeout, i.log)
			return nil, fmt.Errorf("send %q: %w", line, err)
		}
	}
	return s, nil
}
