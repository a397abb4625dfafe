// Package process spawns game executables and answers liveness queries.
package process

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"yagt/internal/domain"
	"yagt/internal/ports"
)

type Launcher struct {
	log *zap.SugaredLogger
	// WrapperTimeout bounds the wait for the game to appear after a wrapper
	// launched it.
	WrapperTimeout time.Duration
	PollInterval   time.Duration
}

func NewLauncher(log *zap.SugaredLogger) *Launcher {
	return &Launcher{log: log, WrapperTimeout: 15 * time.Second, PollInterval: 250 * time.Millisecond}
}

var _ ports.ProcessController = (*Launcher)(nil)

// Start spawns the executable described by spec. The returned process is not
// tied to ctx; it lives until it exits or is terminated.
func (l *Launcher) Start(ctx context.Context, spec domain.LaunchSpec) (ports.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.ProcessError{Op: "launch", Path: spec.Path, Err: err}
	}
	info, err := os.Stat(spec.Path)
	if err != nil {
		return nil, &domain.ProcessError{Op: "launch", Path: spec.Path, Err: classify(err)}
	}
	if info.IsDir() {
		return nil, &domain.ProcessError{Op: "launch", Path: spec.Path, Err: fmt.Errorf("%w: is a directory", domain.ErrProcessNotFound)}
	}

	if spec.Wrapper != "" {
		return l.startWrapped(ctx, spec)
	}
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = filepath.Dir(spec.Path)
	if err := cmd.Start(); err != nil {
		return nil, &domain.ProcessError{Op: "launch", Path: spec.Path, Err: classify(err)}
	}

	p := &proc{cmd: cmd, done: make(chan struct{}), exitCode: -1}
	go p.wait(l.log)
	l.log.Infow("process started", "path", spec.Path, "pid", p.PID())
	return p, nil
}

// startWrapped runs the wrapper and then adopts the game process it starts,
// matched by executable image. Wrappers such as locale emulators exit as
// soon as the game is up, so the wrapper's own pid is never returned.
func (l *Launcher) startWrapped(ctx context.Context, spec domain.LaunchSpec) (ports.Process, error) {
	image, err := imagePath(spec.Path)
	if err != nil {
		return nil, &domain.ProcessError{Op: "launch", Path: spec.Path, Err: classify(err)}
	}
	before := map[int]bool{}
	if pids, err := findByImage(image); err == nil {
		for _, pid := range pids {
			before[pid] = true
		}
	}

	args := append(append(append([]string{}, spec.WrapperArgs...), spec.Path), spec.Args...)
	cmd := exec.Command(spec.Wrapper, args...)
	cmd.Dir = filepath.Dir(spec.Path)
	if err := cmd.Start(); err != nil {
		return nil, &domain.ProcessError{Op: "launch", Path: spec.Wrapper, Err: classify(err)}
	}
	wrapper := &proc{cmd: cmd, done: make(chan struct{}), exitCode: -1}
	go wrapper.wait(l.log)
	l.log.Infow("wrapper started", "wrapper", spec.Wrapper, "pid", wrapper.PID(), "path", spec.Path)

	pid, err := l.awaitImage(ctx, image, before, wrapper.PID())
	if err != nil {
		_ = wrapper.Terminate()
		return nil, &domain.ProcessError{Op: "launch", Path: spec.Path, Err: err}
	}
	p := &adopted{pid: pid, done: make(chan struct{})}
	go p.watch(l.PollInterval, l.log)
	l.log.Infow("process started", "path", spec.Path, "pid", pid, "wrapper", spec.Wrapper)
	return p, nil
}

func (l *Launcher) awaitImage(ctx context.Context, image string, skip map[int]bool, wrapperPID int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.WrapperTimeout)
	defer cancel()
	t := time.NewTicker(l.PollInterval)
	defer t.Stop()
	for {
		pids, err := findByImage(image)
		if err != nil {
			return 0, err
		}
		for _, pid := range pids {
			if !skip[pid] && pid != wrapperPID && alive(pid) && !zombie(pid) {
				return pid, nil
			}
		}
		select {
		case <-t.C:
		case <-ctx.Done():
			return 0, fmt.Errorf("%w: %s did not start within %s", domain.ErrProcessNotFound, filepath.Base(image), l.WrapperTimeout)
		}
	}
}

func imagePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func (l *Launcher) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return alive(pid)
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%w: %v", domain.ErrProcessNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
	default:
		return err
	}
}

type proc struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu       sync.Mutex
	exitCode int
}

func (p *proc) PID() int              { return p.cmd.Process.Pid }
func (p *proc) Done() <-chan struct{} { return p.done }

func (p *proc) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

func (p *proc) Terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return &domain.ProcessError{Op: "terminate", PID: p.PID(), Err: err}
	}
	return nil
}

func (p *proc) wait(log *zap.SugaredLogger) {
	err := p.cmd.Wait()
	code := 0
	if p.cmd.ProcessState != nil {
		code = p.cmd.ProcessState.ExitCode()
	}
	p.mu.Lock()
	p.exitCode = code
	p.mu.Unlock()
	log.Infow("process exited", "pid", p.PID(), "code", code, "err", err)
	close(p.done)
}

// adopted is a game process the launcher did not spawn itself. Its exit is
// observed by polling, and its exit code is unknown.
type adopted struct {
	pid  int
	done chan struct{}
}

func (p *adopted) PID() int              { return p.pid }
func (p *adopted) Done() <-chan struct{} { return p.done }
func (p *adopted) ExitCode() int         { return -1 }

func (p *adopted) Terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	op, err := os.FindProcess(p.pid)
	if err != nil {
		return nil
	}
	if err := op.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return &domain.ProcessError{Op: "terminate", PID: p.pid, Err: err}
	}
	return nil
}

func (p *adopted) watch(interval time.Duration, log *zap.SugaredLogger) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for range t.C {
		if !alive(p.pid) || zombie(p.pid) {
			log.Infow("process exited", "pid", p.pid)
			close(p.done)
			return
		}
	}
}
