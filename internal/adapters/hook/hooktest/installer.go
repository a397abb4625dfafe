// Package hooktest provides an in-memory ports.HookInstaller for tests.
package hooktest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"yagt/internal/domain"
	"yagt/internal/ports"
)

// Installer keeps one session per pid and lets tests push captures into it.
type Installer struct {
	mu       sync.Mutex
	sessions map[int]*Session
	failures map[int]error
	history  []*Session
	// Reject makes Install fail with ErrAlreadyActive instead of replacing.
	Reject bool
	Buffer int
	// BeforeUninstall runs while the session is still active.
	BeforeUninstall func(*Session)
}

func New() *Installer {
	return &Installer{sessions: map[int]*Session{}, failures: map[int]error{}, Buffer: 64}
}

var _ ports.HookInstaller = (*Installer)(nil)

// FailNext makes the next Install for pid return err.
func (i *Installer) FailNext(pid int, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.failures[pid] = err
}

func (i *Installer) Install(_ context.Context, pid int, d domain.HookDescriptor) (ports.HookSession, error) {
	i.mu.Lock()
	if err, ok := i.failures[pid]; ok {
		delete(i.failures, pid)
		i.mu.Unlock()
		return nil, &domain.HookError{Op: "install", PID: pid, Code: d.Code, Err: err}
	}
	prev := i.sessions[pid]
	if prev != nil && i.Reject {
		i.mu.Unlock()
		return nil, &domain.HookError{Op: "install", PID: pid, Code: d.Code, Err: domain.ErrAlreadyActive}
	}
	s := &Session{id: uuid.NewString(), pid: pid, desc: d, status: domain.StatusActive, out: make(chan domain.CapturedText, i.Buffer)}
	i.sessions[pid] = s
	i.history = append(i.history, s)
	i.mu.Unlock()

	if prev != nil {
		prev.detach()
	}
	return s, nil
}

func (i *Installer) Uninstall(_ context.Context, hs ports.HookSession) error {
	s, ok := hs.(*Session)
	if !ok {
		return fmt.Errorf("hooktest: foreign session %T", hs)
	}
	if i.BeforeUninstall != nil {
		i.BeforeUninstall(s)
	}
	i.mu.Lock()
	if i.sessions[s.pid] == s {
		delete(i.sessions, s.pid)
	}
	i.mu.Unlock()
	s.detach()
	return nil
}

// Active returns the current session for pid, or nil.
func (i *Installer) Active(pid int) *Session {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sessions[pid]
}

// Sessions returns every session ever installed, oldest first.
func (i *Installer) Sessions() []*Session {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]*Session(nil), i.history...)
}

// Push delivers text to the active session for pid. It reports false when no
// session is active or the buffer is full.
func (i *Installer) Push(pid int, data []byte, encoding string) bool {
	s := i.Active(pid)
	if s == nil {
		return false
	}
	return s.Push(data, encoding)
}

type Session struct {
	id   string
	pid  int
	desc domain.HookDescriptor

	mu     sync.Mutex
	status domain.HookStatus
	seq    uint64
	out    chan domain.CapturedText
	closed bool
}

func (s *Session) ID() string                        { return s.id }
func (s *Session) PID() int                          { return s.pid }
func (s *Session) Descriptor() domain.HookDescriptor { return s.desc }
func (s *Session) Captures() <-chan domain.CapturedText {
	return s.out
}

func (s *Session) Status() domain.HookStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Push(data []byte, encoding string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.StatusActive {
		return false
	}
	s.seq++
	select {
	case s.out <- domain.CapturedText{Seq: s.seq, Data: data, Encoding: encoding, At: time.Now()}:
		return true
	default:
		return false
	}
}

func (s *Session) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == domain.StatusDetached {
		return
	}
	s.status = domain.StatusDetached
	s.closeOut()
	for range s.out {
	}
}

// Fail ends delivery as if the target side died. The session stays
// registered until uninstalled.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.StatusActive {
		return
	}
	s.status = domain.StatusFailed
	s.closeOut()
}

func (s *Session) closeOut() {
	if !s.closed {
		s.closed = true
		close(s.out)
	}
}
