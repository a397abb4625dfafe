package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yagt/internal/adapters/hook/hooktest"
	"yagt/internal/domain"
	"yagt/internal/ports"
)

type fakeProc struct {
	pid  int
	done chan struct{}
	once sync.Once

	mu         sync.Mutex
	code       int
	terminated bool
}

func (p *fakeProc) PID() int              { return p.pid }
func (p *fakeProc) Done() <-chan struct{} { return p.done }

func (p *fakeProc) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code
}

func (p *fakeProc) Terminate() error {
	p.mu.Lock()
	p.terminated = true
	p.mu.Unlock()
	p.exit(1)
	return nil
}

func (p *fakeProc) exit(code int) {
	p.once.Do(func() {
		p.mu.Lock()
		p.code = code
		p.mu.Unlock()
		close(p.done)
	})
}

func (p *fakeProc) wasTerminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

type fakeProcesses struct {
	mu       sync.Mutex
	nextPID  int
	procs    []*fakeProc
	dead     map[int]bool
	startErr error
}

func newFakeProcesses() *fakeProcesses {
	return &fakeProcesses{nextPID: 1000, dead: map[int]bool{}}
}

func (f *fakeProcesses) Start(_ context.Context, _ domain.LaunchSpec) (ports.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.nextPID++
	p := &fakeProc{pid: f.nextPID, done: make(chan struct{})}
	f.procs = append(f.procs, p)
	return p, nil
}

func (f *fakeProcesses) Alive(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.dead[pid]
}

func (f *fakeProcesses) kill(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead[pid] = true
}

func (f *fakeProcesses) last() *fakeProc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.procs[len(f.procs)-1]
}

// fakeTranslator answers every text with "tr:<text>". While held, callbacks
// are queued until release.
type fakeTranslator struct {
	mu       sync.Mutex
	texts    []string
	held     []func()
	hold     bool
	sessions int
}

func (f *fakeTranslator) Translate(text string, cb func(domain.TranslationResult)) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	deliver := func() { cb(domain.TranslationResult{Text: "tr:" + text, OK: true, Backend: "fake"}) }
	if f.hold {
		f.held = append(f.held, deliver)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	go deliver()
}

func (f *fakeTranslator) EndSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions++
}

func (f *fakeTranslator) release() {
	f.mu.Lock()
	held := f.held
	f.held = nil
	f.mu.Unlock()
	for _, d := range held {
		d()
	}
}

func (f *fakeTranslator) endedSessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions
}

type event struct {
	name    string
	payload any
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Emit(name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{name, payload})
}

func (r *recorder) snapshot() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events...)
}

func (r *recorder) names() []string {
	var out []string
	for _, e := range r.snapshot() {
		out = append(out, e.name)
	}
	return out
}

func (r *recorder) count(name string) int {
	n := 0
	for _, e := range r.snapshot() {
		if e.name == name {
			n++
		}
	}
	return n
}

func (r *recorder) waitFor(t *testing.T, name string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return r.count(name) >= n }, 2*time.Second, 5*time.Millisecond, "waiting for %d %s events", n, name)
}

type harness struct {
	procs *fakeProcesses
	hooks *hooktest.Installer
	trans *fakeTranslator
	rec   *recorder
	clock *clockwork.FakeClock
	deps  Deps
	opts  Options
}

func newHarness() *harness {
	h := &harness{
		procs: newFakeProcesses(),
		hooks: hooktest.New(),
		trans: &fakeTranslator{},
		rec:   &recorder{},
		clock: clockwork.NewFakeClock(),
	}
	h.deps = Deps{Processes: h.procs, Hooks: h.hooks, Translator: h.trans, Emitter: h.rec, Clock: h.clock, Log: zap.NewNop().Sugar()}
	h.opts = Options{LivenessInterval: time.Second, ReadyDelay: 2 * time.Second, HookTimeout: time.Second}
	return h
}

func (h *harness) start(t *testing.T, g domain.Game) *Controller {
	t.Helper()
	c := New(g, h.deps, h.opts)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Stop(context.Background()) })
	return c
}

func waitDone(t *testing.T, c *Controller) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not reach exited")
	}
}
