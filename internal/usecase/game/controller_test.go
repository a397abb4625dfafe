package game

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yagt/internal/adapters/hook/hooktest"
	"yagt/internal/adapters/process"
	"yagt/internal/domain"
)

var sample = domain.Game{Name: "Sample", Path: "/games/sample.exe"}

func TestStartNonexistentExecutable(t *testing.T) {
	h := newHarness()
	h.deps.Processes = process.NewLauncher(zap.NewNop().Sugar())
	c := New(domain.Game{Name: "missing", Path: filepath.Join(t.TempDir(), "nope.exe")}, h.deps, h.opts)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProcessNotFound)
	var pe *domain.ProcessError
	assert.ErrorAs(t, err, &pe)

	state, _ := c.State()
	assert.Equal(t, domain.GameIdle, state)
	assert.Zero(t, h.rec.count(domain.EventGameStarted))
	assert.Equal(t, 1, h.rec.count(domain.EventError))
}

func TestStartedPrecedesTextAndTranslation(t *testing.T) {
	h := newHarness()
	c := h.start(t, sample)
	pid := h.procs.last().pid

	require.NoError(t, c.InsertHook(context.Background(), "HS-1C@0:sample.exe"))
	_, hook := c.State()
	assert.Equal(t, domain.HookActive, hook)

	require.True(t, h.hooks.Push(pid, []byte("こんにちは"), "utf-8"))
	require.True(t, h.hooks.Push(pid, []byte("   "), "utf-8"))
	require.True(t, h.hooks.Push(pid, []byte{0x82, 0xa0}, "sjis"))
	h.rec.waitFor(t, domain.EventTranslated, 2)

	events := h.rec.snapshot()
	assert.Equal(t, domain.EventGameStarted, events[0].name)
	var texts []domain.TextEvent
	for _, e := range events {
		if e.name == domain.EventTextCaptured {
			texts = append(texts, e.payload.(domain.TextEvent))
		}
	}
	require.Len(t, texts, 2, "whitespace-only capture is dropped")
	assert.Equal(t, "こんにちは", texts[0].Text)
	assert.Equal(t, uint64(1), texts[0].Seq)
	assert.Equal(t, "あ", texts[1].Text)
	assert.Equal(t, uint64(3), texts[1].Seq)
}

func TestExitedExactlyOnceOnCrash(t *testing.T) {
	h := newHarness()
	c := h.start(t, sample)
	p := h.procs.last()
	require.NoError(t, c.InsertHook(context.Background(), "HS0@0"))
	sess := h.hooks.Active(p.pid)
	require.NotNil(t, sess)

	p.exit(3)
	waitDone(t, c)
	require.NoError(t, c.Stop(context.Background()))

	assert.Equal(t, 1, h.rec.count(domain.EventGameExited))
	ev := h.rec.snapshot()[len(h.rec.snapshot())-1]
	assert.Equal(t, domain.ExitedEvent{SessionID: c.ID(), Game: "Sample", Reason: "exited with code 3"}, ev.payload)
	assert.Equal(t, domain.StatusDetached, sess.Status())
	assert.Equal(t, 1, h.trans.endedSessions())

	state, _ := c.State()
	assert.Equal(t, domain.GameExited, state)
}

func TestStopUninstallsAndTerminates(t *testing.T) {
	h := newHarness()
	c := h.start(t, sample)
	p := h.procs.last()
	require.NoError(t, c.InsertHook(context.Background(), "HS0@0"))
	sess := h.hooks.Active(p.pid)

	require.NoError(t, c.Stop(context.Background()))
	assert.True(t, p.wasTerminated())
	assert.Equal(t, domain.StatusDetached, sess.Status())
	assert.Equal(t, 1, h.rec.count(domain.EventGameExited))

	require.NoError(t, c.Stop(context.Background()))
	assert.Equal(t, 1, h.rec.count(domain.EventGameExited))
}

func TestLivenessPollDetectsDeadProcess(t *testing.T) {
	h := newHarness()
	c := h.start(t, sample)
	pid := h.procs.last().pid

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))

	h.procs.kill(pid)
	h.clock.Advance(time.Second)
	waitDone(t, c)
	assert.Equal(t, 1, h.rec.count(domain.EventGameExited))
}

func TestInsertHookReplacesSession(t *testing.T) {
	h := newHarness()
	c := h.start(t, sample)
	pid := h.procs.last().pid

	require.NoError(t, c.InsertHook(context.Background(), "HS0@0"))
	first := h.hooks.Active(pid)
	require.NoError(t, c.InsertHook(context.Background(), "HS4@0"))
	second := h.hooks.Active(pid)

	require.NotSame(t, first, second)
	assert.Equal(t, domain.StatusDetached, first.Status())
	assert.Equal(t, domain.StatusActive, second.Status())
	assert.Equal(t, "HS4@0", second.Descriptor().Code)

	assert.False(t, first.Push([]byte("old"), "utf-8"))
	require.True(t, second.Push([]byte("new"), "utf-8"))
	h.rec.waitFor(t, domain.EventTextCaptured, 1)
	assert.Equal(t, 1, h.rec.count(domain.EventTextCaptured))
}

func TestReplacedSessionStopsForwardingBeforeUninstall(t *testing.T) {
	h := newHarness()
	c := h.start(t, sample)

	require.NoError(t, c.InsertHook(context.Background(), "HS0@0"))
	h.hooks.BeforeUninstall = func(s *hooktest.Session) {
		require.True(t, s.Push([]byte("late line"), "utf-8"))
		time.Sleep(50 * time.Millisecond)
	}
	require.NoError(t, c.InsertHook(context.Background(), "HS4@0"))
	h.hooks.BeforeUninstall = nil

	assert.Zero(t, h.rec.count(domain.EventTextCaptured))
	_, hook := c.State()
	assert.Equal(t, domain.HookActive, hook)
	assert.Zero(t, h.rec.count(domain.EventError))
}

func TestSessionEndingOnItsOwnMarksHookFailed(t *testing.T) {
	h := newHarness()
	c := h.start(t, sample)
	pid := h.procs.last().pid

	require.NoError(t, c.InsertHook(context.Background(), "HS0@0"))
	sess := h.hooks.Active(pid)
	sess.Fail()

	h.rec.waitFor(t, domain.EventError, 1)
	state, hook := c.State()
	assert.Equal(t, domain.GameRunning, state)
	assert.Equal(t, domain.HookFailed, hook)
	ev := h.rec.snapshot()[len(h.rec.snapshot())-1].payload.(domain.ErrorEvent)
	assert.Equal(t, "hook", ev.Kind)
	assert.Contains(t, ev.Message, domain.ErrSessionLost.Error())
	assert.Equal(t, domain.StatusDetached, sess.Status())
	assert.Nil(t, h.hooks.Active(pid))

	require.NoError(t, c.InsertHook(context.Background(), "HS4@0"))
	_, hook = c.State()
	assert.Equal(t, domain.HookActive, hook)

	require.NoError(t, c.Stop(context.Background()))
	assert.Equal(t, 1, h.rec.count(domain.EventError), "stopping does not report a lost session")
}

func TestInsertHookFailureKeepsGameRunning(t *testing.T) {
	h := newHarness()
	c := h.start(t, sample)
	pid := h.procs.last().pid

	h.hooks.FailNext(pid, domain.ErrPermissionDenied)
	err := c.InsertHook(context.Background(), "HS0@0")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	state, hook := c.State()
	assert.Equal(t, domain.GameRunning, state)
	assert.Equal(t, domain.HookFailed, hook)
	require.Equal(t, 1, h.rec.count(domain.EventError))

	err = c.InsertHook(context.Background(), "not a hook")
	assert.ErrorIs(t, err, domain.ErrUnsupportedTarget)
	assert.Equal(t, 2, h.rec.count(domain.EventError))

	require.NoError(t, c.InsertHook(context.Background(), "HS0@0"))
	_, hook = c.State()
	assert.Equal(t, domain.HookActive, hook)
}

func TestEmptyHookCodeIsIgnored(t *testing.T) {
	h := newHarness()
	c := h.start(t, sample)

	require.NoError(t, c.InsertHook(context.Background(), "  "))
	_, hook := c.State()
	assert.Equal(t, domain.HookNone, hook)
	assert.Empty(t, h.hooks.Sessions())
}

func TestInsertHookBeforeStart(t *testing.T) {
	h := newHarness()
	c := New(sample, h.deps, h.opts)
	err := c.InsertHook(context.Background(), "HS0@0")
	assert.ErrorIs(t, err, domain.ErrNotRunning)
}

func TestNoEventsAfterExited(t *testing.T) {
	h := newHarness()
	h.trans.hold = true
	c := h.start(t, sample)
	p := h.procs.last()
	require.NoError(t, c.InsertHook(context.Background(), "HS0@0"))

	require.True(t, h.hooks.Push(p.pid, []byte("line"), "utf-8"))
	h.rec.waitFor(t, domain.EventTextCaptured, 1)

	p.exit(0)
	waitDone(t, c)
	assert.False(t, h.hooks.Push(p.pid, []byte("late"), "utf-8"))

	h.trans.release()
	names := h.rec.names()
	assert.Equal(t, domain.EventGameExited, names[len(names)-1])
	assert.Zero(t, h.rec.count(domain.EventTranslated))
}

func TestDefaultHookAppliedAfterReadyDelay(t *testing.T) {
	h := newHarness()
	g := sample
	g.HookCode = "HS0@0;encoding=sjis"
	c := h.start(t, g)
	pid := h.procs.last().pid

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, 2))
	assert.Nil(t, h.hooks.Active(pid))

	h.clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return h.hooks.Active(pid) != nil }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "sjis", h.hooks.Active(pid).Descriptor().Encoding)

	require.Eventually(t, func() bool {
		_, hook := c.State()
		return hook == domain.HookActive
	}, time.Second, 5*time.Millisecond)
}
