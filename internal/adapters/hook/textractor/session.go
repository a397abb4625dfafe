package textractor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/transform"

	"yagt/internal/adapters/metrics"
	"yagt/internal/domain"
	"yagt/internal/textcodec"
)

type session struct {
	id       string
	pid      int
	desc     domain.HookDescriptor
	encoding string

	cmd   *exec.Cmd
	stdin io.WriteCloser

	out      chan domain.CapturedText
	console  chan string
	readDone chan struct{}
	exited   chan struct{}

	stopped  atomic.Bool
	dropped  atomic.Uint64
	stopOnce sync.Once
	writeMu  sync.Mutex

	mu     sync.Mutex
	status domain.HookStatus
}

func newSession(id string, pid int, d domain.HookDescriptor, encoding string, buffer int, cmd *exec.Cmd, stdin io.WriteCloser) *session {
	return &session{
		id:       id,
		pid:      pid,
		desc:     d,
		encoding: encoding,
		cmd:      cmd,
		stdin:    stdin,
		out:      make(chan domain.CapturedText, buffer),
		console:  make(chan string, 16),
		readDone: make(chan struct{}),
		exited:   make(chan struct{}),
		status:   domain.StatusPending,
	}
}

func (s *session) ID() string                           { return s.id }
func (s *session) PID() int                             { return s.pid }
func (s *session) Descriptor() domain.HookDescriptor    { return s.desc }
func (s *session) Captures() <-chan domain.CapturedText { return s.out }

func (s *session) Status() domain.HookStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *session) setStatus(st domain.HookStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == domain.StatusDetached && st != domain.StatusFailed {
		return
	}
	s.status = st
}

func (s *session) send(line string) error {
	b, err := textcodec.Encode(line+"\n", s.encoding)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = s.stdin.Write(b)
	return err
}

// handshake waits for the host to confirm or reject the hook. Silence until
// the timeout counts as success: not every host build reports insertion.
func (s *session) handshake(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case msg := <-s.console:
			ok, err := consoleVerdict(msg)
			if err != nil {
				return fmt.Errorf("%w: %s", err, msg)
			}
			if ok {
				return nil
			}
		case <-s.readDone:
			return errHostExited
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// read is the only sender on s.out and closes it on exit. It never blocks on
// the consumer: a full buffer drops the capture.
func (s *session) read(stdout io.Reader, log *zap.SugaredLogger) {
	defer close(s.readDone)
	defer close(s.out)
	defer s.setStatus(domain.StatusDetached)

	var r io.Reader = stdout
	if enc, _ := textcodec.Lookup(s.encoding); enc != nil {
		r = transform.NewReader(stdout, enc.NewDecoder())
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var seq uint64
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\x00")
		tl, ok := parseLine(line)
		if !ok {
			continue
		}
		if tl.Name == consoleThread {
			log.Debugw("extractor console", "pid", s.pid, "msg", tl.Text)
			select {
			case s.console <- tl.Text:
			default:
			}
			continue
		}
		if tl.PID != s.pid || s.stopped.Load() {
			continue
		}
		if thread := s.desc.Param("thread"); thread != "" && !strings.EqualFold(thread, tl.Name) {
			continue
		}
		seq++
		c := domain.CapturedText{Seq: seq, Data: []byte(tl.Text), Encoding: textcodec.UTF8, Thread: tl.Name, At: time.Now()}
		select {
		case s.out <- c:
		default:
			n := s.dropped.Add(1)
			log.Warnw("capture buffer full, dropping text", "pid", s.pid, "seq", seq, "dropped", n)
			metrics.CaptureDrops.WithLabelValues("buffer_full").Inc()
		}
	}
	if err := sc.Err(); err != nil && !s.stopped.Load() {
		log.Warnw("extractor host read failed", "pid", s.pid, "err", err)
	}
}

func (s *session) reap() {
	<-s.readDone
	_ = s.cmd.Wait()
	close(s.exited)
}

// stop detaches the session. It reports whether this call did the work.
// When it returns the reader has exited and the capture channel is closed
// and drained.
func (s *session) stop(timeout time.Duration, log *zap.SugaredLogger) bool {
	first := false
	s.stopOnce.Do(func() {
		first = true
		s.stopped.Store(true)
		_ = s.send(detachCmd(s.pid))
		_ = s.stdin.Close()

		select {
		case <-s.exited:
		case <-time.After(timeout):
			log.Warnw("extractor host did not exit, killing", "pid", s.pid, "session", s.id)
			_ = s.cmd.Process.Kill()
			<-s.exited
		}
		for range s.out {
		}
		s.setStatus(domain.StatusDetached)
	})
	return first
}
