// Package translator routes captured text through the configured backends.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"yagt/internal/adapters/metrics"
	"yagt/internal/domain"
	"yagt/internal/platform/retry"
	"yagt/internal/ports"
)

// Builder constructs an uninitialized backend for a config entry.
type Builder interface {
	Build(cfg domain.BackendConfig) (ports.Backend, error)
}

type Options struct {
	TargetLang string
	Workers    int
	Timeout    time.Duration // per backend call
	Retry      retry.Policy  // applied to transient failures of one backend
}

// Callback receives the single terminal result of a request. It runs on the
// caller's goroutine for cache hits and on a manager goroutine otherwise.
type Callback = func(domain.TranslationResult)

type BackendStatus struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Kind     string `json:"kind"` // translator or api
	Disabled bool   `json:"disabled"`
}

type entry struct {
	backend  ports.Backend
	cfg      domain.BackendConfig
	kind     string
	disabled atomic.Bool
}

type Manager struct {
	builder Builder
	opts    Options
	log     *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	group  singleflight.Group
	wg     sync.WaitGroup

	mu          sync.Mutex
	translators []*entry
	apis        []*entry
	cache       map[string]domain.TranslationResult
	generation  uint64
	targetLang  string
}

func New(builder Builder, opts Options, log *zap.SugaredLogger) *Manager {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Policy{MaxAttempts: 3, InitialBackoff: 250 * time.Millisecond}
	}
	if opts.TargetLang == "" {
		opts.TargetLang = "en"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		builder:    builder,
		opts:       opts,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
		sem:        semaphore.NewWeighted(int64(opts.Workers)),
		cache:      make(map[string]domain.TranslationResult),
		targetLang: opts.TargetLang,
	}
}

// InitializeAPIs replaces the online API backends. Entries that fail to build
// are skipped; entries that fail to initialize stay in the list and report
// NotInitialized. The returned error joins every such failure.
func (m *Manager) InitializeAPIs(ctx context.Context, cfgs []domain.BackendConfig) error {
	list, err := m.build(ctx, "api", cfgs)
	m.mu.Lock()
	m.apis = list
	m.mu.Unlock()
	return err
}

// InitializeTranslators replaces the local translator backends. They are
// tried before the online APIs.
func (m *Manager) InitializeTranslators(ctx context.Context, cfgs []domain.BackendConfig) error {
	list, err := m.build(ctx, "translator", cfgs)
	m.mu.Lock()
	m.translators = list
	m.mu.Unlock()
	return err
}

func (m *Manager) build(ctx context.Context, kind string, cfgs []domain.BackendConfig) ([]*entry, error) {
	var (
		out  []*entry
		errs []error
	)
	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		b, err := m.builder.Build(cfg)
		if err != nil {
			m.log.Warnw("skipping backend", "kind", kind, "name", cfg.Name, "type", cfg.Type, "err", err)
			errs = append(errs, err)
			continue
		}
		if err := b.Initialize(ctx, cfg); err != nil {
			m.log.Warnw("backend failed to initialize", "kind", kind, "name", b.Name(), "err", err)
			errs = append(errs, err)
		}
		out = append(out, &entry{backend: b, cfg: cfg, kind: kind})
	}
	m.log.Infow("backends initialized", "kind", kind, "count", len(out))
	return out, errors.Join(errs...)
}

func (m *Manager) SetTargetLanguage(lang string) {
	if lang == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targetLang = lang
}

func (m *Manager) TargetLanguage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.targetLang
}

func (m *Manager) Backends() []BackendStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BackendStatus, 0, len(m.translators)+len(m.apis))
	for _, e := range append(append([]*entry(nil), m.translators...), m.apis...) {
		out = append(out, BackendStatus{Name: e.backend.Name(), Type: e.cfg.Type, Kind: e.kind, Disabled: e.disabled.Load()})
	}
	return out
}

// Translate never blocks on a backend. Empty text is dropped without a
// callback. Concurrent requests for the same text share one backend call.
func (m *Manager) Translate(text string, cb Callback) {
	normalized := Normalize(text)
	if normalized == "" {
		m.log.Debugw("dropping empty text", "raw_len", len(text))
		metrics.TranslationRequests.WithLabelValues("dropped").Inc()
		return
	}

	m.mu.Lock()
	backends := make([]*entry, 0, len(m.translators)+len(m.apis))
	backends = append(append(backends, m.translators...), m.apis...)
	req := domain.TranslationRequest{Text: normalized, TargetLang: m.targetLang, Backends: backendNames(backends)}
	key := cacheKey(req.TargetLang, normalized)
	if r, ok := m.cache[key]; ok {
		m.mu.Unlock()
		metrics.TranslationRequests.WithLabelValues("cache_hit").Inc()
		r.Request, r.FromCache = req, true
		cb(r)
		return
	}
	gen := m.generation
	m.mu.Unlock()

	ch := m.group.DoChan(fmt.Sprintf("%d\x00%s", gen, key), func() (any, error) {
		return m.resolve(gen, key, req, backends), nil
	})
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		res := <-ch
		r := res.Val.(domain.TranslationResult)
		r.Request = req
		cb(r)
	}()
}

func backendNames(backends []*entry) []string {
	names := make([]string, len(backends))
	for i, e := range backends {
		names[i] = e.backend.Name()
	}
	return names
}

// TranslateWait is Translate for callers that want the result inline.
func (m *Manager) TranslateWait(ctx context.Context, text string) (domain.TranslationResult, error) {
	done := make(chan domain.TranslationResult, 1)
	if Normalize(text) == "" {
		return domain.TranslationResult{}, fmt.Errorf("empty text: %w", domain.ErrNoTranslation)
	}
	m.Translate(text, func(r domain.TranslationResult) { done <- r })
	select {
	case r := <-done:
		return r, nil
	case <-ctx.Done():
		return domain.TranslationResult{}, ctx.Err()
	}
}

func (m *Manager) resolve(gen uint64, key string, req domain.TranslationRequest, backends []*entry) domain.TranslationResult {
	m.mu.Lock()
	if r, ok := m.cache[key]; ok && m.generation == gen {
		m.mu.Unlock()
		r.FromCache = true
		return r
	}
	m.mu.Unlock()

	if err := m.sem.Acquire(m.ctx, 1); err != nil {
		metrics.TranslationRequests.WithLabelValues("failed").Inc()
		return domain.Failed(req, err)
	}
	defer m.sem.Release(1)

	var (
		lastErr error
		tried   int
	)
	for _, e := range backends {
		if e.disabled.Load() {
			continue
		}
		tried++
		name := e.backend.Name()
		start := time.Now()
		out, err := retry.Do(m.ctx, m.retryPolicy(name), classify, func(ctx context.Context) (string, error) {
			cctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
			defer cancel()
			return e.backend.Translate(cctx, req.Text, req.TargetLang)
		})
		metrics.BackendLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err == nil && strings.TrimSpace(out) == "" {
			err = &domain.BackendError{Backend: name, Err: domain.ErrNoTranslation}
		}
		if err == nil {
			metrics.BackendCalls.WithLabelValues(name, "ok").Inc()
			metrics.TranslationRequests.WithLabelValues("ok").Inc()
			res := domain.TranslationResult{Request: req, Text: out, Backend: name, OK: true}
			m.mu.Lock()
			if m.generation == gen {
				m.cache[key] = res
			}
			m.mu.Unlock()
			return res
		}

		metrics.BackendCalls.WithLabelValues(name, "error").Inc()
		lastErr = err
		if domain.DisablesBackend(err) {
			e.disabled.Store(true)
			m.log.Warnw("disabling backend until reconfigured", "backend", name, "err", err)
			continue
		}
		m.log.Debugw("backend failed, trying next", "backend", name, "err", err)
	}

	metrics.TranslationRequests.WithLabelValues("failed").Inc()
	if tried == 0 {
		return domain.Failed(req, domain.ErrNoBackends)
	}
	m.log.Infow("translation failed on every backend", "text_len", len(req.Text), "err", lastErr)
	return domain.Failed(req, fmt.Errorf("%w: %w", domain.ErrBackendsExhausted, lastErr))
}

func (m *Manager) retryPolicy(backend string) retry.Policy {
	p := m.opts.Retry
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		m.log.Debugw("retrying backend", "backend", backend, "attempt", attempt, "backoff", backoff, "err", err)
	}
	return p
}

func classify(err error) retry.Action {
	if domain.IsTransient(err) {
		return retry.Retry
	}
	return retry.Stop
}

// EndSession discards the cache. Requests in flight still deliver their
// results but no longer populate the cache.
func (m *Manager) EndSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.cache = make(map[string]domain.TranslationResult)
}

// Close cancels outstanding work and waits for pending callbacks.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}
