// Package remote implements HTTP translation backends: the Google gtx
// endpoint and the OpenRouter and Ollama chat APIs.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"yagt/internal/adapters/metrics"
	"yagt/internal/domain"
	"yagt/internal/ports"
)

const (
	TypeGoogle     = "google"
	TypeOpenRouter = "openrouter"
	TypeOllama     = "ollama"
)

// Backend is safe for concurrent use. Initialize swaps the whole client
// state; calls already in flight keep the state they started with.
type Backend struct {
	name    string
	prompts ports.PromptRenderer
	log     *zap.SugaredLogger

	mu    sync.RWMutex
	state *clientState
}

type clientState struct {
	cfg     domain.BackendConfig
	http    *resty.Client
	limiter *rate.Limiter
	breaker circuitbreaker.CircuitBreaker[any]
}

var (
	_ ports.Backend       = (*Backend)(nil)
	_ ports.BackendTester = (*Backend)(nil)
)

func New(name string, prompts ports.PromptRenderer, log *zap.SugaredLogger) *Backend {
	return &Backend{name: name, prompts: prompts, log: log}
}

func (b *Backend) Name() string { return b.name }

func (b *Backend) Initialize(_ context.Context, cfg domain.BackendConfig) error {
	typ := strings.ToLower(cfg.Type)
	switch typ {
	case TypeGoogle, TypeOllama:
	case TypeOpenRouter:
		if cfg.APIKey == "" {
			return &domain.ConfigError{Section: "onlineApis." + b.name, Err: errors.New("api key is required")}
		}
	default:
		return &domain.ConfigError{Section: "onlineApis." + b.name, Err: fmt.Errorf("unsupported remote type %q", cfg.Type)}
	}
	cfg.Type = typ

	timeout := 20 * time.Second
	if v := cfg.Options["timeout"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &domain.ConfigError{Section: "onlineApis." + b.name, Err: fmt.Errorf("timeout: %w", err)}
		}
		timeout = d
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	name := b.name
	breaker := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 30*time.Second).
		WithDelay(15 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			b.log.Warnw("backend circuit breaker state changed", "backend", name, "from", e.OldState.String(), "to", e.NewState.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(e.NewState))
		}).
		Build()

	st := &clientState{
		cfg:     cfg,
		http:    resty.New().SetTimeout(timeout),
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
	}
	b.mu.Lock()
	b.state = st
	b.mu.Unlock()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return nil
}

func (b *Backend) snapshot() *clientState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Backend) Translate(ctx context.Context, text, targetLang string) (string, error) {
	st := b.snapshot()
	if st == nil {
		return "", b.fail(0, domain.ErrNotInitialized)
	}
	if err := st.limiter.Wait(ctx); err != nil {
		return "", b.fail(0, fmt.Errorf("%w: rate limiter: %w", domain.ErrNetwork, err))
	}
	if !st.breaker.TryAcquirePermit() {
		return "", b.fail(0, fmt.Errorf("%w: %w", domain.ErrNetwork, circuitbreaker.ErrOpen))
	}

	var (
		out string
		err error
	)
	switch st.cfg.Type {
	case TypeGoogle:
		out, err = b.translateGoogle(ctx, st, text, targetLang)
	case TypeOpenRouter:
		out, err = b.translateOpenRouter(ctx, st, text, targetLang)
	case TypeOllama:
		out, err = b.translateOllama(ctx, st, text, targetLang)
	}
	if err != nil && errors.Is(err, domain.ErrNetwork) {
		st.breaker.RecordError(err)
	} else {
		st.breaker.RecordSuccess()
	}
	return out, err
}

// Test checks the endpoint without translating user text.
func (b *Backend) Test(ctx context.Context) error {
	st := b.snapshot()
	if st == nil {
		return b.fail(0, domain.ErrNotInitialized)
	}
	if st.cfg.Type == TypeGoogle {
		_, err := b.translateGoogle(ctx, st, "test", "en")
		return err
	}
	_, err := b.ListModels(ctx)
	return err
}

// classify maps a transport result onto the backend error taxonomy.
func (b *Backend) classify(r *resty.Response, err error) error {
	if err != nil {
		return b.fail(0, fmt.Errorf("%w: %w", domain.ErrNetwork, err))
	}
	code := r.StatusCode()
	switch {
	case code == 401 || code == 403:
		return b.fail(code, fmt.Errorf("%w: %s", domain.ErrAuth, abbreviate(r.String(), 200)))
	case code == 429:
		return b.fail(code, fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, abbreviate(r.String(), 200)))
	case code >= 500:
		return b.fail(code, fmt.Errorf("%w: %s", domain.ErrNetwork, r.Status()))
	case r.IsError():
		return b.fail(code, fmt.Errorf("unexpected response: %s", abbreviate(r.String(), 200)))
	}
	return nil
}

func (b *Backend) fail(code int, err error) error {
	return &domain.BackendError{Backend: b.name, StatusCode: code, Err: err}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}
