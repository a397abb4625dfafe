// Package bootstrap wires the application from process configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"yagt/internal/adapters/backend/registry"
	"yagt/internal/adapters/db/sqlite"
	"yagt/internal/adapters/hook/textractor"
	"yagt/internal/adapters/metrics"
	"yagt/internal/adapters/process"
	"yagt/internal/adapters/prompt"
	"yagt/internal/platform/config"
	"yagt/internal/platform/retry"
	"yagt/internal/ports"
	"yagt/internal/usecase/game"
	"yagt/internal/usecase/library"
	"yagt/internal/usecase/translator"
)

// Container holds every long-lived service. Tests swap the OS-facing
// collaborators through options.
type Container struct {
	Config *config.Config
	Log    *zap.SugaredLogger
	DB     *sql.DB

	Settings   *sqlite.SettingsRepo
	Dictionary *sqlite.DictionaryRepo
	Backends   *registry.Registry
	Library    *library.Service
	Manager    *translator.Manager
	Supervisor *game.Supervisor
	Events     *Emitter

	Processes ports.ProcessController
	Hooks     ports.HookInstaller
	Clock     clockwork.Clock

	metricsSrv *http.Server
}

type Option func(*Container)

func WithProcesses(p ports.ProcessController) Option {
	return func(c *Container) { c.Processes = p }
}

func WithHooks(h ports.HookInstaller) Option {
	return func(c *Container) { c.Hooks = h }
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Container) { c.Clock = clock }
}

// New opens the database, builds the services and loads backend settings
// into the translation manager. Backend configuration problems are logged,
// not fatal.
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, opts ...Option) (*Container, error) {
	db, err := sqlite.Init(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	c := &Container{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Settings:   sqlite.NewSettingsRepo(db),
		Dictionary: sqlite.NewDictionaryRepo(db),
		Events:     NewEmitter(log),
		Clock:      clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(c)
	}

	if c.Processes == nil {
		l := process.NewLauncher(log.Named("process"))
		if cfg.WrapperTimeout > 0 {
			l.WrapperTimeout = cfg.WrapperTimeout
		}
		c.Processes = l
	}
	if c.Hooks == nil {
		hooks, err := textractor.New(textractor.Options{
			HostPath:      cfg.ExtractorPath,
			Encoding:      cfg.ExtractorEncoding,
			AttachTimeout: cfg.AttachTimeout,
			Buffer:        cfg.CaptureBuffer,
			ReplaceActive: true,
			Alive:         c.Processes.Alive,
		}, log.Named("textractor"))
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		c.Hooks = hooks
	}

	c.Backends = registry.Default(c.Dictionary, prompt.New(c.Settings), log.Named("backend"))
	c.Library = library.New(c.Settings, log.Named("library"))
	c.Manager = translator.New(c.Backends, translator.Options{
		TargetLang: cfg.TargetLanguage,
		Workers:    cfg.TranslateWorkers,
		Timeout:    cfg.TranslateTimeout,
		Retry:      retry.Policy{MaxAttempts: 3, InitialBackoff: 250 * time.Millisecond, RateLimitBackoff: 2 * time.Second},
	}, log.Named("translator"))
	c.Supervisor = game.NewSupervisor(game.Deps{
		Processes:  c.Processes,
		Hooks:      c.Hooks,
		Translator: c.Manager,
		Emitter:    c.Events,
		Clock:      c.Clock,
		Log:        log.Named("game"),
	}, game.Options{LivenessInterval: cfg.LivenessInterval, ReadyDelay: cfg.ReadyDelay}, cfg.TeardownTimeout)

	if err := c.Library.Apply(ctx, c.Manager); err != nil {
		log.Warnw("backend configuration incomplete", "err", err)
	}

	if cfg.MetricsAddr != "" {
		c.startMetrics(cfg.MetricsAddr)
	}
	return c, nil
}

func (c *Container) startMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	c.metricsSrv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := c.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Log.Errorw("metrics listener stopped", "addr", addr, "err", err)
		}
	}()
	c.Log.Infow("serving metrics", "addr", addr)
}

// Close stops the running game, drains the translation manager and closes
// the database.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if err := c.Supervisor.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	c.Manager.Close()
	if c.metricsSrv != nil {
		if err := c.metricsSrv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.DB.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
