// Package cli is the headless command line front end.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"yagt/internal/bootstrap"
	"yagt/internal/platform/config"
	"yagt/internal/platform/logging"
)

// Loader supplies process configuration. Tests pass a fixed one.
type Loader func() (*config.Config, error)

type env struct {
	load Loader
	out  io.Writer
	opts []bootstrap.Option
}

// open builds a container for one command invocation.
func (e *env) open(ctx context.Context) (*bootstrap.Container, error) {
	cfg, err := e.load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, log, e.opts...)
}

// NewRootCmd assembles the command tree.
func NewRootCmd(load Loader, out io.Writer, opts ...bootstrap.Option) *cobra.Command {
	e := &env{load: load, out: out, opts: opts}
	root := &cobra.Command{
		Use:           "yagt-cli",
		Short:         "Run hooked games and translate captured text without the desktop window",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newRunCmd(e), newGamesCmd(e), newTranslateCmd(e), newDictCmd(e))
	return root
}

// Execute runs the CLI with configuration from the environment.
func Execute(ctx context.Context, out io.Writer) error {
	return NewRootCmd(config.Load, out).ExecuteContext(ctx)
}
