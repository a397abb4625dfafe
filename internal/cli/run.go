package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"yagt/internal/domain"
)

func newRunCmd(e *env) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "run <game>",
		Short: "Launch a game from the library and print captured text until it exits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := e.open(ctx)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = c.Close(closeCtx)
			}()

			c.Events.Set(&printer{out: e.out})
			g, err := c.Library.Game(ctx, args[0])
			if err != nil {
				return err
			}
			if code != "" {
				g.HookCode = code
			}
			ctrl, err := c.Supervisor.Run(ctx, g)
			if err != nil {
				return err
			}
			select {
			case <-ctrl.Done():
			case <-ctx.Done():
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "hook code, overrides the game's saved code")
	return cmd
}

// printer writes presentation events as plain lines.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printer) Emit(name string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch ev := payload.(type) {
	case domain.StartedEvent:
		fmt.Fprintf(p.out, "started %s pid=%d\n", ev.Game, ev.PID)
	case domain.TextEvent:
		fmt.Fprintf(p.out, "< %s\n", ev.Text)
	case domain.TranslatedEvent:
		if ev.Result.OK {
			fmt.Fprintf(p.out, "> %s\n", ev.Result.Text)
		} else {
			fmt.Fprintf(p.out, "! %s\n", ev.Result.Error)
		}
	case domain.ErrorEvent:
		fmt.Fprintf(p.out, "error %s: %s\n", ev.Kind, ev.Message)
	case domain.ExitedEvent:
		fmt.Fprintf(p.out, "exited %s (%s)\n", ev.Game, ev.Reason)
	default:
		fmt.Fprintf(p.out, "%s %v\n", name, payload)
	}
}
