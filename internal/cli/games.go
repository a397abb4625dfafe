package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"yagt/internal/domain"
)

func newGamesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Manage the game library",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List configured games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())
			games, err := c.Library.Games(cmd.Context())
			if err != nil {
				return err
			}
			printGames(e, games)
			return nil
		},
	}

	var g domain.Game
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or replace a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())
			g.Name = args[0]
			games, err := c.Library.AddGame(cmd.Context(), g)
			if err != nil {
				return err
			}
			printGames(e, games)
			return nil
		},
	}
	add.Flags().StringVar(&g.Path, "path", "", "game executable")
	add.Flags().StringSliceVar(&g.Args, "arg", nil, "launch argument (repeatable)")
	add.Flags().StringVar(&g.HookCode, "code", "", "hook code applied once the game is ready")
	add.Flags().StringVar(&g.Encoding, "encoding", "", "encoding of captured text")
	add.Flags().StringVar(&g.Wrapper, "wrapper", "", "launcher wrapping the executable")
	_ = add.MarkFlagRequired("path")

	remove := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a game by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())
			games, err := c.Library.RemoveGame(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printGames(e, games)
			return nil
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}

func printGames(e *env, games []domain.Game) {
	if len(games) == 0 {
		fmt.Fprintln(e.out, "No games configured.")
		return
	}
	w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPATH\tCODE")
	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%s\n", g.Name, g.Path, g.HookCode)
	}
	_ = w.Flush()
}
