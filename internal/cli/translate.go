package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTranslateCmd(e *env) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "translate <text>",
		Short: "Translate text with the configured backends",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())
			if lang != "" {
				c.Manager.SetTargetLanguage(lang)
			}
			res, err := c.Manager.TranslateWait(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !res.OK {
				return fmt.Errorf("translation failed: %s", res.Error)
			}
			fmt.Fprintf(e.out, "%s\t(%s)\n", res.Text, res.Backend)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "target language, overrides the saved default")
	return cmd
}
