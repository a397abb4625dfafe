package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dictcsv "yagt/internal/adapters/dictionary/csv"
)

func newDictCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Import or export the local backend's dictionary",
	}

	var lang string
	imp := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Load dictionary entries from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())
			if lang == "" {
				lang = c.Manager.TargetLanguage()
			}
			entries, err := dictcsv.Parse(data, lang)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			for _, en := range entries {
				if err := c.Dictionary.Put(cmd.Context(), en); err != nil {
					return err
				}
			}
			fmt.Fprintf(e.out, "imported %d entries\n", len(entries))
			return nil
		},
	}
	imp.Flags().StringVar(&lang, "lang", "", "target language for rows without a lang column")

	var sep string
	exp := &cobra.Command{
		Use:   "export",
		Short: "Write the dictionary as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())
			entries, err := c.Dictionary.List(cmd.Context(), lang, 0)
			if err != nil {
				return err
			}
			return dictcsv.Export(e.out, entries, sep)
		},
	}
	exp.Flags().StringVar(&lang, "lang", "", "only entries for this target language")
	exp.Flags().StringVar(&sep, "sep", "comma", "separator: comma, semicolon or tab")

	cmd.AddCommand(imp, exp)
	return cmd
}
