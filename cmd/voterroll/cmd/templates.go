package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// templatesCmd lists the available page layout templates.
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List page layout templates",
	Long: `List the builtin page layout templates and those loaded with --template-file.
Margins are in pixels at the calibration page size.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()
		reg, err := newRegistry(cfg, slog.Default())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tGRID\tLEFT\tRIGHT\tTOP\tBOTTOM\tCALIBRATION\tDEFAULT")
		for _, name := range reg.Names() {
			t, _ := reg.Get(name)
			def := ""
			if name == cfg.Template.Name {
				def = "*"
			}
			_, _ = fmt.Fprintf(w, "%s\t%dx%d\t%d\t%d\t%d\t%d\t%dx%d\t%s\n",
				t.Name, t.Rows, t.Cols, t.Left, t.Right, t.Top, t.Bottom,
				t.CalibratedWidth, t.CalibratedHeight, def)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.Flags().String("template-file", "", "YAML file with additional templates")
}
