package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"rtcview/cli/format"
	"rtcview/cli/loader"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		kindName string
		output   string
		save     bool
	)

	kinds := make([]string, len(format.Kinds))
	for i, k := range format.Kinds {
		kinds[i] = string(k)
	}

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export test results as JSON, Markdown or CSV",
		Long: `Export a test-results file. JSON output is the original document,
pretty-printed. Markdown and CSV summarize the derived metrics.

Output goes to stdout unless -o is given. --save writes into the configured
export directory using the dated default file name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := format.ParseKind(kindName)
			if err != nil {
				return err
			}
			if save && output != "" {
				return fmt.Errorf("--save and -o cannot be used together")
			}

			doc, err := loader.LoadReport(args[0])
			if err != nil {
				return err
			}

			if save {
				path, err := format.Save(a.cfg.ExportDir, doc, kind, time.Now())
				if err != nil {
					return err
				}
				log.Info("saved", "kind", kind, "path", path)
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			data, err := format.Render(doc, kind, time.Now())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			log.Info("exported", "kind", kind, "path", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindName, "format", "f", string(format.KindJSON), "output format: "+strings.Join(kinds, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&save, "save", false, "write to the export directory with the default file name")
	return cmd
}
