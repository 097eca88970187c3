package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"rtcview/cli/loader"
	"rtcview/cli/telemetry"
	"rtcview/schema"
)

func newValidateCmd(a *app) *cobra.Command {
	var textfile string

	cmd := &cobra.Command{
		Use:   "validate [file1] [file2] ...",
		Short: "Check that files are test results",
		Long: `Check each file against the legacy and new test-results formats and
print the detected format and any data-quality issues. The command fails if
any file is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics := telemetry.New()
			failed := 0
			for _, path := range args {
				start := time.Now()
				doc, err := loader.LoadReport(path)
				metrics.Observe("file", doc, err, time.Since(start))
				if err != nil {
					failed++
				}
				printDecision(cmd.OutOrStdout(), path, doc, err)
			}

			if textfile != "" {
				if err := metrics.WriteTextfile(textfile); err != nil {
					return fmt.Errorf("failed to write metrics: %w", err)
				}
				log.Debug("metrics written", "path", textfile)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files rejected", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&textfile, "metrics-textfile", "", "write import counters to this file in Prometheus text format")
	return cmd
}

func printDecision(w io.Writer, path string, doc *schema.Document, err error) {
	if err != nil {
		fmt.Fprintf(w, "✗ %s: %s\n", path, loader.UserMessage(err))
		fmt.Fprintf(w, "    %v\n", err)
		return
	}
	fmt.Fprintf(w, "✓ %s: accepted (%s format)\n", path, doc.Variant())
	for _, is := range doc.Issues {
		fmt.Fprintf(w, "    ! %s\n", is)
	}
}
