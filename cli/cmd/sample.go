package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rtcview/cli/format"
	"rtcview/cli/loader"
	"rtcview/cli/samples"
)

func newSampleCmd(a *app) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "sample [" + strings.Join(samples.Names(), "|") + "]",
		Short: "Print a built-in test-results document",
		Long: `Print one of the built-in demo documents as JSON. Without a name the
default_sample from the config file is used.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: samples.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, n := range samples.Names() {
					fmt.Fprintln(out, n)
				}
				return nil
			}

			name := a.cfg.DefaultSample
			if len(args) == 1 {
				name = args[0]
			}
			doc, err := loader.LoadSample(name)
			if err != nil {
				return err
			}
			data, err := format.ExportJSON(doc)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list the sample names")
	return cmd
}
