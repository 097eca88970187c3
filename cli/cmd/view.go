package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"rtcview/cli/loader"
	"rtcview/cli/session"
	"rtcview/cli/telemetry"
	"rtcview/cli/tui"
)

func newViewCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Open test results in the dashboard",
		Long: `Open a test-results JSON file in the dashboard. Without a file the
import screen lets you browse for one or load a built-in sample.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return a.runViewer(path, watch)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the dashboard when the file changes")
	return cmd
}

var errWatchNeedsFile = errors.New("--watch needs a file argument")

func (a *app) runViewer(path string, watch bool) error {
	if watch && path == "" {
		return errWatchNeedsFile
	}

	store := session.New(a.cfg.SessionTTL)
	defer store.Close()

	startDir, _ := os.Getwd()
	opts := tui.Options{
		Store:     store,
		Metrics:   telemetry.New(),
		ExportDir: a.cfg.ExportDir,
		StartDir:  startDir,
	}

	var model tea.Model
	if path == "" {
		model = tui.NewViewerModel(opts)
	} else {
		// Load before taking over the terminal so errors print normally.
		start := time.Now()
		doc, err := loader.LoadReport(path)
		opts.Metrics.Observe("file", doc, err, time.Since(start))
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		if watch {
			w, err := tui.NewWatcher(path, a.cfg.WatchDebounce)
			if err != nil {
				return err
			}
			defer w.Close()
			opts.Watcher = w
			log.Info("watching for changes", "path", w.Path())
		}
		model = tui.NewViewerModelWithDocument(opts, doc)
	}

	a.quietForTUI()
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
