package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"rtcview/cli/config"
)

// app carries state shared by every command of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg     config.Config
	logFile *os.File
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "rtcview",
		Short: "rtcview - Inspect WebRTC preflight test results",
		Long: `rtcview opens the JSON results of a WebRTC preflight test in a
terminal dashboard covering connectivity, audio, video, network, device and
ICE candidates. Results can be validated and exported as JSON, Markdown or CSV.

Run without arguments to pick a file or load a built-in sample.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runViewer("", false)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $RTCVIEW_CONFIG or "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newViewCmd(a),
		newValidateCmd(a),
		newExportCmd(a),
		newSampleCmd(a),
	)
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(cmd.Context(), a.configPath)
	} else {
		a.cfg, err = config.LoadFromEnv(cmd.Context())
	}
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		if _, err := log.ParseLevel(a.logLevel); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
		}
		a.cfg.LogLevel = a.logLevel
	}

	log.SetReportTimestamp(true)
	log.SetLevel(a.cfg.Level())
	log.SetOutput(cmd.ErrOrStderr())
	if a.cfg.LogFile != "" {
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		log.SetOutput(f)
	}
	log.Debug("config loaded", "level", a.cfg.LogLevel, "export_dir", a.cfg.ExportDir, "session_ttl", a.cfg.SessionTTL)
	return nil
}

func (a *app) teardown() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	log.SetOutput(os.Stderr)
	return err
}

// quietForTUI keeps log lines off the terminal while a full-screen program
// owns it. Only errors get through unless a log file is configured.
func (a *app) quietForTUI() {
	if a.logFile == nil {
		log.SetLevel(max(a.cfg.Level(), log.ErrorLevel))
	}
}
