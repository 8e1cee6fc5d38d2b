// Package cmd implements the shipshape command-line interface.
package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/shipshape/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewRootCommand creates the root shipshape command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shipshape",
		Short: "Prepare a file share for migration",
		Long: `Shipshape gets an on-premises file share ready for migration to a
SharePoint-style destination.

It scans a directory tree concurrently, flags names and paths the
destination would reject, finds duplicate content, builds a
deterministic fix plan, and applies that plan with per-file failure
isolation. Every run can be rendered as text, Markdown, JSON or HTML
and is recorded in a local history database for later review.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// The color library detects NO_COLOR and non-TTY output on
			// its own; the flag is the one signal it cannot see.
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file path (default: $SHIPSHAPE_HOME/config.yaml)")
	cmd.PersistentFlags().String("verbosity", "", "Log verbosity: trace, debug, info, warn or error")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewPlanCommand())
	cmd.AddCommand(NewApplyCommand())
	cmd.AddCommand(NewReportCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

// loadConfig resolves configuration for a command invocation: built-in
// defaults, then the config file, then persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if verbosity, _ := cmd.Flags().GetString("verbosity"); verbosity != "" {
		cfg.LogLevel = verbosity
	}
	return cfg, nil
}

// colorEnabled reports whether command output should use ANSI color.
func colorEnabled(cmd *cobra.Command) bool {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}
