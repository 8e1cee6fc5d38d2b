package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/shipshape/internal/logger"
	"github.com/harrison/shipshape/internal/report"
	"github.com/harrison/shipshape/internal/watch"
)

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "Scan a tree and summarize migration issues",
		Long: `Scan walks the given root concurrently, collects file metadata,
runs every detector and prints a readiness summary. Finding issues is
a normal outcome; the command only fails when the scan itself cannot
run.

Each scan is recorded in the history database unless --no-history is
given, so it can be re-rendered later with 'shipshape report'.`,
		Example: `  shipshape scan /srv/share
  shipshape scan /srv/share --workers 16 --json report.json
  shipshape scan /srv/share --watch`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().Int("workers", 0, "Scan concurrency (0 = number of CPUs)")
	cmd.Flags().Int("hash-threshold", 0, "Largest file size in MiB that still gets content-hashed")
	cmd.Flags().Bool("ignore-hidden", false, "Skip dot-files and dot-directories")
	cmd.Flags().String("json", "", "Also write the full JSON report to this file")
	cmd.Flags().Bool("watch", false, "Keep watching the root and rescan after changes settle")
	cmd.Flags().Bool("no-history", false, "Do not record this scan in the history database")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var workers, hashThreshold *int
	var ignoreHidden *bool
	if cmd.Flags().Changed("workers") {
		v, _ := cmd.Flags().GetInt("workers")
		workers = &v
	}
	if cmd.Flags().Changed("hash-threshold") {
		v, _ := cmd.Flags().GetInt("hash-threshold")
		hashThreshold = &v
	}
	if cmd.Flags().Changed("ignore-hidden") {
		v, _ := cmd.Flags().GetBool("ignore-hidden")
		ignoreHidden = &v
	}
	cfg.MergeWithFlags(workers, hashThreshold, nil, nil, ignoreHidden, nil, nil)

	if err := cfg.Validate(); err != nil {
		return err
	}

	jsonPath, _ := cmd.Flags().GetString("json")
	watchMode, _ := cmd.Flags().GetBool("watch")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	useColor := colorEnabled(cmd)
	log, closeLog := buildLogger(cfg, cmd.ErrOrStderr())
	defer closeLog()

	ctx := cmd.Context()
	root := args[0]

	runOnce := func() error {
		result, groups, scanErr := scanAndDetect(ctx, cfg, root, log, useColor)
		if result == nil {
			return scanErr
		}

		summary := report.Build(result, groups, nil)
		log.LogInfo("Issues found: " + logger.FormatIssueCounts(summary.CriticalCount, summary.WarningCount, summary.DuplicateGroupCount))
		if !noHistory {
			recordScan(ctx, cfg, summary, log)
		}
		if jsonPath != "" {
			if err := report.Export(jsonPath, summary, report.FormatJSON); err != nil {
				return err
			}
			log.LogInfo(fmt.Sprintf("JSON report written to %s", jsonPath))
		}
		if err := report.RenderText(cmd.OutOrStdout(), summary, useColor); err != nil {
			return err
		}
		return scanErr
	}

	if err := runOnce(); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}

	w, err := watch.New(root, cfg.WatchDebounce, cfg.IgnoreHidden, log)
	if err != nil {
		return err
	}
	defer w.Close()

	log.LogInfo(fmt.Sprintf("Watching %s (debounce %s); press Ctrl-C to stop", w.Root(), cfg.WatchDebounce))
	for {
		select {
		case <-ctx.Done():
			// Interrupting watch mode is how the user stops it.
			return nil
		case <-w.Triggers():
			log.LogInfo("Change detected, rescanning")
			if err := runOnce(); err != nil && !errors.Is(err, context.Canceled) {
				log.LogError(fmt.Sprintf("Rescan failed: %v", err))
			}
		case err := <-w.Errors():
			log.LogWarn(fmt.Sprintf("Watch error: %v", err))
		}
	}
}
