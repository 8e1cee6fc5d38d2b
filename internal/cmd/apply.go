package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/shipshape/internal/config"
	"github.com/harrison/shipshape/internal/executor"
	"github.com/harrison/shipshape/internal/filelock"
	"github.com/harrison/shipshape/internal/models"
	"github.com/harrison/shipshape/internal/planner"
	"github.com/harrison/shipshape/internal/report"
)

// ErrPartialFailure reports that an apply run finished but some actions
// failed. main maps it to exit code 2 so scripts can tell "rerun the
// failures" from "the run itself broke".
var ErrPartialFailure = errors.New("some actions failed")

// NewApplyCommand creates the apply command.
func NewApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [root]",
		Short: "Apply a fix plan to the filesystem",
		Long: `Apply executes a fix plan: renames and moves flagged files into the
target tree and skips non-keeper duplicates. Actions are isolated, so
one unreadable file never aborts the batch; failures are reported at
the end and the exit code is 2 when any action failed.

The plan comes either from a file written by 'shipshape plan --out',
or is built inline by scanning the given root against --target.
Concurrent applies are prevented with a lock file under the state
home.`,
		Example: `  shipshape apply --plan fixes.yaml
  shipshape apply /srv/share --target /srv/staging --mode move
  shipshape apply /srv/share --target /srv/staging --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: runApply,
	}

	cmd.Flags().String("plan", "", "Apply this plan file instead of scanning")
	cmd.Flags().String("target", "", "Target root when building the plan inline")
	cmd.Flags().String("mode", "", "How files reach the target: copy or move")
	cmd.Flags().Int("workers", 0, "Apply concurrency (0 = number of CPUs)")
	cmd.Flags().Bool("dry-run", false, "Log what would happen without touching any file")
	cmd.Flags().Bool("preserve-timestamps", false, "Carry source modification times onto copied targets")
	cmd.Flags().Bool("no-history", false, "Do not record this apply in the history database")

	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var workers *int
	var mode *string
	var preserve *bool
	if cmd.Flags().Changed("workers") {
		v, _ := cmd.Flags().GetInt("workers")
		workers = &v
	}
	if cmd.Flags().Changed("mode") {
		v, _ := cmd.Flags().GetString("mode")
		mode = &v
	}
	if cmd.Flags().Changed("preserve-timestamps") {
		v, _ := cmd.Flags().GetBool("preserve-timestamps")
		preserve = &v
	}
	cfg.MergeWithFlags(workers, nil, nil, mode, nil, preserve, nil)

	if err := cfg.Validate(); err != nil {
		return err
	}

	planPath, _ := cmd.Flags().GetString("plan")
	target, _ := cmd.Flags().GetString("target")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	switch {
	case planPath != "" && len(args) > 0:
		return errors.New("give either --plan or a root to scan, not both")
	case planPath == "" && len(args) == 0:
		return errors.New("apply needs --plan FILE, or a root and --target DIR")
	case planPath == "" && target == "":
		return errors.New("building a plan inline requires --target DIR")
	}

	useColor := colorEnabled(cmd)
	log, closeLog := buildLogger(cfg, cmd.ErrOrStderr())
	defer closeLog()

	ctx := cmd.Context()

	var plan *models.FixPlan
	scanID := ""
	if planPath != "" {
		plan, err = planner.LoadPlan(planPath)
		if err != nil {
			return err
		}
	} else {
		result, groups, scanErr := scanAndDetect(ctx, cfg, args[0], log, useColor)
		if scanErr != nil {
			return scanErr
		}
		rs, err := cfg.Ruleset()
		if err != nil {
			return err
		}
		plan, err = planner.New(rs, log).BuildPlan(result, result.Issues, groups, target)
		if err != nil {
			return err
		}
		scanID = result.ID
		if !noHistory && !dryRun {
			recordScan(ctx, cfg, report.Build(result, groups, nil), log)
		}
	}

	if len(plan.Actions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to apply: the plan has no actions.")
		return nil
	}

	execMode, err := executor.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	if !dryRun {
		lockPath, err := config.GetLockPath()
		if err != nil {
			return err
		}
		lock := filelock.NewRunLock(lockPath)
		if err := lock.Acquire(); err != nil {
			if errors.Is(err, filelock.ErrHeld) {
				return fmt.Errorf("another apply is already running (remove %s if that is stale)", lock.Path())
			}
			return err
		}
		defer lock.Release()
	}

	ex := executor.New(executor.Options{
		Mode:               execMode,
		Workers:            cfg.Workers,
		PreserveTimestamps: cfg.PreserveTimestamps,
		DryRun:             dryRun,
	}, log)
	progress := newProgressPrinter("Applying", "actions", useColor, log)
	ex.OnProgress(progress.update)

	result, execErr := ex.Execute(ctx, plan)
	progress.finish()
	if result == nil {
		return execErr
	}

	if s, ok := log.(applySummaryLogger); ok {
		s.LogApplySummary(*result)
	}
	if !noHistory && !dryRun {
		recordApply(ctx, cfg, scanID, string(execMode), result, log)
	}

	if execErr != nil {
		return execErr
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d actions failed: %w", result.Failed, result.Total, ErrPartialFailure)
	}

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintf(out, "Dry run: plan %s would run %d actions (%d skips).\n", plan.ID, result.Total, result.Skipped)
	} else {
		fmt.Fprintf(out, "Applied plan %s: %d actions succeeded, %d skipped.\n", plan.ID, result.Succeeded, result.Skipped)
	}
	return nil
}
