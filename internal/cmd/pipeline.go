package cmd

import (
	"context"
	"fmt"

	"github.com/harrison/shipshape/internal/config"
	"github.com/harrison/shipshape/internal/detect"
	"github.com/harrison/shipshape/internal/history"
	"github.com/harrison/shipshape/internal/logger"
	"github.com/harrison/shipshape/internal/models"
	"github.com/harrison/shipshape/internal/report"
	"github.com/harrison/shipshape/internal/walker"
)

// scanAndDetect walks root and runs the detectors, attaching the combined
// issue set to the returned result. On cancellation the partial result
// accumulated so far is returned alongside the context error, analyzed and
// flagged as incomplete.
func scanAndDetect(ctx context.Context, cfg *config.Config, root string, log logger.Logger, useColor bool) (*models.ScanResult, []models.DuplicateGroup, error) {
	runner, err := detect.NewRunner(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	w := walker.New(root, walker.Options{
		Workers:       cfg.Workers,
		HashThreshold: cfg.HashThresholdBytes(),
		IgnoreHidden:  cfg.IgnoreHidden,
	}, log)

	progress := newProgressPrinter("Scanning", "files", useColor, log)
	w.OnProgress(progress.update)

	result, walkErr := w.Walk(ctx)
	progress.finish()
	if result == nil {
		return nil, nil, walkErr
	}

	issues, groups := runner.Analyze(result)
	result.Issues = issues
	return result, groups, walkErr
}

// openHistory opens the history store at the configured path.
func openHistory(cfg *config.Config) (*history.Store, error) {
	dbPath := cfg.History.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = config.GetHistoryDBPath()
		if err != nil {
			return nil, err
		}
	}
	return history.NewStore(dbPath)
}

// recordScan stores a scan summary in the history database and prunes old
// entries. History failures are logged and swallowed; recording a run must
// never fail the run itself.
func recordScan(ctx context.Context, cfg *config.Config, summary *report.Summary, log logger.Logger) {
	if !cfg.History.Enabled {
		return
	}

	store, err := openHistory(cfg)
	if err != nil {
		log.LogWarn(fmt.Sprintf("History unavailable: %v", err))
		return
	}
	defer store.Close()

	if err := store.RecordScan(ctx, summary); err != nil {
		log.LogWarn(fmt.Sprintf("Failed to record scan: %v", err))
		return
	}
	if err := store.Prune(ctx, cfg.History.KeepRuns); err != nil {
		log.LogWarn(fmt.Sprintf("Failed to prune history: %v", err))
	}
}

// recordApply stores an apply result in the history database. scanID links
// the apply to a recorded scan and may be empty when the plan came from a
// file.
func recordApply(ctx context.Context, cfg *config.Config, scanID, mode string, result *models.ExecutionResult, log logger.Logger) {
	if !cfg.History.Enabled {
		return
	}

	store, err := openHistory(cfg)
	if err != nil {
		log.LogWarn(fmt.Sprintf("History unavailable: %v", err))
		return
	}
	defer store.Close()

	if err := store.RecordApply(ctx, scanID, mode, result); err != nil {
		log.LogWarn(fmt.Sprintf("Failed to record apply: %v", err))
	}
}
