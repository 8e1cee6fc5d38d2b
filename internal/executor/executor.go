// Package executor applies a fix plan to the filesystem with bounded
// parallelism. Actions are isolated: one failure becomes a per-file
// outcome and the batch continues. Cancellation is cooperative, checked
// between actions; an in-flight file operation always completes.
package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/harrison/shipshape/internal/logger"
	"github.com/harrison/shipshape/internal/models"
)

// Mode selects whether sources are copied or moved to their targets.
type Mode string

// Modes.
const (
	ModeCopy Mode = "copy"
	ModeMove Mode = "move"
)

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCopy, ModeMove:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown apply mode %q", s)
}

// ProgressFunc receives (done, total) after each completed action.
type ProgressFunc func(done, total int)

// Options controls plan execution.
type Options struct {
	// Mode is copy or move. Defaults to copy.
	Mode Mode

	// Workers bounds action concurrency (0 = number of CPUs).
	Workers int

	// PreserveTimestamps carries the source modification time onto
	// copied targets.
	PreserveTimestamps bool

	// DryRun logs what each action would do without touching the
	// filesystem. Outcomes report as if every action succeeded.
	DryRun bool
}

// Executor runs fix plans.
type Executor struct {
	opts     Options
	logger   logger.Logger
	progress ProgressFunc

	// mkdirMu serializes target directory creation; sibling actions
	// share parents.
	mkdirMu sync.Mutex
}

// New creates an Executor. A nil log disables logging.
func New(opts Options, log logger.Logger) *Executor {
	if opts.Mode == "" {
		opts.Mode = ModeCopy
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Executor{opts: opts, logger: log}
}

// OnProgress registers a progress callback. It is invoked from the
// collection loop, never concurrently with itself.
func (e *Executor) OnProgress(fn ProgressFunc) {
	e.progress = fn
}

type indexedOutcome struct {
	index   int
	outcome models.Outcome
}

// Execute runs every action in the plan and returns one outcome per
// action, in plan order. Actions not reached before cancellation report as
// skipped. The only error returned is the context's, on cancellation.
func (e *Executor) Execute(ctx context.Context, plan *models.FixPlan) (*models.ExecutionResult, error) {
	startedAt := time.Now()
	total := len(plan.Actions)

	e.logger.LogInfo(fmt.Sprintf("Applying plan %s: %d actions (%s mode)", plan.ID, total, e.opts.Mode))

	workers := e.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > total {
		workers = total
	}
	if workers == 0 {
		workers = 1
	}

	semaphore := make(chan struct{}, workers)
	resultsCh := make(chan indexedOutcome, total)

	var wg sync.WaitGroup
	var launchErr error

	for i := range plan.Actions {
		if err := ctx.Err(); err != nil {
			launchErr = err
			break
		}

		// Check context again before acquiring the semaphore to avoid
		// blocking on a cancelled context.
		select {
		case <-ctx.Done():
			launchErr = ctx.Err()
			goto launchComplete
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, action models.FixAction) {
			defer wg.Done()
			defer func() { <-semaphore }()

			outcome := e.executeAction(action)
			select {
			case resultsCh <- indexedOutcome{index: i, outcome: outcome}:
			case <-ctx.Done():
			}
		}(i, plan.Actions[i])
	}

launchComplete:
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	collected := make(map[int]models.Outcome, total)
	done := 0
	for res := range resultsCh {
		collected[res.index] = res.outcome
		done++
		if res.outcome.Status == models.OutcomeFailed {
			e.logger.LogWarn(fmt.Sprintf("failed: %s: %s", res.outcome.Source, res.outcome.Error))
		}
		if e.progress != nil {
			e.progress(done, total)
		}
	}

	result := &models.ExecutionResult{
		PlanID:    plan.ID,
		StartedAt: startedAt,
		Total:     total,
		Outcomes:  make([]models.Outcome, 0, total),
	}
	for i := range plan.Actions {
		outcome, ok := collected[i]
		if !ok {
			// Never dispatched; execution stopped before this action.
			outcome = models.Outcome{
				Source: plan.Actions[i].Source,
				Target: plan.Actions[i].Target,
				Status: models.OutcomeSkipped,
				Error:  "cancelled",
			}
		}
		result.Outcomes = append(result.Outcomes, outcome)
		switch outcome.Status {
		case models.OutcomeOK:
			result.Succeeded++
		case models.OutcomeFailed:
			result.Failed++
		case models.OutcomeSkipped:
			result.Skipped++
		}
	}
	result.Duration = time.Since(startedAt)

	if launchErr != nil || ctx.Err() != nil {
		result.Cancelled = true
		e.logger.LogWarn(fmt.Sprintf("apply cancelled after %d of %d actions", done, total))
		return result, ctx.Err()
	}

	e.logger.LogInfo(fmt.Sprintf("Apply finished: %d ok, %d failed, %d skipped in %s",
		result.Succeeded, result.Failed, result.Skipped, result.Duration.Round(time.Millisecond)))
	return result, nil
}

// executeAction performs one action and never panics the batch: every
// failure is folded into the returned outcome.
func (e *Executor) executeAction(action models.FixAction) models.Outcome {
	if action.Kind == models.ActionSkipDuplicate {
		return models.Outcome{
			Source: action.Source,
			Target: action.KeeperTarget,
			Status: models.OutcomeSkipped,
		}
	}

	outcome := models.Outcome{Source: action.Source, Target: action.Target}

	if e.opts.DryRun {
		e.logger.LogInfo(fmt.Sprintf("[dry-run] would %s %s -> %s", e.opts.Mode, action.Source, action.Target))
		outcome.Status = models.OutcomeOK
		return outcome
	}

	if err := e.prepareTargetDir(action.Target); err != nil {
		outcome.Status = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	var err error
	switch e.opts.Mode {
	case ModeMove:
		err = moveFile(action.Source, action.Target, e.opts.PreserveTimestamps)
	default:
		err = copyFile(action.Source, action.Target, e.opts.PreserveTimestamps)
	}
	if err != nil {
		outcome.Status = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Status = models.OutcomeOK
	return outcome
}

func (e *Executor) prepareTargetDir(target string) error {
	e.mkdirMu.Lock()
	defer e.mkdirMu.Unlock()
	return ensureDir(filepath.Dir(target))
}
