// Package walker enumerates a source tree and extracts file metadata with
// bounded parallelism. The walk is cancellable and failure-tolerant: an
// unreadable file still produces a record plus an issue, so downstream
// counts always add up.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/shipshape/internal/logger"
	"github.com/harrison/shipshape/internal/models"
)

// ProgressFunc receives (done, total) after each extracted file. Total is
// fixed by the enumeration pre-pass, so percentages are meaningful from the
// first call.
type ProgressFunc func(done, total int)

// Options controls walk behavior.
type Options struct {
	// Workers bounds extraction concurrency (0 = number of CPUs).
	Workers int

	// HashThreshold is the largest size, in bytes, that still gets
	// content-hashed. Larger files keep an empty hash and fall back to
	// name+size duplicate grouping. Zero disables hashing entirely.
	HashThreshold int64

	// IgnoreHidden skips dot-files and prunes dot-directories.
	IgnoreHidden bool
}

// Walker scans one root directory.
type Walker struct {
	root     string
	opts     Options
	logger   logger.Logger
	progress ProgressFunc
}

// New creates a Walker for the given root. A nil log disables logging.
func New(root string, opts Options, log logger.Logger) *Walker {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Walker{root: root, opts: opts, logger: log}
}

// OnProgress registers a progress callback. It is invoked from the
// collection loop, never concurrently with itself.
func (w *Walker) OnProgress(fn ProgressFunc) {
	w.progress = fn
}

type extractOutcome struct {
	record models.FileRecord
	issues []models.Issue
}

// Walk enumerates the tree, then extracts records concurrently. A missing
// or non-directory root is the one fatal error. On cancellation the partial
// result is returned with Incomplete set, alongside the context's error.
func (w *Walker) Walk(ctx context.Context) (*models.ScanResult, error) {
	startedAt := time.Now()

	root, err := filepath.Abs(w.root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}
	w.root = root

	w.logger.LogInfo(fmt.Sprintf("Enumerating %s", root))
	files, folders, enumErr := w.enumerate(ctx)
	total := len(files)
	w.logger.LogInfo(fmt.Sprintf("Found %d files in %d folders", total, folders))

	workers := w.opts.Workers
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
	resultsCh := make(chan extractOutcome, total)

	var wg sync.WaitGroup
	var launchErr error

	if enumErr != nil {
		// Enumeration was cut short; extract nothing and report what the
		// pre-pass managed to see.
		launchErr = enumErr
		goto launchComplete
	}

	for _, path := range files {
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
		go func(path string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			record, issues := w.extract(path)
			select {
			case resultsCh <- extractOutcome{record: record, issues: issues}:
			case <-ctx.Done():
			}
		}(path)
	}

launchComplete:
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	records := make([]models.FileRecord, 0, total)
	var issues []models.Issue
	done := 0
	for outcome := range resultsCh {
		records = append(records, outcome.record)
		issues = append(issues, outcome.issues...)
		done++
		if w.progress != nil {
			w.progress(done, total)
		}
	}

	// Workers finish in arbitrary order; sort for deterministic output.
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Path != issues[j].Path {
			return issues[i].Path < issues[j].Path
		}
		return issues[i].Kind < issues[j].Kind
	})

	result := &models.ScanResult{
		ID:         uuid.New().String(),
		Root:       root,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Records:    records,
		Issues:     issues,
		Stats:      models.ComputeStats(records, folders),
	}

	if launchErr != nil || ctx.Err() != nil {
		result.Incomplete = true
		w.logger.LogWarn(fmt.Sprintf("scan interrupted after %d of %d files", done, total))
		return result, ctx.Err()
	}

	w.logger.LogDebug(fmt.Sprintf("scan %s finished in %s", result.ID, time.Since(startedAt).Round(time.Millisecond)))
	return result, nil
}

// enumerate walks the tree once to collect file paths and count folders.
// Unreadable directories are logged and skipped; symlinks are never
// followed. The only error returned is context cancellation.
func (w *Walker) enumerate(ctx context.Context) ([]string, int, error) {
	var files []string
	folders := 0

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			w.logger.LogWarn(fmt.Sprintf("cannot read %s: %v", path, err))
			return nil
		}

		if path != w.root && w.opts.IgnoreHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			if path != w.root {
				folders++
			}
		case d.Type()&fs.ModeSymlink != 0:
			w.logger.LogDebug(fmt.Sprintf("skipping symlink %s", path))
		case d.Type().IsRegular():
			files = append(files, path)
		default:
			w.logger.LogDebug(fmt.Sprintf("skipping special file %s", path))
		}
		return nil
	})

	return files, folders, err
}
