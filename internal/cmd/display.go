package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/harrison/shipshape/internal/config"
	"github.com/harrison/shipshape/internal/logger"
	"github.com/harrison/shipshape/internal/models"
)

// multiLogger fans every log call out to a set of loggers, typically
// console plus file.
type multiLogger struct {
	loggers []logger.Logger
}

func (m *multiLogger) LogTrace(message string) {
	for _, l := range m.loggers {
		l.LogTrace(message)
	}
}

func (m *multiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

func (m *multiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

func (m *multiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

func (m *multiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

type applySummaryLogger interface {
	LogApplySummary(result models.ExecutionResult)
}

// LogApplySummary forwards to every logger that renders apply summaries.
func (m *multiLogger) LogApplySummary(result models.ExecutionResult) {
	for _, l := range m.loggers {
		if s, ok := l.(applySummaryLogger); ok {
			s.LogApplySummary(result)
		}
	}
}

// buildLogger assembles the logger for a run: console output on w plus a
// file log under the log directory. A file-log failure downgrades to
// console-only with a warning instead of blocking the run. The returned
// closer flushes the file log.
func buildLogger(cfg *config.Config, w io.Writer) (logger.Logger, func()) {
	console := logger.NewConsoleLogger(w, cfg.LogLevel)

	logDir := cfg.LogDir
	if logDir == "" {
		var err error
		logDir, err = config.GetLogDir()
		if err != nil {
			console.LogWarn(fmt.Sprintf("File logging disabled: %v", err))
			return console, func() {}
		}
	}

	file, err := logger.NewFileLogger(logDir, cfg.LogLevel)
	if err != nil {
		console.LogWarn(fmt.Sprintf("File logging disabled: %v", err))
		return console, func() {}
	}

	return &multiLogger{loggers: []logger.Logger{console, file}}, func() {
		if err := file.Close(); err != nil {
			console.LogWarn(fmt.Sprintf("Failed to close log file: %v", err))
		}
	}
}

// progressPrinter throttles walker and executor progress callbacks. On a
// terminal it redraws a single bar in place; otherwise it logs a line at
// every ten percent so batch logs stay readable.
type progressPrinter struct {
	label string
	unit  string
	out   io.Writer
	tty   bool
	color bool
	log   logger.Logger

	mu       sync.Mutex
	lastStep int
	dirty    bool
}

func newProgressPrinter(label, unit string, useColor bool, log logger.Logger) *progressPrinter {
	return &progressPrinter{
		label:    label,
		unit:     unit,
		out:      os.Stderr,
		tty:      isatty.IsTerminal(os.Stderr.Fd()),
		color:    useColor,
		log:      log,
		lastStep: -1,
	}
}

// update is the callback handed to Walker.OnProgress and
// Executor.OnProgress. Safe for concurrent use.
func (p *progressPrinter) update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tty {
		bar := logger.NewProgressBar(total, 30, p.color)
		bar.Update(done)
		fmt.Fprintf(p.out, "\r%s: %s %s", p.label, bar.Render(), p.unit)
		p.dirty = true
		if done >= total {
			fmt.Fprintln(p.out)
			p.dirty = false
		}
		return
	}

	step := 10
	if total > 0 {
		step = done * 10 / total
	}
	if step == p.lastStep && done != total {
		return
	}
	p.lastStep = step
	p.log.LogInfo(fmt.Sprintf("%s: %d/%d %s", p.label, done, total, p.unit))
}

// finish clears a partially drawn bar after a cancelled or failed run.
func (p *progressPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dirty {
		fmt.Fprintln(p.out)
		p.dirty = false
	}
}
