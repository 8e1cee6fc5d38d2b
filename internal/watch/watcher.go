// Package watch observes a scan root and signals when the tree has
// changed and then gone quiet, so watch mode can rescan without
// thrashing on event bursts.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harrison/shipshape/internal/logger"
)

// DefaultDebounce is how long the tree must stay quiet before a
// trigger fires.
const DefaultDebounce = 2 * time.Second

// Watcher watches a directory tree recursively. Every filesystem event
// under the root resets a single shared timer; when the tree has been
// quiet for the debounce window, one trigger is emitted.
type Watcher struct {
	watcher      *fsnotify.Watcher
	root         string
	debounce     time.Duration
	ignoreHidden bool
	logger       logger.Logger

	triggers chan time.Time
	errors   chan error
	done     chan struct{}

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// New creates a Watcher over root and starts watching immediately.
// With ignoreHidden set, events under dot-directories are ignored, which
// keeps the watch aligned with what the scan itself would visit.
func New(root string, debounce time.Duration, ignoreHidden bool, log logger.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		watcher:      fsw,
		root:         abs,
		debounce:     debounce,
		ignoreHidden: ignoreHidden,
		logger:       log,
		triggers:     make(chan time.Time, 1),
		errors:       make(chan error, 10),
		done:         make(chan struct{}),
	}

	if err := w.addRecursive(abs); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.processEvents()

	return w, nil
}

// addRecursive registers dir and every subdirectory with the watcher.
// Unreadable directories are skipped, matching the scan's tolerance.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != w.root && w.hidden(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if os.IsPermission(err) {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.hidden(event.Name) {
		return
	}

	// New directories get watched as they appear, so files created in
	// them later still reset the timer.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				select {
				case w.errors <- err:
				default:
				}
			}
		}
	}

	// Chmod-only events are noise on most platforms.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.logger.LogTrace(fmt.Sprintf("fs event: %s %s", event.Op, event.Name))
	w.bump()
}

// hidden reports whether any path segment below the root starts with a
// dot. It only applies when the watcher ignores hidden entries.
func (w *Watcher) hidden(path string) bool {
	if !w.ignoreHidden {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// bump resets the quiet-period timer.
func (w *Watcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()

	// A pending trigger already covers this change.
	select {
	case w.triggers <- time.Now():
	default:
	}
}

// Triggers returns the channel that fires once per quiet period after
// changes.
func (w *Watcher) Triggers() <-chan time.Time {
	return w.triggers
}

// Errors returns the channel carrying watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Root returns the absolute watched root.
func (w *Watcher) Root() string {
	return w.root
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
