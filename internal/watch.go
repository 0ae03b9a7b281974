package internal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnoverse/endlint/internal/types"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

// ReportFunc receives the issues found for a changed file.
type ReportFunc func(filename string, issues []tt.Issue)

// Watcher re-lints source files as they change on disk.
type Watcher struct {
	engine  *Engine
	logger  *zap.Logger
	report  ReportFunc
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func NewWatcher(engine *Engine, logger *zap.Logger, report ReportFunc) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		engine:  engine,
		logger:  logger,
		report:  report,
		watcher: w,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Add registers dir and all of its subdirectories.
func (w *Watcher) Add(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}
	return nil
}

// Run blocks until ctx is cancelled or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			w.lintDir(event.Name)
			return
		}
	}
	if !HasSourceExtension(event.Name) {
		return
	}

	w.schedule(event.Name)
}

// schedule lints name once no event for it arrived within watchDebounce.
func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[name]; ok {
		t.Reset(watchDebounce)
		return
	}
	w.pending[name] = time.AfterFunc(watchDebounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()
		w.lintFile(name)
	})
}

func (w *Watcher) lintFile(filename string) {
	issues, err := w.engine.Run(filename)
	if err != nil {
		w.logger.Error("error linting changed file", zap.String("file", filename), zap.Error(err))
		return
	}
	w.logger.Debug("linted changed file", zap.String("file", filename), zap.Int("issues", len(issues)))
	if w.report != nil {
		w.report(filename, issues)
	}
}

// lintDir covers files written into a new directory before it was
// registered with the watcher.
func (w *Watcher) lintDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && HasSourceExtension(path) {
			w.schedule(path)
		}
		return nil
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
}

var sourceExtensions = map[string]bool{
	".php":   true,
	".phtml": true,
	".inc":   true,
}

// HasSourceExtension reports whether path names a PHP source file.
func HasSourceExtension(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}
