package state

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
)

// DefaultDebounce coalesces the burst of events produced by one atomic save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports external edits of the scope documents in a state directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *logging.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// NewWatcher creates a watcher for dir.
func NewWatcher(dir string, opts ...WatcherOption) *Watcher {
	w := &Watcher{dir: dir, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.OrNop(w.logger)
	return w
}

// Run calls fn with the scope of every changed document until ctx is done.
// fn runs on a timer goroutine, at most once per debounce period and scope.
func (w *Watcher) Run(ctx context.Context, fn func(instance.Scope)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	var mu sync.Mutex
	timers := make(map[instance.Scope]*time.Timer)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	schedule := func(scope instance.Scope) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[scope]; ok {
			t.Stop()
		}
		timers[scope] = time.AfterFunc(w.debounce, func() {
			if ctx.Err() == nil {
				fn(scope)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if scope, ok := scopeOf(event.Name); ok {
				w.logger.Debug("state document changed", "scope", scope.String(), "op", event.Op.String())
				schedule(scope)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("state watcher error", "error", err)
		}
	}
}

// scopeOf maps "<dir>/<scope>.xml" to its scope.
func scopeOf(path string) (instance.Scope, bool) {
	name, ok := strings.CutSuffix(filepath.Base(path), ".xml")
	if !ok {
		return "", false
	}
	scope, err := instance.ParseScope(name)
	if err != nil {
		return "", false
	}
	return scope, true
}
