// Package watch regenerates a directory listing whenever the directory changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const (
	defaultDebounce = 150 * time.Millisecond
	defaultRate     = rate.Limit(2)
)

// Watcher observes the immediate children of one directory.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	dir        string
	outputName string
	regenerate func() error
	limiter    *rate.Limiter
	debounce   time.Duration
	logger     *slog.Logger
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets how long events must settle before regenerating.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithRate caps regenerations per second. A non-positive limit disables the cap.
func WithRate(perSecond float64) Option {
	return func(w *Watcher) {
		if perSecond <= 0 {
			w.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		w.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New starts watching dir. Events for outputName, and for the temporary files
// an atomic write of it produces, are ignored so a regeneration does not
// trigger another one.
func New(dir, outputName string, regenerate func() error, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher:  fsWatcher,
		dir:        dir,
		outputName: outputName,
		regenerate: regenerate,
		limiter:    rate.NewLimiter(defaultRate, 1),
		debounce:   defaultDebounce,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return w, nil
}

// Run blocks until ctx is done, regenerating after each burst of changes.
// Failed regenerations are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Watch mode active", "dir", w.dir, "debounce", w.debounce.String())

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		var debounceC <-chan time.Time
		if debounceTimer != nil {
			debounceC = debounceTimer.C
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watch mode", "reason", ctx.Err())
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Directory changed", "path", event.Name, "op", event.Op.String())
			if debounceTimer == nil {
				debounceTimer = time.NewTimer(w.debounce)
			} else {
				debounceTimer.Reset(w.debounce)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		case <-debounceC:
			debounceTimer = nil
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			if err := w.regenerate(); err != nil {
				w.logger.Error("Regeneration failed", "dir", w.dir, "error", err)
				continue
			}
			w.logger.Debug("Listing regenerated", "dir", w.dir)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if name == w.outputName {
		return false
	}
	if strings.HasPrefix(name, "."+w.outputName+".") && strings.HasSuffix(name, ".tmp") {
		return false
	}
	return true
}
