// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package corpus

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const (
	// DefaultDebounce is how long the watcher waits after the last relevant
	// event before requesting a rebuild.
	DefaultDebounce = 250 * time.Millisecond

	// DefaultTriggerInterval is the minimum spacing between rebuild callbacks.
	DefaultTriggerInterval = 2 * time.Second
)

// Watcher turns filesystem activity in a workspace into rebuild callbacks.
// Bursts of events collapse into one callback per debounce window, and
// callbacks are rate limited so a busy workspace cannot stampede the
// index builder.
type Watcher struct {
	scanner  *Scanner
	onChange func()
	debounce time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger

	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	trigger chan struct{}
	done    chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher) error

// WithDebounce sets the quiet period required before a rebuild triggers.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) error {
		if d <= 0 {
			d = DefaultDebounce
		}
		w.debounce = d
		return nil
	}
}

// WithTriggerInterval sets the minimum time between rebuild callbacks.
func WithTriggerInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) error {
		if d <= 0 {
			d = DefaultTriggerInterval
		}
		w.limiter = rate.NewLimiter(rate.Every(d), 1)
		return nil
	}
}

// NewWatcher creates a watcher over the scanner's workspace. onChange runs
// on the watcher's own goroutine after each settled burst of changes.
func NewWatcher(scanner *Scanner, onChange func(), opts ...WatcherOption) (*Watcher, error) {
	if scanner == nil {
		return nil, ErrScannerRequired
	}
	if onChange == nil {
		return nil, ErrChangeCallbackRequired
	}

	w := &Watcher{
		scanner:  scanner,
		onChange: onChange,
		debounce: DefaultDebounce,
		limiter:  rate.NewLimiter(rate.Every(DefaultTriggerInterval), 1),
		logger:   scanner.logger,
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Start begins watching the memory directory and the fact store directory.
// It returns once watching is established; use Stop to shut down.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	watched := 0
	for _, dir := range w.watchDirs() {
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory", "dir", dir, "err", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = fsw.Close()
		return ErrNothingToWatch
	}

	ctx, cancel := context.WithCancel(ctx)
	w.fsw = fsw
	w.cancel = cancel

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.loop(ctx)
	}()
	go func() {
		defer wg.Done()
		w.deliver(ctx)
	}()
	go func() {
		wg.Wait()
		close(w.done)
	}()

	w.logger.Info("watching workspace", "dir", w.scanner.memoryDir)
	return nil
}

// Stop shuts the watcher down and waits for its goroutines to exit. It is
// safe to call on a watcher that never started.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	_ = w.fsw.Close()
	<-w.done
}

func (w *Watcher) watchDirs() []string {
	dirs := []string{w.scanner.memoryDir}
	if factDir := filepath.Dir(w.scanner.factPath); factDir != w.scanner.memoryDir {
		dirs = append(dirs, factDir)
	}
	return dirs
}

// loop consumes filesystem events and arms a debounce timer; when the timer
// fires the pending changes collapse into a single trigger.
func (w *Watcher) loop(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(evt) {
				continue
			}
			w.logger.Debug("workspace changed", "file", evt.Name, "op", evt.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		case <-timer.C:
			select {
			case w.trigger <- struct{}{}:
			default:
			}
		}
	}
}

// deliver runs the change callback for each trigger, spaced by the limiter.
func (w *Watcher) deliver(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			w.onChange()
		}
	}
}

// relevant reports whether an event can change what a scan would return.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(evt.Name)
	if name == filepath.Base(w.scanner.factPath) {
		return true
	}
	stem, found := strings.CutSuffix(name, ".md")
	return found && stem != w.scanner.reservedName
}
