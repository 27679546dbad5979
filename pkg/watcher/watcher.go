// Package watcher keeps the skill index synchronized with on-disk
// changes. A classifier goroutine maps raw fsnotify events to affected
// skill names and pushes them onto a channel; a separate consumer
// performs the actual index mutation. The notification path never does
// unbounded work inline.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/skillstack/skillmcp/pkg/index"
	"github.com/skillstack/skillmcp/pkg/logger"
)

// ErrorKind classifies watcher failures.
type ErrorKind int

const (
	// KindSetup means the watcher itself could not be initialized.
	KindSetup ErrorKind = iota
	// KindWatch means a specific path could not be watched.
	KindWatch
)

// Error is a typed watcher failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// change is one classified filesystem event. An empty skill name signals
// a full rebuild: the change happened outside any skill subtree.
type change struct {
	skill string
}

const (
	defaultDebounce  = 200 * time.Millisecond
	rebuildAttempts  = 3
	rebuildBaseDelay = 100 * time.Millisecond
)

// Watcher subscribes to filesystem notifications under the skills root
// and drives incremental index updates, falling back to full rebuilds
// when a change cannot be attributed or an update fails.
type Watcher struct {
	fsw      *fsnotify.Watcher
	store    *index.Store
	debounce time.Duration

	changes chan change
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the event coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a watcher bound to the given store.
func New(store *index.Store, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &Error{Kind: KindSetup, Message: "failed to create watcher", Cause: err}
	}

	w := &Watcher{
		fsw:      fsw,
		store:    store,
		debounce: defaultDebounce,
		changes:  make(chan change, 64),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts watching a directory tree. fsnotify watches are not
// recursive, so every existing subdirectory is added individually;
// directories created later are added by the classifier.
func (w *Watcher) Watch(path string) error {
	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fsw.Add(p)
		}
		return nil
	})
	if err != nil {
		return &Error{Kind: KindWatch, Message: fmt.Sprintf("failed to watch %s", path), Cause: err}
	}
	return nil
}

// Unwatch stops watching a specific path.
func (w *Watcher) Unwatch(path string) error {
	if err := w.fsw.Remove(path); err != nil {
		return &Error{Kind: KindWatch, Message: fmt.Sprintf("failed to unwatch %s", path), Cause: err}
	}
	return nil
}

// Start launches the classifier, debouncer, and consumer goroutines.
// They stop when ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	debounced := make(chan change, 64)

	w.wg.Add(3)
	go func() {
		defer w.wg.Done()
		w.classify(ctx)
	}()
	go func() {
		defer w.wg.Done()
		w.debounceChanges(ctx, w.changes, debounced)
	}()
	go func() {
		defer w.wg.Done()
		w.apply(ctx, debounced)
	}()
}

// Close stops the underlying fsnotify watcher and waits for the worker
// goroutines to drain.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// classify reads raw fsnotify events and pushes affected-skill changes.
// Only create, write, remove, and rename events are considered.
func (w *Watcher) classify(ctx context.Context) {
	log := logger.G(ctx)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				close(w.changes)
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// New directories need their own watch for events beneath them.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(event.Name); err != nil {
						log.WithError(err).WithField("path", event.Name).Warn("failed to watch new directory")
					}
				}
			}

			name, ok := w.store.SkillFromPath(event.Name)
			if !ok {
				name = ""
			}
			select {
			case w.changes <- change{skill: name}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("watch error")
		case <-ctx.Done():
			return
		}
	}
}

// debounceChanges coalesces rapid bursts per skill name so one save in
// an editor does not trigger a dozen index updates.
//
// Every scheduled timer holds one inflight count; a successful Stop
// releases it, otherwise the fired callback does. output is closed only
// after inflight drains, so a callback blocked on the send can never
// hit a closed channel.
func (w *Watcher) debounceChanges(ctx context.Context, input <-chan change, output chan<- change) {
	pending := make(map[string]*time.Timer)
	var mu sync.Mutex
	var inflight sync.WaitGroup

	stopAll := func() {
		mu.Lock()
		defer mu.Unlock()
		for key, timer := range pending {
			if timer.Stop() {
				inflight.Done()
			}
			delete(pending, key)
		}
	}

	for {
		select {
		case c, ok := <-input:
			if !ok {
				stopAll()
				inflight.Wait()
				close(output)
				return
			}
			mu.Lock()
			if timer, exists := pending[c.skill]; exists {
				if timer.Stop() {
					inflight.Done()
				}
			}
			cc := c
			inflight.Add(1)
			pending[cc.skill] = time.AfterFunc(w.debounce, func() {
				defer inflight.Done()
				mu.Lock()
				delete(pending, cc.skill)
				mu.Unlock()
				select {
				case output <- cc:
				case <-ctx.Done():
				}
			})
			mu.Unlock()
		case <-ctx.Done():
			stopAll()
			inflight.Wait()
			return
		}
	}
}

// apply performs the index mutation for each debounced change: an
// incremental update for an attributed skill, a full rebuild otherwise.
// Any incremental failure falls back to a full rebuild for safety.
func (w *Watcher) apply(ctx context.Context, input <-chan change) {
	log := logger.G(ctx)
	for {
		select {
		case c, ok := <-input:
			if !ok {
				return
			}
			if c.skill == "" {
				log.Debug("change outside skill directories, rebuilding index")
				w.rebuild(ctx)
				continue
			}

			log.WithField("skill", c.skill).Debug("incrementally updating skill")
			if err := w.store.UpdateSkill(ctx, c.skill); err != nil {
				log.WithError(err).WithField("skill", c.skill).Warn("incremental update failed, rebuilding index")
				w.rebuild(ctx)
			}
		case <-ctx.Done():
			return
		}
	}
}

// rebuild retries transient failures; a directory swap can leave the
// tree briefly unreadable.
func (w *Watcher) rebuild(ctx context.Context) {
	err := retry.Do(
		func() error { return w.store.Rebuild(ctx) },
		retry.Context(ctx),
		retry.Attempts(rebuildAttempts),
		retry.Delay(rebuildBaseDelay),
	)
	if err != nil {
		logger.G(ctx).WithError(err).Error("failed to rebuild index")
	}
}
