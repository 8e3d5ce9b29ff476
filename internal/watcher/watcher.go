package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/steveyegge/stoker/internal/constants"
	"github.com/steveyegge/stoker/internal/ignore"
	"github.com/steveyegge/stoker/internal/workspace"
)

// Watcher owns the background notification goroutine for one dev session.
type Watcher struct {
	backend Backend
	ignores *ignore.Set
	scope   workspace.Scope
	window  time.Duration
	logf    func(format string, args ...interface{})

	out     chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// New creates a Watcher over scope using the fsnotify backend.
// logf receives degraded-path messages (failed registrations, backend
// errors); pass nil to discard them.
func New(scope workspace.Scope, ig *ignore.Set, logf func(string, ...interface{})) (*Watcher, error) {
	backend, err := newNotifyBackend(ig)
	if err != nil {
		return nil, fmt.Errorf("creating watch backend: %w", err)
	}
	return newWithBackend(scope, ig, backend, logf), nil
}

// newWithBackend lets tests substitute the backend.
func newWithBackend(scope workspace.Scope, ig *ignore.Set, backend Backend, logf func(string, ...interface{})) *Watcher {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Watcher{
		backend: backend,
		ignores: ig,
		scope:   scope,
		window:  constants.DebounceWindow,
		logf:    logf,
		out:     make(chan Event, constants.EventMailboxSize),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start registers the scope and begins delivering events. A root that cannot
// be registered (vanished, unreadable) is logged and skipped; the rest of the
// scope continues to be watched.
func (w *Watcher) Start() error {
	for _, root := range w.scope.Roots {
		if err := w.registerRoot(root); err != nil {
			w.logf("watch: skipping root %s: %v", root, err)
		}
	}
	w.started = true
	go w.run()
	return nil
}

// Events is the debounced change-event mailbox. The watcher blocks on send
// when it fills; the supervisor loop is the only consumer.
func (w *Watcher) Events() <-chan Event {
	return w.out
}

// Close stops event delivery and releases the OS watches. Safe to call even
// when Start never ran.
func (w *Watcher) Close() error {
	if w.started {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.backend.Close()
}

// registerRoot lists the immediate children of root through the ignore rules
// and registers each survivor: directories recursively, files individually.
// The root itself is never registered as a child of itself. A root that is a
// plain file gets a single watch.
func (w *Watcher) registerRoot(root string) error {
	fi, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch root %s: %w", root, err)
	}
	if !fi.IsDir() {
		if err := w.backend.Register(root, false); err != nil {
			w.logf("watch: skipping %s: %v", root, err)
		}
		return nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("listing watch root %s: %w", root, err)
	}

	for _, entry := range entries {
		if w.ignores.Ignored(root, entry.Name(), entry.IsDir()) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if err := w.backend.Register(path, entry.IsDir()); err != nil {
			// Degraded, not fatal: a vanished or unreadable entry must not
			// take down the rest of the scope.
			w.logf("watch: skipping %s: %v", path, err)
		}
	}
	return nil
}

// run is the notification goroutine: raw events in, debounced events out.
func (w *Watcher) run() {
	defer close(w.doneCh)

	c := newCoalescer(w.window)
	flush := time.NewTicker(constants.DebounceFlushInterval)
	defer flush.Stop()

	for {
		select {
		case <-w.stopCh:
			return

		case raw, ok := <-w.backend.Events():
			if !ok {
				return
			}
			c.add(raw, time.Now())

		case err, ok := <-w.backend.Errors():
			if !ok {
				return
			}
			w.logf("watch: %v", err)

		case <-flush.C:
			for _, ev := range c.ripe(time.Now()) {
				select {
				case w.out <- ev:
				case <-w.stopCh:
					return
				}
			}
		}
	}
}
