package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/steveyegge/stoker/internal/ignore"
)

// Backend is the capability interface over the OS watch mechanism. It exists
// so the supervisor side never touches fsnotify directly and an alternate
// backend (polling, kernel event queues) can be swapped in.
type Backend interface {
	// Register adds a watch for path. Directories are walked and watched
	// recursively when recursive is true; files get a single watch.
	Register(path string, recursive bool) error

	// Events delivers raw, undebounced change events.
	Events() <-chan Event

	// Errors delivers backend-level errors (degraded, not fatal).
	Errors() <-chan error

	Close() error
}

// notifyBackend implements Backend on fsnotify. fsnotify watches are
// per-directory, so recursive registration walks the tree, and directories
// created under a recursive root are picked up from their create events.
type notifyBackend struct {
	fw   *fsnotify.Watcher
	ig   *ignore.Set
	out  chan Event
	errs chan error
	done chan struct{}

	mu             sync.Mutex
	recursiveRoots []string
}

func newNotifyBackend(ig *ignore.Set) (*notifyBackend, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	b := &notifyBackend{
		fw:   fw,
		ig:   ig,
		out:  make(chan Event, 16),
		errs: make(chan error, 1),
		done: make(chan struct{}),
	}
	go b.translate()
	return b, nil
}

func (b *notifyBackend) Register(path string, recursive bool) error {
	if !recursive {
		return b.fw.Add(path)
	}

	b.mu.Lock()
	b.recursiveRoots = append(b.recursiveRoots, path)
	b.mu.Unlock()

	return b.addTree(path)
}

// addTree watches path and every non-ignored directory under it.
func (b *notifyBackend) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && b.ig.Ignored(filepath.Dir(path), d.Name(), true) {
			return filepath.SkipDir
		}
		return b.fw.Add(path)
	})
}

func (b *notifyBackend) Events() <-chan Event { return b.out }

func (b *notifyBackend) Errors() <-chan error { return b.errs }

func (b *notifyBackend) Close() error {
	close(b.done)
	return b.fw.Close()
}

// translate maps fsnotify operations onto Event kinds, filters ignored paths,
// and extends the watch into directories created under a recursive root.
func (b *notifyBackend) translate() {
	for {
		select {
		case <-b.done:
			return

		case raw, ok := <-b.fw.Events:
			if !ok {
				return
			}

			var kind Kind
			switch {
			case raw.Op&fsnotify.Create != 0:
				kind = Created
			case raw.Op&fsnotify.Write != 0:
				kind = Modified
			case raw.Op&fsnotify.Remove != 0:
				kind = Removed
			case raw.Op&fsnotify.Rename != 0:
				kind = Renamed
			default:
				continue // chmod etc.
			}

			isDir := false
			if fi, err := os.Stat(raw.Name); err == nil {
				isDir = fi.IsDir()
			}

			if b.ig.Ignored(filepath.Dir(raw.Name), filepath.Base(raw.Name), isDir) {
				continue
			}

			if kind == Created && isDir && b.underRecursiveRoot(raw.Name) {
				if err := b.addTree(raw.Name); err != nil {
					b.reportErr(err)
				}
			}

			select {
			case b.out <- Event{Path: raw.Name, Kind: kind}:
			case <-b.done:
				return
			}

		case err, ok := <-b.fw.Errors:
			if !ok {
				return
			}
			b.reportErr(err)
		}
	}
}

func (b *notifyBackend) underRecursiveRoot(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, root := range b.recursiveRoots {
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (b *notifyBackend) reportErr(err error) {
	select {
	case b.errs <- err:
	default:
	}
}
