// Package ignore decides which filesystem entries are eligible for watching.
//
// Rules are gitignore-style and come from three additive sources: a default
// ignore file auto-created once per machine in the system temp dir, a
// .stokerignore file recognized in any directory under a watched root, and an
// optional extra file named by the STOKER_DEV_WATCHER_IGNORE_FILE override.
// Matching applies whether or not the project is a git repository.
package ignore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/steveyegge/stoker/internal/config"
	"github.com/steveyegge/stoker/internal/constants"
)

// defaultPatterns seeds the per-machine default ignore file on first use.
var defaultPatterns = []string{
	".DS_Store",
	".git",
	".hg",
	".svn",
	"node_modules",
	"target",
	constants.RuntimeDirName,
	"*.swp",
	"*.swx",
	"*~",
}

// initLockTimeout bounds the wait for the default-file creation lock when
// several stoker processes start at once.
const initLockTimeout = 5 * time.Second

// Set holds the compiled ignore rules for a dev session.
type Set struct {
	global []*gitignore.GitIgnore

	mu    sync.Mutex
	byDir map[string]*gitignore.GitIgnore // dir -> compiled .stokerignore, nil if absent
}

// New compiles the session's ignore rules. The default ignore file is created
// if missing (idempotent; concurrent first runs are serialized with a file
// lock). env.WatcherIgnoreFile, when set, must exist — a dangling override is
// an error rather than a silently unfiltered watch.
func New(env config.Env) (*Set, error) {
	defaultFile, err := ensureDefaultIgnoreFile()
	if err != nil {
		return nil, fmt.Errorf("preparing default ignore file: %w", err)
	}

	s := &Set{byDir: make(map[string]*gitignore.GitIgnore)}

	base, err := gitignore.CompileIgnoreFile(defaultFile)
	if err != nil {
		return nil, fmt.Errorf("compiling default ignore file: %w", err)
	}
	s.global = append(s.global, base)

	if env.WatcherIgnoreFile != "" {
		extra, err := gitignore.CompileIgnoreFile(env.WatcherIgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("compiling %s override: %w", constants.EnvIgnoreFile, err)
		}
		s.global = append(s.global, extra)
	}

	return s, nil
}

// Ignored reports whether the named entry of dir should be excluded from
// watching. isDir lets directory-only patterns ("target/") apply.
func (s *Set) Ignored(dir, name string, isDir bool) bool {
	candidates := []string{name}
	if isDir {
		candidates = append(candidates, name+"/")
	}

	for _, m := range s.global {
		for _, c := range candidates {
			if m.MatchesPath(c) {
				return true
			}
		}
	}

	if custom := s.dirRules(dir); custom != nil {
		for _, c := range candidates {
			if custom.MatchesPath(c) {
				return true
			}
		}
	}

	return false
}

// dirRules returns the compiled .stokerignore for dir, caching per directory.
func (s *Set) dirRules(dir string) *gitignore.GitIgnore {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.byDir[dir]; ok {
		return m
	}

	var m *gitignore.GitIgnore
	path := filepath.Join(dir, constants.CustomIgnoreFilename)
	if _, err := os.Stat(path); err == nil {
		if compiled, err := gitignore.CompileIgnoreFile(path); err == nil {
			m = compiled
		}
	}
	s.byDir[dir] = m
	return m
}

// DefaultIgnoreFilePath returns the per-machine default ignore file location.
func DefaultIgnoreFilePath() string {
	return filepath.Join(os.TempDir(), constants.DefaultIgnoreDirName, constants.DefaultIgnoreFileName)
}

// ensureDefaultIgnoreFile creates the default ignore file if it does not
// exist yet and returns its path. Creation is skipped when the file is
// already present.
func ensureDefaultIgnoreFile() (string, error) {
	dir := filepath.Join(os.TempDir(), constants.DefaultIgnoreDirName)
	path := filepath.Join(dir, constants.DefaultIgnoreFileName)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, ".init.lock"))
	ctx, cancel := context.WithTimeout(context.Background(), initLockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return "", fmt.Errorf("acquiring init lock: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("timeout waiting for ignore init lock")
	}
	defer func() { _ = lock.Unlock() }()

	// Another process may have won the race while we waited.
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	content := strings.Join(defaultPatterns, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("seeding %s: %w", path, err)
	}
	return path, nil
}
