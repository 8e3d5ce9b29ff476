// Package lock guards a project directory against concurrent dev sessions.
//
// The lock file lives at <project>/.stoker/dev.lock and records:
// - PID of the owning supervisor process
// - Timestamp when the lock was acquired
// - Session ID (the run log session)
//
// Stale locks (where the PID is dead) are automatically reclaimed.
package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/steveyegge/stoker/internal/constants"
)

// Common errors
var (
	ErrLocked    = errors.New("project is locked by another dev session")
	ErrNotLocked = errors.New("project is not locked")
	ErrInvalid   = errors.New("invalid lock file")
)

// Info contains information about who holds a lock.
type Info struct {
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
	Session    string    `json:"session,omitempty"`
	Hostname   string    `json:"hostname,omitempty"`
}

// IsStale reports whether the owning process is dead.
func (i *Info) IsStale() bool {
	return !processExists(i.PID)
}

// Lock is a dev-session lock for a project directory.
type Lock struct {
	lockPath string
}

// New creates a Lock for the given project directory.
func New(projectDir string) *Lock {
	return &Lock{
		lockPath: filepath.Join(projectDir, constants.RuntimeDirName, "dev.lock"),
	}
}

// Acquire attempts to acquire the lock for this project.
// Returns ErrLocked if another live process holds it. Stale locks are
// removed and reacquired; reacquiring our own lock refreshes it.
func (l *Lock) Acquire(session string) error {
	info, err := l.Read()
	if err == nil {
		if info.IsStale() {
			if err := l.Release(); err != nil {
				return fmt.Errorf("removing stale lock: %w", err)
			}
		} else {
			if info.PID == os.Getpid() {
				return l.write(session)
			}
			return fmt.Errorf("%w: PID %d (session: %s, acquired: %s)",
				ErrLocked, info.PID, info.Session, info.AcquiredAt.Format(time.RFC3339))
		}
	}

	return l.write(session)
}

// Release releases the lock if present.
func (l *Lock) Release() error {
	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing lock file: %w", err)
	}
	return nil
}

// Read reads the current lock info without modifying it.
func (l *Lock) Read() (*Info, error) {
	data, err := os.ReadFile(l.lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLocked
		}
		return nil, fmt.Errorf("reading lock file: %w", err)
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return &info, nil
}

// write creates or updates the lock file.
func (l *Lock) write(session string) error {
	if err := os.MkdirAll(filepath.Dir(l.lockPath), 0755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}

	hostname, _ := os.Hostname()
	info := Info{
		PID:        os.Getpid(),
		AcquiredAt: time.Now(),
		Session:    session,
		Hostname:   hostname,
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding lock info: %w", err)
	}

	if err := os.WriteFile(l.lockPath, data, 0644); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	return nil
}
