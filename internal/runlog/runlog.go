// Package runlog provides centralized logging for dev-session lifecycle
// events.
//
// Events are appended as JSON lines to .stoker/run.log in the project
// directory (the .stoker directory is always excluded from watching, so the
// log never feeds back into the change stream).
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steveyegge/stoker/internal/constants"
)

// EventType represents the type of dev-session lifecycle event.
type EventType string

const (
	// EventSessionStart indicates a dev session began.
	EventSessionStart EventType = "session_start"
	// EventSessionEnd indicates a dev session ended.
	EventSessionEnd EventType = "session_end"
	// EventSpawn indicates the app process was started.
	EventSpawn EventType = "spawn"
	// EventRestart indicates a change event caused a kill and respawn.
	EventRestart EventType = "restart"
	// EventReload indicates the configuration was reloaded and the manifest
	// regenerated.
	EventReload EventType = "reload"
	// EventCrash indicates the app exited on its own with a failure status.
	EventCrash EventType = "crash"
)

// Event is a single lifecycle event.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Type      EventType `json:"type"`
	Session   string    `json:"session"`
	Path      string    `json:"path,omitempty"`
	Context   string    `json:"context,omitempty"`
}

// Logger appends events to the project run log. Logging is best-effort for
// callers: a failed append never stops the supervisor.
type Logger struct {
	mu      sync.Mutex
	path    string
	session string
}

// NewLogger creates a Logger for the given project directory. Each logger
// gets a fresh session id tying a session's events together.
func NewLogger(projectDir string) *Logger {
	return &Logger{
		path:    filepath.Join(projectDir, constants.RuntimeDirName, "run.log"),
		session: uuid.New().String(),
	}
}

// Session returns this logger's session id.
func (l *Logger) Session() string {
	return l.session
}

// Log appends one event.
func (l *Logger) Log(eventType EventType, path, context string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	ev := Event{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Session:   l.session,
		Path:      path,
		Context:   context,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending event: %w", err)
	}
	return nil
}
