// Package supervisor owns the single live application process and reacts to
// change events.
//
// The control loop is the only writer of the process handle. Exit
// notifications arrive as messages on a channel rather than through shared
// state, tagged with a generation counter so the exit of an already-replaced
// process cannot be mistaken for the current one.
package supervisor

import (
	"fmt"
	"path/filepath"

	"github.com/steveyegge/stoker/internal/config"
	"github.com/steveyegge/stoker/internal/constants"
	"github.com/steveyegge/stoker/internal/manifest"
	"github.com/steveyegge/stoker/internal/runlog"
	"github.com/steveyegge/stoker/internal/runner"
	"github.com/steveyegge/stoker/internal/style"
	"github.com/steveyegge/stoker/internal/watcher"
)

// Process is the handle the supervisor needs over the supervised app.
// *runner.Handle satisfies it.
type Process interface {
	Kill() error
	Wait() runner.Status
	TryWait() (runner.Status, bool)
}

// SpawnFunc starts the application from a config snapshot. onExit must fire
// exactly once when the process exits for any reason.
type SpawnFunc func(cfg config.Config, onExit func(runner.Status)) (Process, error)

// ConfigSource is the reloadable configuration the loop consults.
// *config.Handle satisfies it.
type ConfigSource interface {
	Reload() error
	Current() config.Config
}

type exitMsg struct {
	gen    int
	status runner.Status
}

// Supervisor runs the dev control loop.
type Supervisor struct {
	events   <-chan watcher.Event
	spawn    SpawnFunc
	cfg      ConfigSource
	reloader manifest.Reloader
	log      *runlog.Logger

	proc   Process
	gen    int
	exitCh chan exitMsg
}

// New assembles a supervisor. The event channel is the watcher mailbox; the
// supervisor is its only consumer.
func New(events <-chan watcher.Event, spawn SpawnFunc, cfg ConfigSource, reloader manifest.Reloader, log *runlog.Logger) *Supervisor {
	return &Supervisor{
		events:   events,
		spawn:    spawn,
		cfg:      cfg,
		reloader: reloader,
		log:      log,
		exitCh:   make(chan exitMsg, 8),
	}
}

// Run drives the session until a fatal error, the app exiting on its own, or
// the event channel closing. Every fatal operation terminates the loop
// without retry.
func (s *Supervisor) Run() error {
	if err := s.spawnCurrent(); err != nil {
		return err
	}
	_ = s.log.Log(runlog.EventSpawn, "", "")

	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return s.shutdown()
			}

			if filepath.Base(ev.Path) == constants.ConfigFileName {
				if err := s.reloadConfig(ev); err != nil {
					return err
				}
				continue
			}

			if err := s.restart(ev); err != nil {
				return err
			}

		case msg := <-s.exitCh:
			if msg.gen != s.gen {
				// Exit of a process we already replaced.
				continue
			}
			return s.appExited(msg.status)
		}
	}
}

// RunOnce is the no-watch path: spawn exactly once and block until that
// process exits.
func (s *Supervisor) RunOnce() error {
	if err := s.spawnCurrent(); err != nil {
		return err
	}
	_ = s.log.Log(runlog.EventSpawn, "", "")
	return s.appExited(s.proc.Wait())
}

// reloadConfig handles a change to the recognized configuration file: reload
// the shared config, then regenerate the manifest. The process is not killed
// here. The manifest write lands inside the watched tree and surfaces as its
// own change event, which the next loop iteration treats like any other
// change and may restart on. That coupling is intentional and kept visible.
func (s *Supervisor) reloadConfig(ev watcher.Event) error {
	style.PrintInfo("%s changed, reloading config...", constants.ConfigFileName)

	if err := s.cfg.Reload(); err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	if err := s.reloader.Reload(s.cfg.Current()); err != nil {
		return fmt.Errorf("regenerating manifest: %w", err)
	}

	_ = s.log.Log(runlog.EventReload, ev.Path, "")
	return nil
}

// restart kills the current process, waits for it to fully exit, then spawns
// a replacement. Spawning never begins while the old process may still be
// alive, and a kill that cannot be confirmed is fatal.
func (s *Supervisor) restart(ev watcher.Event) error {
	style.PrintInfo("%s %s, restarting app...", ev.Path, ev.Kind)

	if err := s.proc.Kill(); err != nil {
		return fmt.Errorf("failed to kill app process: %w", err)
	}
	s.proc.Wait()

	_ = s.log.Log(runlog.EventRestart, ev.Path, ev.Kind.String())
	return s.spawnCurrent()
}

// spawnCurrent starts a new generation of the app from the current config
// snapshot.
func (s *Supervisor) spawnCurrent() error {
	s.gen++
	gen := s.gen

	proc, err := s.spawn(s.cfg.Current(), func(st runner.Status) {
		if st.Reason == runner.ReasonKilled {
			// Our own kill; the restart path already observes it via Wait.
			return
		}
		s.exitCh <- exitMsg{gen: gen, status: st}
	})
	if err != nil {
		return fmt.Errorf("spawning app: %w", err)
	}

	s.proc = proc
	return nil
}

// appExited ends the session when the app exits on its own.
func (s *Supervisor) appExited(st runner.Status) error {
	if st.Code != 0 {
		_ = s.log.Log(runlog.EventCrash, "", fmt.Sprintf("exit status %d", st.Code))
		return fmt.Errorf("app exited with status %d", st.Code)
	}
	_ = s.log.Log(runlog.EventSessionEnd, "", "")
	return nil
}

// shutdown tears down the current process when the event stream ends.
func (s *Supervisor) shutdown() error {
	if s.proc == nil {
		return nil
	}
	if err := s.proc.Kill(); err != nil {
		return fmt.Errorf("failed to kill app process: %w", err)
	}
	s.proc.Wait()
	_ = s.log.Log(runlog.EventSessionEnd, "", "")
	return nil
}
