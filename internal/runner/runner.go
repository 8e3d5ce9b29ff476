// Package runner spawns and controls the supervised application process.
//
// A Strategy captures everything needed to (re)spawn the app; the same Handle
// type serves the initial spawn and every respawn. Exit is observed with a
// real blocking wait on the process, never by polling.
package runner

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/steveyegge/stoker/internal/constants"
)

// ExitReason classifies why the supervised process exited.
type ExitReason int

const (
	// ReasonNormal means the process exited on its own.
	ReasonNormal ExitReason = iota
	// ReasonKilled means stoker killed it (restart or shutdown).
	ReasonKilled
)

// String returns the lowercase reason name for logs.
func (r ExitReason) String() string {
	if r == ReasonKilled {
		return "killed"
	}
	return "normal"
}

// Status is the terminal state of a supervised process.
type Status struct {
	Code   int
	Reason ExitReason
}

// Strategy captures the arguments for one spawn of the application. It is
// reused unchanged on every respawn; only the config snapshot it was built
// from may differ between sessions.
type Strategy struct {
	// Runner is the build tool binary (default cargo).
	Runner string
	// Dir is the project directory the runner executes in.
	Dir string

	Release           bool
	Target            string
	Features          []string
	NoDefaultFeatures bool

	// Args are extra runner arguments before the "--" separator.
	Args []string
	// RunArgs are passed through to the application after "--".
	RunArgs []string

	// ExtraEnv entries (KEY=value) are appended to the inherited environment,
	// e.g. the deployment target from config.
	ExtraEnv []string
}

// commandArgs renders the runner's argument list for this strategy.
func (s Strategy) commandArgs() []string {
	args := []string{"run"}
	if s.Release {
		args = append(args, "--release")
	}
	if s.Target != "" {
		args = append(args, "--target", s.Target)
	}
	if s.NoDefaultFeatures {
		args = append(args, "--no-default-features")
	}
	for _, f := range s.Features {
		args = append(args, "--features", f)
	}
	args = append(args, s.Args...)
	if len(s.RunArgs) > 0 {
		args = append(args, "--")
		args = append(args, s.RunArgs...)
	}
	return args
}

// Handle controls one live supervised process.
type Handle struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu     sync.Mutex
	killed bool

	// status is written once, before done closes.
	status Status
}

// Spawn starts the application per the strategy. onExit, when non-nil, fires
// exactly once from the wait goroutine when the process exits for any reason.
func Spawn(s Strategy, onExit func(Status)) (*Handle, error) {
	runnerBin := s.Runner
	if runnerBin == "" {
		runnerBin = constants.DefaultRunnerBin
	}

	cmd := exec.Command(runnerBin, s.commandArgs()...) //nolint:gosec // G204: strategy comes from config + CLI flags
	cmd.Dir = s.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), s.ExtraEnv...)
	setSysProcAttr(cmd)

	return start(cmd, onExit)
}

// start launches cmd and wires up the exit notification.
func start(cmd *exec.Cmd, onExit func(Status)) (*Handle, error) {
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawning %s: %w", cmd.Path, err)
	}

	h := &Handle{cmd: cmd, done: make(chan struct{})}

	go func() {
		err := cmd.Wait()

		code := 0
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else if err != nil {
			code = -1
		}

		h.mu.Lock()
		reason := ReasonNormal
		if h.killed {
			reason = ReasonKilled
		}
		h.status = Status{Code: code, Reason: reason}
		h.mu.Unlock()

		close(h.done)
		if onExit != nil {
			onExit(h.status)
		}
	}()

	return h, nil
}

// Kill force-terminates the process (and its group on Unix). Killing an
// already-exited process is not an error. A genuine kill failure is returned
// to the caller, which treats it as fatal.
func (h *Handle) Kill() error {
	select {
	case <-h.done:
		return nil
	default:
	}

	h.mu.Lock()
	h.killed = true
	h.mu.Unlock()

	if err := killProcess(h.cmd); err != nil {
		// The process may have exited between the check and the signal.
		select {
		case <-h.done:
			return nil
		default:
			return fmt.Errorf("killing app process: %w", err)
		}
	}
	return nil
}

// Wait blocks until the process has fully exited and returns its status.
func (h *Handle) Wait() Status {
	<-h.done
	return h.status
}

// TryWait reports the exit status without blocking. ok is false while the
// process is still alive.
func (h *Handle) TryWait() (status Status, ok bool) {
	select {
	case <-h.done:
		return h.status, true
	default:
		return Status{}, false
	}
}
