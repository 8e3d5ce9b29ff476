//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr sets platform-specific process attributes.
// On Unix the child gets its own process group so a kill reaches the whole
// tree the build tool spawns, not just the build tool itself.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcess force-terminates the child's process group.
func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		// Group may already be gone; fall back to the direct process.
		return cmd.Process.Kill()
	}
	return nil
}
