//go:build windows

package runner

import "os/exec"

// setSysProcAttr sets platform-specific process attributes.
// No process-group handling on Windows.
func setSysProcAttr(cmd *exec.Cmd) {}

// killProcess force-terminates the child process.
func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
