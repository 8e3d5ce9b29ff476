//go:build windows

package lock

import "os"

// processExists checks if a process with the given PID is alive.
// Windows has no signal 0; FindProcess succeeding is the best available
// liveness check.
func processExists(pid int) bool {
	if pid <= 0 {
		return false
	}

	_, err := os.FindProcess(pid)
	return err == nil
}
