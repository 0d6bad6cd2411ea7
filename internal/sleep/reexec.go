//go:build unix

package sleep

import (
	"fmt"
	"os"
	"syscall"
)

// Reexec replaces the running process with a fresh copy of itself.
// It only returns on failure.
func Reexec() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	return syscall.Exec(exe, os.Args, os.Environ())
}
