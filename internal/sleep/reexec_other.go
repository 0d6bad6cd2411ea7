//go:build !unix

package sleep

import "errors"

// Reexec is not available on non-Unix platforms.
func Reexec() error {
	return errors.New("sleep: re-exec not supported on this platform")
}
