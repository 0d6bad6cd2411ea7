//go:build !linux

package gpio

import (
	"context"
	"errors"

	"github.com/sweeney/mailbox-sensor/internal/logic"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chip string, pin int, bias Bias) (*RealReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (logic.Level, error) {
	return logic.Low, errUnsupported
}

// WaitLevel is not implemented on non-Linux platforms.
func (r *RealReader) WaitLevel(ctx context.Context, level logic.Level) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// MemReader is not available on non-Linux platforms.
type MemReader struct{}

// NewMemReader returns an error on non-Linux platforms.
func NewMemReader(pin int, bias Bias) (*MemReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (m *MemReader) Read() (logic.Level, error) {
	return logic.Low, errUnsupported
}

// WaitLevel is not implemented on non-Linux platforms.
func (m *MemReader) WaitLevel(ctx context.Context, level logic.Level) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (m *MemReader) Close() error {
	return nil
}
