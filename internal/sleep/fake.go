package sleep

import (
	"context"
	"errors"

	"github.com/sweeney/mailbox-sensor/internal/logic"
)

// ErrSuspended is returned by FakeSleeper in place of never returning.
var ErrSuspended = errors.New("sleep: suspended (fake)")

// FakeSleeper records wake sources for test assertions.
type FakeSleeper struct {
	// Wakes contains every wake source passed to Suspend.
	Wakes []logic.WakeSource
}

// NewFakeSleeper creates a FakeSleeper.
func NewFakeSleeper() *FakeSleeper {
	return &FakeSleeper{}
}

// Suspend records wake and returns ErrSuspended.
func (f *FakeSleeper) Suspend(ctx context.Context, wake logic.WakeSource) error {
	f.Wakes = append(f.Wakes, wake)
	return ErrSuspended
}

// Last returns the most recent wake source, or false if Suspend was never called.
func (f *FakeSleeper) Last() (logic.WakeSource, bool) {
	if len(f.Wakes) == 0 {
		return logic.WakeSource{}, false
	}
	return f.Wakes[len(f.Wakes)-1], true
}
