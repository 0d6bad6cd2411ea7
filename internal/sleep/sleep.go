// Package sleep implements the terminal step of a boot cycle: arm one wake
// source, block until it fires, then restart the process image so the next
// cycle starts with nothing but the retained state.
package sleep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/sweeney/mailbox-sensor/internal/gpio"
	"github.com/sweeney/mailbox-sensor/internal/logic"
)

// Sleeper suspends the device until the wake source fires.
type Sleeper interface {
	// Suspend never returns on success: control resumes at the top of the
	// next boot cycle. A returned error means the suspend failed.
	Suspend(ctx context.Context, wake logic.WakeSource) error
}

// Controller is the production Sleeper.
type Controller struct {
	waiter  gpio.LevelWaiter
	release []io.Closer
	restart func() error
}

// New creates a Controller that waits on waiter for edge wakes and closes
// release before restarting.
func New(waiter gpio.LevelWaiter, release ...io.Closer) *Controller {
	return &Controller{
		waiter:  waiter,
		release: release,
		restart: Reexec,
	}
}

// Suspend arms exactly one wake source and blocks on it, then restarts.
func (c *Controller) Suspend(ctx context.Context, wake logic.WakeSource) error {
	log.Printf("suspend: wake on %s", wake)

	var err error
	switch wake.Kind {
	case logic.WakeEdge:
		if c.waiter == nil {
			return errors.New("suspend: edge wake requested without a level waiter")
		}
		err = c.waiter.WaitLevel(ctx, wake.Level)
	case logic.WakeTimer:
		err = waitTimer(ctx, wake.After)
	default:
		return fmt.Errorf("suspend: unknown wake kind %q", wake.Kind)
	}
	if err != nil {
		return fmt.Errorf("suspend: wait %s: %w", wake, err)
	}

	for _, r := range c.release {
		if err := r.Close(); err != nil {
			log.Printf("suspend: release: %v", err)
		}
	}
	if err := c.restart(); err != nil {
		return fmt.Errorf("suspend: restart: %w", err)
	}
	return errors.New("suspend: restart returned")
}

func waitTimer(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
