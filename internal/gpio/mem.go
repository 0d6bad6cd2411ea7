//go:build linux

package gpio

import (
	"context"
	"fmt"

	"github.com/sweeney/mailbox-sensor/internal/logic"
	rpio "github.com/warthog618/gpio"
)

// MemReader reads the sensor line through /dev/gpiomem.
// Used on kernels or images without the GPIO character device.
type MemReader struct {
	pin    *rpio.Pin
	edges  chan struct{}
	closed bool
}

// NewMemReader maps GPIO memory and configures pin as a biased input.
func NewMemReader(pin int, bias Bias) (*MemReader, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpiomem: %w", err)
	}

	p := rpio.NewPin(pin)
	p.Input()
	switch bias {
	case BiasPullDown:
		p.PullDown()
	case BiasNone:
		p.PullNone()
	default:
		p.PullUp()
	}

	return &MemReader{pin: p, edges: make(chan struct{}, 1)}, nil
}

// Read returns the raw level of the pin.
func (m *MemReader) Read() (logic.Level, error) {
	if m.closed {
		return logic.Low, errClosed
	}
	if m.pin.Read() == rpio.High {
		return logic.High, nil
	}
	return logic.Low, nil
}

// WaitLevel watches both edges until the pin reads level or ctx is done.
func (m *MemReader) WaitLevel(ctx context.Context, level logic.Level) error {
	err := m.pin.Watch(rpio.EdgeBoth, func(*rpio.Pin) {
		select {
		case m.edges <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("watch pin: %w", err)
	}
	defer m.pin.Unwatch()

	for {
		if l, _ := m.Read(); l == level {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.edges:
		}
	}
}

// Close unmaps GPIO memory. Closing an already closed reader does nothing.
func (m *MemReader) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return rpio.Close()
}
