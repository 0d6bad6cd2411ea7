//go:build linux

package gpio

import (
	"context"
	"fmt"

	"github.com/sweeney/mailbox-sensor/internal/logic"
	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the sensor line through the Linux GPIO character device.
type RealReader struct {
	line  *gpiocdev.Line
	edges chan struct{}
}

// NewRealReader requests the line as an input with edge events enabled, so
// that the same request can serve sampling and edge wake.
func NewRealReader(chip string, pin int, bias Bias) (*RealReader, error) {
	if chip == "" {
		chip = DefaultChip
	}
	r := &RealReader{edges: make(chan struct{}, 1)}

	line, err := gpiocdev.RequestLine(chip, pin,
		gpiocdev.AsInput,
		cdevBias(bias),
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(r.handleEvent))
	if err != nil {
		return nil, fmt.Errorf("request pin %d on %s: %w", pin, chip, err)
	}
	r.line = line
	return r, nil
}

func cdevBias(b Bias) gpiocdev.LineReqOption {
	switch b {
	case BiasPullDown:
		return gpiocdev.WithPullDown
	case BiasNone:
		return gpiocdev.WithBiasDisabled
	default:
		return gpiocdev.WithPullUp
	}
}

// handleEvent runs on the gpiocdev watcher goroutine. It only signals;
// WaitLevel re-reads the line to decide.
func (r *RealReader) handleEvent(evt gpiocdev.LineEvent) {
	select {
	case r.edges <- struct{}{}:
	default:
	}
}

// Read returns the raw level of the line.
func (r *RealReader) Read() (logic.Level, error) {
	if r.line == nil {
		return logic.Low, errClosed
	}
	v, err := r.line.Value()
	if err != nil {
		return logic.Low, fmt.Errorf("read pin: %w", err)
	}
	if v == 0 {
		return logic.Low, nil
	}
	return logic.High, nil
}

// WaitLevel blocks until the line reads level or ctx is done.
func (r *RealReader) WaitLevel(ctx context.Context, level logic.Level) error {
	for {
		// Drop edges that arrived before this read; any later edge re-triggers.
		select {
		case <-r.edges:
		default:
		}
		l, err := r.Read()
		if err != nil {
			return err
		}
		if l == level {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.edges:
		}
	}
}

// Close reconfigures the line to a plain input and releases it.
// Closing an already closed reader does nothing.
func (r *RealReader) Close() error {
	if r.line == nil {
		return nil
	}
	line := r.line
	r.line = nil

	var errs []error
	if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithoutEdges); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
	}
	if err := line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
