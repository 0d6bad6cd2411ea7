// Package gpio provides sensor line reading with hardware abstraction.
// The real implementations use the Linux GPIO character device or /dev/gpiomem.
// The fake implementation allows testing without hardware.
package gpio

import (
	"context"
	"errors"
	"fmt"

	"github.com/sweeney/mailbox-sensor/internal/logic"
)

var errClosed = errors.New("gpio: reader closed")

// Reader reads the raw level of the reed switch line.
type Reader interface {
	// Read returns the raw electrical level of the line.
	Read() (logic.Level, error)

	// Close releases GPIO resources. A second Close is a no-op.
	Close() error
}

// LevelWaiter blocks until the line is at a given level.
// Implemented by readers that can serve as an edge wake source.
type LevelWaiter interface {
	// WaitLevel returns nil as soon as the line reads level, including
	// immediately if it already does.
	WaitLevel(ctx context.Context, level logic.Level) error
}

// Bias selects the line's internal pull resistor.
type Bias string

const (
	BiasPullUp   Bias = "up"
	BiasPullDown Bias = "down"
	BiasNone     Bias = "none"
)

// Backend names.
const (
	BackendCdev = "gpiocdev"
	BackendMem  = "gpiomem"
)

// Defaults for a reed switch between the pin and ground.
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17
)

// Config selects and configures the sensor line.
type Config struct {
	Backend string
	Chip    string
	Pin     int
	Bias    Bias
}

// Open creates a Reader for the configured backend.
func Open(cfg Config) (Reader, error) {
	switch cfg.Backend {
	case BackendCdev, "":
		r, err := NewRealReader(cfg.Chip, cfg.Pin, cfg.Bias)
		if err != nil {
			return nil, err
		}
		return r, nil
	case BackendMem:
		r, err := NewMemReader(cfg.Pin, cfg.Bias)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown gpio backend %q", cfg.Backend)
	}
}

// Polarity fixes which raw level means the lid is closed.
type Polarity struct {
	ClosedIsLow bool
}

// ClosedLevel returns the raw level that maps to DoorClosed.
func (p Polarity) ClosedLevel() logic.Level {
	if p.ClosedIsLow {
		return logic.Low
	}
	return logic.High
}

// OpenLevel returns the raw level that maps to DoorOpen.
func (p Polarity) OpenLevel() logic.Level {
	if p.ClosedIsLow {
		return logic.High
	}
	return logic.Low
}

// State maps a raw level to a door state.
func (p Polarity) State(l logic.Level) logic.DoorState {
	if l == p.ClosedLevel() {
		return logic.DoorClosed
	}
	return logic.DoorOpen
}

// Sensor samples the door state through a Reader.
type Sensor struct {
	reader   Reader
	polarity Polarity
}

// NewSensor creates a Sensor reading r with polarity p.
func NewSensor(r Reader, p Polarity) *Sensor {
	return &Sensor{reader: r, polarity: p}
}

// Sample reads the line once and maps it to DoorOpen or DoorClosed.
func (s *Sensor) Sample() (logic.DoorState, error) {
	l, err := s.reader.Read()
	if err != nil {
		return logic.DoorUnknown, err
	}
	return s.polarity.State(l), nil
}

// Polarity returns the sensor's configured polarity.
func (s *Sensor) Polarity() Polarity {
	return s.polarity
}
