package gpio

import (
	"context"
	"errors"

	"github.com/sweeney/mailbox-sensor/internal/logic"
)

// FakeReader is a test double that returns scripted line levels.
type FakeReader struct {
	// Samples contains scripted levels to return.
	// Each call to Read() consumes the next sample.
	Samples []logic.Level

	// index tracks current position in Samples
	index int

	// Reads counts calls to Read.
	Reads int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Waited records the levels passed to WaitLevel.
	Waited []logic.Level
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...logic.Level) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (logic.Level, error) {
	f.Reads++
	if f.ReadError != nil {
		return logic.Low, f.ReadError
	}

	if len(f.Samples) == 0 {
		return logic.Low, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// WaitLevel records the requested level and returns immediately.
func (f *FakeReader) WaitLevel(ctx context.Context, level logic.Level) error {
	f.Waited = append(f.Waited, level)
	return ctx.Err()
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
	f.Waited = nil
}
