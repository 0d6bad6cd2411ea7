package gpio

import (
	"context"
	"errors"
	"testing"

	"github.com/sweeney/mailbox-sensor/internal/logic"
)

func TestFakeReaderRead(t *testing.T) {
	f := NewFakeReader(logic.High, logic.Low, logic.High)

	want := []logic.Level{logic.High, logic.Low, logic.High, logic.High}
	for i, w := range want {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: expected %s, got %s", i, w, got)
		}
	}
	if f.Reads != 4 {
		t.Errorf("expected 4 reads, got %d", f.Reads)
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader()

	_, err := f.Read()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader(logic.High)
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader(logic.High)

	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeReaderReset(t *testing.T) {
	f := NewFakeReader(logic.High, logic.Low)

	f.Read()
	f.Reset()

	got, _ := f.Read()
	if got != logic.High {
		t.Errorf("after reset: expected HIGH, got %s", got)
	}
}

func TestFakeReaderWaitLevel(t *testing.T) {
	f := NewFakeReader(logic.Low)

	if err := f.WaitLevel(context.Background(), logic.High); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Waited) != 1 || f.Waited[0] != logic.High {
		t.Errorf("expected Waited=[HIGH], got %v", f.Waited)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.WaitLevel(ctx, logic.Low); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPolarity(t *testing.T) {
	tests := []struct {
		name      string
		pol       Polarity
		level     logic.Level
		wantState logic.DoorState
	}{
		{"closed is low, low", Polarity{ClosedIsLow: true}, logic.Low, logic.DoorClosed},
		{"closed is low, high", Polarity{ClosedIsLow: true}, logic.High, logic.DoorOpen},
		{"closed is high, high", Polarity{ClosedIsLow: false}, logic.High, logic.DoorClosed},
		{"closed is high, low", Polarity{ClosedIsLow: false}, logic.Low, logic.DoorOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pol.State(tt.level); got != tt.wantState {
				t.Errorf("got %s, want %s", got, tt.wantState)
			}
		})
	}
}

func TestPolarityOpenLevel(t *testing.T) {
	if got := (Polarity{ClosedIsLow: true}).OpenLevel(); got != logic.High {
		t.Errorf("closed_is_low: expected open level HIGH, got %s", got)
	}
	if got := (Polarity{ClosedIsLow: false}).OpenLevel(); got != logic.Low {
		t.Errorf("closed_is_high: expected open level LOW, got %s", got)
	}
}

func TestSensorSample(t *testing.T) {
	s := NewSensor(NewFakeReader(logic.Low, logic.High), Polarity{ClosedIsLow: true})

	state, err := s.Sample()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != logic.DoorClosed {
		t.Errorf("expected CLOSED, got %s", state)
	}

	state, _ = s.Sample()
	if state != logic.DoorOpen {
		t.Errorf("expected OPEN, got %s", state)
	}
}

func TestSensorSampleError(t *testing.T) {
	r := NewFakeReader(logic.Low)
	r.ReadError = errors.New("line gone")
	s := NewSensor(r, Polarity{ClosedIsLow: true})

	state, err := s.Sample()
	if err == nil {
		t.Fatal("expected error")
	}
	if state != logic.DoorUnknown {
		t.Errorf("expected UNKNOWN on error, got %s", state)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(Config{Backend: "spi"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
