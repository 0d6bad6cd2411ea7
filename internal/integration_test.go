package internal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/mailbox-sensor/internal/cycle"
	"github.com/sweeney/mailbox-sensor/internal/gpio"
	"github.com/sweeney/mailbox-sensor/internal/logic"
	"github.com/sweeney/mailbox-sensor/internal/mqtt"
	"github.com/sweeney/mailbox-sensor/internal/sleep"
	"github.com/sweeney/mailbox-sensor/internal/store"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time        { return c.now }
func (c *stepClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

var polarity = gpio.Polarity{ClosedIsLow: true}

func level(s logic.DoorState) logic.Level {
	if s == logic.DoorClosed {
		return polarity.ClosedLevel()
	}
	return polarity.OpenLevel()
}

// device simulates power cycles: every boot builds fresh collaborators and
// only the state file carries over.
type device struct {
	t       *testing.T
	path    string
	clock   *stepClock
	pub     *mqtt.FakePublisher
	sleeper *sleep.FakeSleeper
}

func newDevice(t *testing.T) *device {
	return &device{
		t:       t,
		path:    filepath.Join(t.TempDir(), "retained.json"),
		clock:   &stepClock{now: time.Date(2026, 2, 2, 7, 0, 0, 0, time.UTC)},
		pub:     mqtt.NewFakePublisher(),
		sleeper: sleep.NewFakeSleeper(),
	}
}

// boot runs one cycle with the lid reading the given states in order and
// returns the status messages it published.
func (d *device) boot(states ...logic.DoorState) []string {
	d.t.Helper()
	levels := make([]logic.Level, len(states))
	for i, s := range states {
		levels[i] = level(s)
	}

	d.pub.Reset()
	c := cycle.New(cycle.Config{
		Thresholds: logic.Thresholds{
			StuckThreshold:  5,
			SettleDelay:     time.Second,
			StuckInterval:   time.Hour,
			MaxOpenDuration: 30 * time.Second,
			PollInterval:    500 * time.Millisecond,
		},
		Topics:   mqtt.DefaultTopics(),
		Messages: mqtt.DefaultMessages(),
	}, store.NewFileStore(d.path), gpio.NewSensor(gpio.NewFakeReader(levels...), polarity), d.pub, d.sleeper, d.clock)

	if err := c.Run(context.Background()); !errors.Is(err, sleep.ErrSuspended) {
		d.t.Fatalf("expected suspend, got %v", err)
	}
	return d.pub.OnTopic(mqtt.DefaultTopics().Status)
}

func (d *device) retained() logic.RetainedState {
	d.t.Helper()
	s, err := store.NewFileStore(d.path).Load()
	if err != nil {
		d.t.Fatalf("load: %v", err)
	}
	return s
}

func (d *device) lastWake() logic.WakeSource {
	d.t.Helper()
	w, ok := d.sleeper.Last()
	if !ok {
		d.t.Fatal("no suspend recorded")
	}
	return w
}

// TestIntegrationMailDay walks through a delivery and a collection.
func TestIntegrationMailDay(t *testing.T) {
	d := newDevice(t)

	// First power-up with the lid shut.
	if got := d.boot(logic.DoorClosed); len(got) != 0 {
		t.Errorf("cold start: expected silence, got %v", got)
	}

	// Postman opens the lid, it closes after 1.5s.
	got := d.boot(logic.DoorOpen, logic.DoorOpen, logic.DoorOpen, logic.DoorOpen, logic.DoorClosed)
	if len(got) != 2 || got[0] != "Mailbox opened" || got[1] != "Mailbox closed" {
		t.Errorf("delivery: got %v", got)
	}

	// Owner collects later.
	got = d.boot(logic.DoorOpen, logic.DoorClosed)
	if len(got) != 2 || got[0] != "Mailbox opened" || got[1] != "Mailbox closed" {
		t.Errorf("collection: got %v", got)
	}

	s := d.retained()
	if s.BootCount != 3 {
		t.Errorf("expected 3 boots, got %d", s.BootCount)
	}
	if s.LastDoorState != logic.DoorClosed || s.StuckBootCount != 0 {
		t.Errorf("unexpected retained state %+v", s)
	}
	if s.TimeAwake != 1500*time.Millisecond {
		t.Errorf("expected 1.5s awake, got %v", s.TimeAwake)
	}
	if w := d.lastWake(); w != logic.EdgeTrigger(logic.High) {
		t.Errorf("expected edge(HIGH), got %s", w)
	}
}

// TestIntegrationJammedLid covers a lid that never closes: one open-loop
// timeout, repeated edge wakes, escalation to timer wake, and recovery.
func TestIntegrationJammedLid(t *testing.T) {
	d := newDevice(t)
	d.boot(logic.DoorClosed)

	got := d.boot(logic.DoorOpen)
	if len(got) != 2 || got[0] != "Mailbox opened" || got[1] != "Mailbox door stuck open" {
		t.Fatalf("jam: got %v", got)
	}

	for i := 1; i <= 5; i++ {
		if got := d.boot(logic.DoorOpen); len(got) != 0 {
			t.Errorf("repeat %d: expected silence, got %v", i, got)
		}
		if w := d.lastWake(); w.Kind != logic.WakeEdge {
			t.Errorf("repeat %d: expected edge wake, got %s", i, w)
		}
	}

	for i := 0; i < 3; i++ {
		got := d.boot(logic.DoorOpen)
		if len(got) != 1 || got[0] != "Mailbox door stuck open" {
			t.Errorf("escalated boot %d: got %v", i, got)
		}
		if w := d.lastWake(); w != logic.TimerAlarm(time.Hour) {
			t.Errorf("escalated boot %d: expected timer(1h), got %s", i, w)
		}
	}
	if s := d.retained(); s.StuckBootCount != 8 {
		t.Errorf("expected StuckBootCount=8, got %d", s.StuckBootCount)
	}

	got = d.boot(logic.DoorClosed)
	if len(got) != 1 || got[0] != "Mailbox closed" {
		t.Errorf("recovery: got %v", got)
	}
	s := d.retained()
	if s.StuckBootCount != 0 || s.LastDoorState != logic.DoorClosed {
		t.Errorf("after recovery: %+v", s)
	}
	if w := d.lastWake(); w.Kind != logic.WakeEdge {
		t.Errorf("after recovery: expected edge wake, got %s", w)
	}
}

// TestIntegrationBrokerDown checks that the retained state advances exactly
// as with a healthy broker.
func TestIntegrationBrokerDown(t *testing.T) {
	d := newDevice(t)
	d.boot(logic.DoorClosed)

	d.pub.Reset()
	d.pub.ConnectError = mqtt.ErrConnectTimeout
	// boot() resets the fake, so drive this cycle by hand.
	c := cycle.New(cycle.Config{
		Thresholds: logic.DefaultThresholds(),
		Topics:     mqtt.DefaultTopics(),
		Messages:   mqtt.DefaultMessages(),
	}, store.NewFileStore(d.path), gpio.NewSensor(gpio.NewFakeReader(level(logic.DoorOpen), level(logic.DoorClosed)), polarity), d.pub, d.sleeper, d.clock)
	if err := c.Run(context.Background()); !errors.Is(err, sleep.ErrSuspended) {
		t.Fatalf("expected suspend, got %v", err)
	}

	if len(d.pub.Messages) != 0 {
		t.Errorf("expected nothing published, got %v", d.pub.Messages)
	}
	s := d.retained()
	if s.BootCount != 2 || s.LastDoorState != logic.DoorClosed {
		t.Errorf("unexpected retained state %+v", s)
	}
}
