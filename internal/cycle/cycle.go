// Package cycle runs one boot cycle of the mailbox sensor: load the retained
// state, sample the lid, report, watch an open lid, commit, and suspend.
package cycle

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/mailbox-sensor/internal/gpio"
	"github.com/sweeney/mailbox-sensor/internal/logic"
	"github.com/sweeney/mailbox-sensor/internal/mqtt"
	"github.com/sweeney/mailbox-sensor/internal/sleep"
	"github.com/sweeney/mailbox-sensor/internal/status"
	"github.com/sweeney/mailbox-sensor/internal/store"
)

// Config holds the cycle's tunables and telemetry layout.
type Config struct {
	Thresholds logic.Thresholds
	Topics     mqtt.Topics
	Messages   mqtt.Messages
	// Network is included in diagnostics when set.
	Network *status.NetworkInfo
}

// Cycle wires the collaborators of a boot cycle.
type Cycle struct {
	cfg       Config
	store     store.Store
	sensor    *gpio.Sensor
	publisher mqtt.Publisher
	sleeper   sleep.Sleeper
	clock     Clock
}

// New creates a Cycle.
func New(cfg Config, st store.Store, sensor *gpio.Sensor, publisher mqtt.Publisher, sleeper sleep.Sleeper, clock Clock) *Cycle {
	return &Cycle{
		cfg:       cfg,
		store:     st,
		sensor:    sensor,
		publisher: publisher,
		sleeper:   sleeper,
		clock:     clock,
	}
}

// Run executes one boot cycle and suspends. It returns only when the
// suspend fails; telemetry failures never stop the cycle.
func (c *Cycle) Run(ctx context.Context) error {
	start := c.clock.Now()

	state, err := c.store.Load()
	if err != nil {
		log.Printf("load retained state: %v, treating as cold start", err)
		state = logic.ColdStart()
	}

	current := c.sample(state.LastDoorState)
	d := logic.Evaluate(state, current, c.sensor.Polarity().OpenLevel(), c.cfg.Thresholds)
	log.Printf("boot %d: door=%s last=%s stuck=%d path=%s",
		d.Next.BootCount, current, state.LastDoorState, d.Next.StuckBootCount, d.Path)
	if d.Recovered {
		log.Printf("recovered from stuck escalation after %d boots", state.StuckBootCount)
	}
	if d.Escalated() {
		log.Printf("stuck escalation: next wake %s", d.Wake)
	}

	r := newReporter(ctx, c.publisher, c.cfg.Topics, c.cfg.Messages)
	r.announce(d.Events)

	if d.RunMonitor {
		exit, elapsed := c.monitor()
		log.Printf("monitor: exit=%s after %v", exit, elapsed)
		r.announce(d.Finish(exit))
	}

	if d.Settle > 0 {
		c.clock.Sleep(d.Settle)
	}

	awake := c.clock.Now().Sub(start)
	if awake > 0 {
		d.Next.TimeAwake += awake
	}

	if c.publisher.IsConnected() {
		r.publish(c.cfg.Topics.Diag, string(status.FormatDiag(status.Snapshot{
			Now:      c.clock.Now(),
			Retained: d.Next,
			Door:     d.Next.LastDoorState,
			Path:     d.Path,
			Wake:     d.Wake,
			Awake:    awake,
			Network:  c.cfg.Network,
		})))
	}
	r.close()

	if err := c.store.Commit(d.Next); err != nil {
		// Nothing better to do than sleep on it; the next boot re-evaluates.
		log.Printf("commit retained state: %v", err)
	}

	err = c.sleeper.Suspend(ctx, d.Wake)
	// Suspend only returns on failure.
	return fmt.Errorf("boot %d: %w", d.Next.BootCount, err)
}

// sample reads the lid. A failed read reuses the last known state so that no
// event is fabricated; a cold start falls back to closed.
func (c *Cycle) sample(last logic.DoorState) logic.DoorState {
	s, err := c.sensor.Sample()
	if err == nil {
		return s
	}
	if last == logic.DoorUnknown {
		last = logic.DoorClosed
	}
	log.Printf("gpio read error: %v, assuming %s", err, last)
	return last
}

// monitor polls an open lid until it closes or stays open past
// MaxOpenDuration. Elapsed time is counted in poll intervals, so the exit
// happens within MaxOpenDuration + PollInterval.
func (c *Cycle) monitor() (logic.MonitorExit, time.Duration) {
	th := c.cfg.Thresholds
	var elapsed time.Duration
	for {
		c.publisher.KeepAlive()

		s, err := c.sensor.Sample()
		if err != nil {
			log.Printf("gpio read error: %v", err)
			s = logic.DoorOpen
		}

		if exit := logic.CheckOpen(s, elapsed, th); exit != logic.MonitorRunning {
			return exit, elapsed
		}

		c.clock.Sleep(th.PollInterval)
		elapsed += th.PollInterval
	}
}
