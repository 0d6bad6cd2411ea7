// Package logic contains the pure wake/boot decision logic for the mailbox sensor.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Durations are plain values; all side effects live in internal/cycle.
package logic

import "time"

// DoorState is the semantic state of the mailbox lid.
type DoorState string

const (
	// DoorUnknown is the cold-start sentinel. A sample is never Unknown.
	DoorUnknown DoorState = "UNKNOWN"
	DoorOpen    DoorState = "OPEN"
	DoorClosed  DoorState = "CLOSED"
)

// Valid reports whether s is one of the three known values.
func (s DoorState) Valid() bool {
	switch s {
	case DoorUnknown, DoorOpen, DoorClosed:
		return true
	}
	return false
}

// Level is a raw electrical level on the sensor line.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// EventType is a door event to be published.
type EventType string

const (
	EventOpened EventType = "OPENED"
	EventClosed EventType = "CLOSED"
	EventStuck  EventType = "STUCK"

	// EventRecovered announces the end of an escalation that a closed event
	// does not already cover: a lid stuck closed that opens.
	EventRecovered EventType = "RECOVERED"
)

// RetainedState is everything that survives a suspend.
// Exactly one boot cycle mutates it, between load and commit.
type RetainedState struct {
	BootCount      uint64
	StuckBootCount uint64
	LastDoorState  DoorState
	TimeAwake      time.Duration // accumulated active time, never decreases
}

// ColdStart returns the retained state of a device that has never booted.
func ColdStart() RetainedState {
	return RetainedState{LastDoorState: DoorUnknown}
}

// WakeKind selects the wake source for the next suspend.
type WakeKind string

const (
	WakeEdge  WakeKind = "EDGE"
	WakeTimer WakeKind = "TIMER"
)

// WakeSource is the single wake source configured for a suspend.
// Level is used for WakeEdge, After for WakeTimer.
type WakeSource struct {
	Kind  WakeKind
	Level Level
	After time.Duration
}

// EdgeTrigger wakes when the sensor line is at level.
func EdgeTrigger(level Level) WakeSource {
	return WakeSource{Kind: WakeEdge, Level: level}
}

// TimerAlarm wakes unconditionally after d.
func TimerAlarm(d time.Duration) WakeSource {
	return WakeSource{Kind: WakeTimer, After: d}
}

func (w WakeSource) String() string {
	if w.Kind == WakeTimer {
		return "timer(" + w.After.String() + ")"
	}
	return "edge(" + w.Level.String() + ")"
}

// Thresholds are the tunables of the decision engine and the open-loop monitor.
type Thresholds struct {
	// StuckThreshold is the number of repeated boots tolerated before
	// escalating to timer wake. Escalation happens when the count exceeds it.
	StuckThreshold uint64
	// SettleDelay is paused before re-arming the edge wake on a repeat boot.
	SettleDelay time.Duration
	// StuckInterval is the timer wake used while escalated.
	StuckInterval time.Duration
	// MaxOpenDuration bounds a single open episode inside the monitor.
	MaxOpenDuration time.Duration
	// PollInterval is the monitor's iteration period.
	PollInterval time.Duration
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StuckThreshold:  5,
		SettleDelay:     2 * time.Second,
		StuckInterval:   30 * time.Minute,
		MaxOpenDuration: 2 * time.Minute,
		PollInterval:    500 * time.Millisecond,
	}
}
