package logic

import "time"

// MonitorExit is the reason the open-loop monitor stopped.
type MonitorExit string

const (
	// MonitorRunning means no exit condition holds yet.
	MonitorRunning MonitorExit = ""
	// MonitorClosed is the normal exit: the lid closed.
	MonitorClosed MonitorExit = "CLOSED"
	// MonitorTimeout means the lid stayed open longer than MaxOpenDuration.
	MonitorTimeout MonitorExit = "TIMEOUT"
)

// CheckOpen evaluates the monitor's exit conditions for one iteration.
// elapsed is the open time accumulated before this iteration's sample.
func CheckOpen(sample DoorState, elapsed time.Duration, th Thresholds) MonitorExit {
	if sample == DoorClosed {
		return MonitorClosed
	}
	if elapsed > th.MaxOpenDuration {
		return MonitorTimeout
	}
	return MonitorRunning
}

// Finish applies the monitor's exit to the decision and returns the events
// it produces. The retained last state becomes the state at monitor exit.
func (d *Decision) Finish(exit MonitorExit) []EventType {
	switch exit {
	case MonitorClosed:
		d.Next.LastDoorState = DoorClosed
		return []EventType{EventClosed}
	case MonitorTimeout:
		d.Next.LastDoorState = DoorOpen
		return []EventType{EventStuck}
	}
	return nil
}
