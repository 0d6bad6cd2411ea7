package logic

import "time"

// Path is the branch of the decision tree taken on a boot.
type Path string

const (
	// PathRewait: sample repeats the retained state, still under the threshold.
	PathRewait Path = "REWAIT"
	// PathEscalate: sample repeated more than the threshold allows.
	PathEscalate Path = "ESCALATE"
	// PathChanged: sample differs from the retained state.
	PathChanged Path = "CHANGED"
)

// Decision is the outcome of evaluating one boot.
type Decision struct {
	Path Path
	// Current is the sampled door state this decision was made for.
	Current DoorState
	// Next is the retained state to commit before suspending.
	Next RetainedState
	// Events are published in order, before the monitor runs.
	Events []EventType
	// Recovered is set when a transition ends a stuck escalation.
	Recovered bool
	// RunMonitor requests the open-loop monitor.
	RunMonitor bool
	// Settle is paused before suspending.
	Settle time.Duration
	Wake   WakeSource
}

// Evaluate runs the boot decision tree against the retained state and the
// current sample. openLevel is the raw line level that means the door is open.
//
// The Unknown sentinel never equals a sample, so a cold start is always a
// change. A change takes precedence over stuck bookkeeping: any transition
// resets the stuck counter, even after an escalation to timer wake.
func Evaluate(state RetainedState, current DoorState, openLevel Level, th Thresholds) Decision {
	next := state
	next.BootCount++

	if current == state.LastDoorState {
		next.StuckBootCount++
		if next.StuckBootCount > th.StuckThreshold {
			return Decision{
				Path:    PathEscalate,
				Current: current,
				Next:    next,
				Events:  []EventType{EventStuck},
				Wake:    TimerAlarm(th.StuckInterval),
			}
		}
		return Decision{
			Path:    PathRewait,
			Current: current,
			Next:    next,
			Settle:  th.SettleDelay,
			Wake:    EdgeTrigger(openLevel),
		}
	}

	d := Decision{
		Path:      PathChanged,
		Current:   current,
		Recovered: state.StuckBootCount > th.StuckThreshold,
		Wake:      EdgeTrigger(openLevel),
	}
	next.StuckBootCount = 0
	next.LastDoorState = current

	switch current {
	case DoorOpen:
		if d.Recovered {
			d.Events = append(d.Events, EventRecovered)
		}
		d.Events = append(d.Events, EventOpened)
		d.RunMonitor = true
	case DoorClosed:
		if state.LastDoorState == DoorOpen || d.Recovered {
			d.Events = []EventType{EventClosed}
		}
	}
	d.Next = next
	return d
}

// Escalated reports whether the next boot starts in timer-wake mode.
func (d Decision) Escalated() bool {
	return d.Wake.Kind == WakeTimer
}
