package cycle

import "time"

// Clock is the cycle's only source of time and its only way to pause.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock uses the wall clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time { return time.Now() }

// Sleep pauses for d.
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }
