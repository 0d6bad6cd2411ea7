// Package status builds the diagnostics snapshot published once per boot cycle.
package status

import (
	"time"

	"github.com/sweeney/mailbox-sensor/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Snapshot is a point-in-time view of one boot cycle.
type Snapshot struct {
	Now      time.Time
	Retained logic.RetainedState
	Door     logic.DoorState
	Path     logic.Path
	Wake     logic.WakeSource
	Awake    time.Duration // active time of this cycle so far
	Network  *NetworkInfo
}
