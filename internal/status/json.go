package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/mailbox-sensor/internal/logic"
)

// DiagJSON is the top-level JSON envelope for the diagnostics topic.
type DiagJSON struct {
	Diag DiagInner `json:"diag"`
}

// DiagInner contains the diagnostics details.
type DiagInner struct {
	Timestamp      string       `json:"timestamp"`
	Door           string       `json:"door"`
	Path           string       `json:"path"`
	BootCount      uint64       `json:"boot_count"`
	StuckBootCount uint64       `json:"stuck_boot_count"`
	TimeAwakeMs    int64        `json:"time_awake_ms"`
	CycleMs        int64        `json:"cycle_ms"`
	NextWake       WakeJSON     `json:"next_wake"`
	Network        *NetworkJSON `json:"network,omitempty"`
}

// WakeJSON is the JSON representation of the next wake source.
type WakeJSON struct {
	Kind    string `json:"kind"`
	Level   string `json:"level,omitempty"`
	AfterMs int64  `json:"after_ms,omitempty"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

func buildWake(snap Snapshot) WakeJSON {
	w := WakeJSON{Kind: string(snap.Wake.Kind)}
	if snap.Wake.Kind == logic.WakeTimer {
		w.AfterMs = snap.Wake.After.Milliseconds()
	} else {
		w.Level = snap.Wake.Level.String()
	}
	return w
}

// FormatDiag returns the JSON diagnostics payload.
func FormatDiag(snap Snapshot) []byte {
	inner := DiagInner{
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		Door:           string(snap.Door),
		Path:           string(snap.Path),
		BootCount:      snap.Retained.BootCount,
		StuckBootCount: snap.Retained.StuckBootCount,
		TimeAwakeMs:    snap.Retained.TimeAwake.Milliseconds(),
		CycleMs:        snap.Awake.Milliseconds(),
		NextWake:       buildWake(snap),
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}

	data, _ := json.Marshal(DiagJSON{Diag: inner})
	return data
}
