package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/mailbox-sensor/internal/logic"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Now: time.Date(2026, 3, 4, 7, 15, 0, 0, time.UTC),
		Retained: logic.RetainedState{
			BootCount:      12,
			StuckBootCount: 0,
			LastDoorState:  logic.DoorClosed,
			TimeAwake:      95 * time.Second,
		},
		Door:  logic.DoorOpen,
		Path:  logic.PathChanged,
		Wake:  logic.EdgeTrigger(logic.High),
		Awake: 3200 * time.Millisecond,
	}
}

func TestFormatDiag(t *testing.T) {
	data := FormatDiag(testSnapshot())

	var parsed DiagJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	d := parsed.Diag

	if d.Timestamp != "2026-03-04T07:15:00Z" {
		t.Errorf("Timestamp: got %q", d.Timestamp)
	}
	if d.Door != "OPEN" {
		t.Errorf("Door: got %q", d.Door)
	}
	if d.Path != "CHANGED" {
		t.Errorf("Path: got %q", d.Path)
	}
	if d.BootCount != 12 {
		t.Errorf("BootCount: got %d", d.BootCount)
	}
	if d.TimeAwakeMs != 95000 {
		t.Errorf("TimeAwakeMs: got %d", d.TimeAwakeMs)
	}
	if d.CycleMs != 3200 {
		t.Errorf("CycleMs: got %d", d.CycleMs)
	}
	if d.NextWake.Kind != "EDGE" || d.NextWake.Level != "HIGH" || d.NextWake.AfterMs != 0 {
		t.Errorf("NextWake: got %+v", d.NextWake)
	}
	if d.Network != nil {
		t.Errorf("expected no network, got %+v", d.Network)
	}
}

func TestFormatDiagExactJSON(t *testing.T) {
	snap := testSnapshot()
	snap.Path = logic.PathEscalate
	snap.Wake = logic.TimerAlarm(30 * time.Minute)
	snap.Retained.StuckBootCount = 6

	want := `{"diag":{"timestamp":"2026-03-04T07:15:00Z","door":"OPEN","path":"ESCALATE","boot_count":12,"stuck_boot_count":6,"time_awake_ms":95000,"cycle_ms":3200,"next_wake":{"kind":"TIMER","after_ms":1800000}}}`
	if got := string(FormatDiag(snap)); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestFormatDiagWithNetwork(t *testing.T) {
	snap := testSnapshot()
	snap.Network = &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "HomeNet"}

	var parsed DiagJSON
	if err := json.Unmarshal(FormatDiag(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	n := parsed.Diag.Network
	if n == nil {
		t.Fatal("expected network info")
	}
	if n.IP != "192.168.1.42" || n.SSID != "HomeNet" || n.Type != "wifi" {
		t.Errorf("Network: got %+v", n)
	}
}
