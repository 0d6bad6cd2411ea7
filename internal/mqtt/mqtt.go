// Package mqtt provides best-effort MQTT telemetry with abstraction for testing.
package mqtt

import (
	"context"
	"errors"

	"github.com/sweeney/mailbox-sensor/internal/logic"
)

var (
	// ErrConnectTimeout is returned when every bounded connect attempt failed.
	ErrConnectTimeout = errors.New("mqtt: connect attempts exhausted")
	// ErrPublishTimeout is returned when the broker did not acknowledge in time.
	ErrPublishTimeout = errors.New("mqtt: publish timeout")
	// ErrNotConnected is returned by Publish before a successful Connect.
	ErrNotConnected = errors.New("mqtt: not connected")
)

// Publisher is the telemetry transport consumed by the boot cycle.
// Every method is bounded in time; none of them retries forever.
type Publisher interface {
	// Connect attempts to reach the broker a bounded number of times.
	Connect(ctx context.Context) error

	// Publish sends payload to topic. Messages are never retained.
	Publish(topic, payload string) error

	// KeepAlive services the connection without blocking.
	KeepAlive()

	// IsConnected reports whether the connection is up.
	IsConnected() bool

	// Close disconnects from the broker.
	Close() error
}

// Topics are the MQTT topics the sensor publishes to.
type Topics struct {
	State  string `yaml:"state"`
	Status string `yaml:"status"`
	Diag   string `yaml:"diag"`
}

// DefaultTopics returns the default topic layout.
func DefaultTopics() Topics {
	return Topics{
		State:  "mailbox/door/state",
		Status: "mailbox/door/status",
		Diag:   "mailbox/door/diag",
	}
}

// Messages are the human-readable status payloads.
type Messages struct {
	Opened    string `yaml:"opened"`
	Closed    string `yaml:"closed"`
	Stuck     string `yaml:"stuck"`
	Recovered string `yaml:"recovered"`
}

// DefaultMessages returns the default status texts.
func DefaultMessages() Messages {
	return Messages{
		Opened:    "Mailbox opened",
		Closed:    "Mailbox closed",
		Stuck:     "Mailbox door stuck open",
		Recovered: "Mailbox sensor recovered",
	}
}

// Message is one topic/payload pair.
type Message struct {
	Topic   string
	Payload string
}

// StatePayload is the door-state topic payload: "1" open, "0" closed.
func StatePayload(s logic.DoorState) string {
	if s == logic.DoorOpen {
		return "1"
	}
	return "0"
}

// EventMessages returns the messages announcing event, state topic first.
// A recovery carries no door state of its own and goes to the status topic only.
func EventMessages(event logic.EventType, topics Topics, msgs Messages) []Message {
	if event == logic.EventRecovered {
		return []Message{{Topic: topics.Status, Payload: msgs.Recovered}}
	}

	var door logic.DoorState
	var text string
	switch event {
	case logic.EventOpened:
		door, text = logic.DoorOpen, msgs.Opened
	case logic.EventClosed:
		door, text = logic.DoorClosed, msgs.Closed
	case logic.EventStuck:
		door, text = logic.DoorOpen, msgs.Stuck
	default:
		return nil
	}
	return []Message{
		{Topic: topics.State, Payload: StatePayload(door)},
		{Topic: topics.Status, Payload: text},
	}
}
