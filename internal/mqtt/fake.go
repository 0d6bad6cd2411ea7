package mqtt

import "context"

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Messages contains every message that was published.
	Messages []Message

	// Connects counts calls to Connect.
	Connects int

	// KeepAlives counts calls to KeepAlive.
	KeepAlives int

	// ConnectError, if set, will be returned by Connect.
	ConnectError error

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected reports the current fake connection state.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Connect marks the publisher connected unless ConnectError is set.
func (f *FakePublisher) Connect(ctx context.Context) error {
	f.Connects++
	if f.ConnectError != nil {
		return f.ConnectError
	}
	f.Connected = true
	return nil
}

// Publish records the message.
func (f *FakePublisher) Publish(topic, payload string) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	if !f.Connected {
		return ErrNotConnected
	}
	f.Messages = append(f.Messages, Message{Topic: topic, Payload: payload})
	return nil
}

// KeepAlive counts the call.
func (f *FakePublisher) KeepAlive() {
	f.KeepAlives++
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Close marks the publisher as closed and disconnected.
func (f *FakePublisher) Close() error {
	f.Closed = true
	f.Connected = false
	return nil
}

// OnTopic returns the payloads published to topic, in order.
func (f *FakePublisher) OnTopic(topic string) []string {
	var out []string
	for _, m := range f.Messages {
		if m.Topic == topic {
			out = append(out, m.Payload)
		}
	}
	return out
}

// Reset clears recorded messages and injected errors.
func (f *FakePublisher) Reset() {
	f.Messages = nil
	f.Connects = 0
	f.KeepAlives = 0
	f.ConnectError = nil
	f.PublishError = nil
	f.Closed = false
	f.Connected = false
}
