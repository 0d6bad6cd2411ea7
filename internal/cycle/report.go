package cycle

import (
	"context"
	"log"

	"github.com/sweeney/mailbox-sensor/internal/logic"
	"github.com/sweeney/mailbox-sensor/internal/mqtt"
)

// reporter publishes best-effort. It connects lazily on the first event and
// tries at most once per cycle; a later background reconnect is still used.
type reporter struct {
	ctx       context.Context
	publisher mqtt.Publisher
	topics    mqtt.Topics
	messages  mqtt.Messages
	tried     bool
}

func newReporter(ctx context.Context, p mqtt.Publisher, topics mqtt.Topics, msgs mqtt.Messages) *reporter {
	return &reporter{ctx: ctx, publisher: p, topics: topics, messages: msgs}
}

func (r *reporter) connected() bool {
	if r.publisher.IsConnected() {
		return true
	}
	if r.tried {
		return false
	}
	r.tried = true
	if err := r.publisher.Connect(r.ctx); err != nil {
		log.Printf("mqtt connect: %v", err)
		return false
	}
	return true
}

func (r *reporter) announce(events []logic.EventType) {
	for _, ev := range events {
		log.Printf("event: %s", ev)
		if !r.connected() {
			log.Printf("event %s dropped: not connected", ev)
			continue
		}
		for _, m := range mqtt.EventMessages(ev, r.topics, r.messages) {
			r.publish(m.Topic, m.Payload)
		}
	}
}

func (r *reporter) publish(topic, payload string) {
	if err := r.publisher.Publish(topic, payload); err != nil {
		log.Printf("publish error: %v", err)
	}
}

func (r *reporter) close() {
	if err := r.publisher.Close(); err != nil {
		log.Printf("mqtt close: %v", err)
	}
}
