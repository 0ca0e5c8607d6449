// Package deadletter is the dead-letter bus a cell republishes an
// undeliverable user message to (component K, SPEC_FULL.md). It is
// grounded on webitel-im-delivery-service's pubsub adapter
// (internal/adapter/pubsub/{publisher,dispatcher}.go): a watermill
// message.Publisher wrapped by a small domain-shaped façade, with the
// broker swapped for watermill's in-process gochannel implementation
// since this module has no external message broker of its own (§1).
package deadletter

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"go.ambercrest.dev/cellsupervise/actor"
	"go.ambercrest.dev/cellsupervise/internal/log"
)

// Bus is the concrete actor.DeadLetterPublisher backend: an in-process
// watermill pub/sub carrying DeadLetter events, with Subscribe exposed so
// tests and demos can observe what the runtime could not deliver.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// New constructs a Bus backed by watermill's gochannel transport, the same
// message.Publisher/message.Subscriber contract the teacher's pubsub
// adapter wraps around a real broker.
func New() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
	}
}

// Publish marshals msg and publishes it on topic, logging (never
// returning) any publish failure: dead-lettering is itself a best-effort
// side channel and must not be allowed to fail the caller's own send path.
func (b *Bus) Publish(topic string, msg actor.DeadLetter) {
	payload, err := json.Marshal(wireDeadLetter{
		Msg:       msg.Msg,
		Recipient: msg.Recipient.Path(),
		Sender:    senderPath(msg.Sender),
	})
	if err != nil {
		log.Printf("dead letter bus: marshal failure: %v", err)
		return
	}

	wm := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(topic, wm); err != nil {
		log.Printf("dead letter bus: publish to %q failed: %v", topic, err)
	}
}

// Subscribe returns the channel of raw watermill messages published on
// topic, so an operator or test can observe dead letters as they occur.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close releases the underlying gochannel resources.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

func senderPath(sender *actor.BasicRef) string {
	if sender == nil || !sender.IsValid() {
		return ""
	}
	return sender.Path()
}

// wireDeadLetter is the JSON shape published on the dead-letter topic.
type wireDeadLetter struct {
	Msg       string `json:"msg"`
	Recipient string `json:"recipient"`
	Sender    string `json:"sender,omitempty"`
}
