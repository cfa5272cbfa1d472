package search

import (
	"context"
	"encoding/json"

	"incognitor/internal/content"
	"incognitor/internal/observability"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// TopicIndex carries index mutation events from write paths to the projector.
const TopicIndex = "search.index"

const (
	ActionPut    = "put"
	ActionRemove = "remove"
)

// Event describes a single index mutation. The payload carries only the
// identity; the projector re-reads the row so the indexed document always
// reflects the committed state.
type Event struct {
	Action string       `json:"action"`
	Kind   content.Kind `json:"kind"`
	ID     uint         `json:"id"`
}

// Publisher pushes index events onto the in-process event bus.
type Publisher struct {
	bus *gochannel.GoChannel
}

// NewBus creates the shared in-process event bus.
func NewBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NopLogger{},
	)
}

func NewPublisher(bus *gochannel.GoChannel) *Publisher {
	return &Publisher{bus: bus}
}

// Publish is best-effort: a failed publish leaves the index stale but
// never fails the write that triggered it.
func (p *Publisher) Publish(ev Event) {
	if p == nil || p.bus == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		observability.LogAsyncOperationError(context.Background(), "search_publish", err, map[string]interface{}{"kind": ev.Kind})
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := p.bus.Publish(TopicIndex, msg); err != nil {
		observability.LogAsyncOperationError(context.Background(), "search_publish", err, map[string]interface{}{"kind": ev.Kind})
	}
}
