package search

import (
	"context"
	"encoding/json"

	"incognitor/internal/content"
	"incognitor/internal/observability"
	"incognitor/internal/repository"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Projector consumes index events and applies them to the Index. It reads
// the row back from the database before indexing so the document always
// matches committed state, even when events arrive out of order.
type Projector struct {
	bus      *gochannel.GoChannel
	index    Index
	contents repository.ContentRepository
	users    repository.UserRepository
}

func NewProjector(bus *gochannel.GoChannel, index Index, contents repository.ContentRepository, users repository.UserRepository) *Projector {
	return &Projector{bus: bus, index: index, contents: contents, users: users}
}

// Run subscribes to the index topic and processes events until ctx is
// cancelled. Call it from its own goroutine.
func (p *Projector) Run(ctx context.Context) error {
	messages, err := p.bus.Subscribe(ctx, TopicIndex)
	if err != nil {
		return err
	}

	for msg := range messages {
		var ev Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			observability.LogAsyncOperationError(ctx, "search_project", err, map[string]interface{}{"payload": string(msg.Payload)})
			msg.Ack()
			continue
		}
		p.apply(ctx, ev)
		msg.Ack()
	}
	return nil
}

func (p *Projector) apply(ctx context.Context, ev Event) {
	switch ev.Action {
	case ActionRemove:
		if err := p.index.Remove(ctx, ev.Kind, ev.ID); err != nil {
			observability.SearchIndexEvents.WithLabelValues(string(ev.Kind), "error").Inc()
			observability.LogAsyncOperationError(ctx, "search_remove", err, map[string]interface{}{"kind": ev.Kind, "id": ev.ID})
			return
		}
		observability.SearchIndexEvents.WithLabelValues(string(ev.Kind), "removed").Inc()

	case ActionPut:
		if ev.Kind == KindUser {
			p.putUser(ctx, ev.ID)
			return
		}
		item, err := p.contents.GetAnyByID(ctx, ev.Kind, ev.ID)
		if err != nil {
			observability.SearchIndexEvents.WithLabelValues(string(ev.Kind), "error").Inc()
			observability.LogAsyncOperationError(ctx, "search_load", err, map[string]interface{}{"kind": ev.Kind, "id": ev.ID})
			return
		}
		// A put that raced a delete is converted into a removal.
		if item == nil || item.IsDeleted() {
			if err := p.index.Remove(ctx, ev.Kind, ev.ID); err != nil {
				observability.LogAsyncOperationError(ctx, "search_remove", err, map[string]interface{}{"kind": ev.Kind, "id": ev.ID})
			}
			observability.SearchIndexEvents.WithLabelValues(string(ev.Kind), "removed").Inc()
			return
		}
		if err := p.index.Put(ctx, DocumentFor(ev.Kind, item)); err != nil {
			observability.SearchIndexEvents.WithLabelValues(string(ev.Kind), "error").Inc()
			observability.LogAsyncOperationError(ctx, "search_put", err, map[string]interface{}{"kind": ev.Kind, "id": ev.ID})
			return
		}
		observability.SearchIndexEvents.WithLabelValues(string(ev.Kind), "indexed").Inc()
	}
}

func (p *Projector) putUser(ctx context.Context, id uint) {
	user, err := p.users.GetByID(ctx, id)
	if err != nil {
		observability.SearchIndexEvents.WithLabelValues(string(KindUser), "error").Inc()
		observability.LogAsyncOperationError(ctx, "search_load", err, map[string]interface{}{"kind": KindUser, "id": id})
		return
	}
	if err := p.index.Put(ctx, DocumentForUser(user)); err != nil {
		observability.SearchIndexEvents.WithLabelValues(string(KindUser), "error").Inc()
		observability.LogAsyncOperationError(ctx, "search_put", err, map[string]interface{}{"kind": KindUser, "id": id})
		return
	}
	observability.SearchIndexEvents.WithLabelValues(string(KindUser), "indexed").Inc()
}

// Rebuild reindexes every live item of every kind, plus all users. Used
// at startup so a fresh Redis instance catches up with the database.
func (p *Projector) Rebuild(ctx context.Context) error {
	page := 1
	for {
		users, _, err := p.users.ListPage(ctx, page, 100)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			break
		}
		for i := range users {
			if err := p.index.Put(ctx, DocumentForUser(&users[i])); err != nil {
				observability.LogAsyncOperationError(ctx, "search_rebuild", err, map[string]interface{}{"kind": KindUser, "id": users[i].ID})
			}
		}
		page++
	}

	for _, kind := range content.Kinds() {
		page := 1
		for {
			items, _, err := p.contents.ListPage(ctx, kind, page, 100)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				break
			}
			for _, item := range items {
				if err := p.index.Put(ctx, DocumentFor(kind, item)); err != nil {
					observability.LogAsyncOperationError(ctx, "search_rebuild", err, map[string]interface{}{"kind": kind, "id": item.GetID()})
				}
			}
			page++
		}
	}
	return nil
}
