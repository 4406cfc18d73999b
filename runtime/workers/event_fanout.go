package workers

import (
	"chat-desk/contract"
	"chat-desk/domain/event"
	"context"
	"log/slog"
	"time"
)

// EventFanout is the single consumer of the event queue. It resolves every
// event's audience through the registry and hands it to each connection in
// turn, so two events queued in order reach a connection in that order.
//
// A connection that cannot take the event within sinkTimeout is skipped;
// delivery failures are logged and never reach the publisher.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	events      <-chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	events <-chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, registry: registry, events: events, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event queue closed, stopping fanout")
				return nil
			}
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		}
	}
}

// Fanout delivers one event to every connection of its audience.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := w.registry.SinksFor(evt.Audience())
	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Debug("Event not delivered", "event", evt.Name(), "error", err)
		}
		cancel()
	}
}
