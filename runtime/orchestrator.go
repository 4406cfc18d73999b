// Package runtime handles live connections, presence and event propagation.
// It orchestrates delivery without containing business rules.
package runtime

import (
	"chat-desk/contract"
	"chat-desk/domain/event"
	"chat-desk/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Orchestrator owns the event queue and the supervised workers draining it.
// Services publish through it; the fanout worker delivers to connections.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       *Registry
	events         chan event.DomainEvent
	sinkTimeout    time.Duration
	publishTimeout time.Duration
	statsInterval  time.Duration
	started        bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry,
	bufferSize int, sinkTimeout, publishTimeout, statsInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:            log,
		supervisor:     supervisor,
		registry:       registry,
		events:         make(chan event.DomainEvent, bufferSize),
		sinkTimeout:    sinkTimeout,
		publishTimeout: publishTimeout,
		statsInterval:  statsInterval,
	}
}

// Publish blocks until the event is queued. It gives up after the publish
// timeout or when ctx ends.
func (o *Orchestrator) Publish(ctx context.Context, e event.DomainEvent) error {
	select {
	case o.events <- e:
		return nil
	default:
	}

	timer := time.NewTimer(o.publishTimeout)
	defer timer.Stop()
	select {
	case o.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		o.log.Warn("Event queue full, dropping event", "event", e.Name())
		return fmt.Errorf("event queue full, %s dropped", e.Name())
	}
}

// TryPublish queues e only if there is room right now.
func (o *Orchestrator) TryPublish(e event.DomainEvent) bool {
	select {
	case o.events <- e:
		return true
	default:
		o.log.Debug("Event queue full, dropping event", "event", e.Name())
		return false
	}
}

// QueueDepth is the number of events waiting for the fanout.
func (o *Orchestrator) QueueDepth() int {
	return len(o.events)
}

// Start registers the fanout and the stats reporter and runs the supervisor.
// It blocks until the supervisor stops.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		o.log.Warn("Orchestrator already started")
		return
	}
	o.started = true
	o.supervisor.Add(workers.NewEventFanout(o.log, o.registry, o.events, o.sinkTimeout))
	if o.statsInterval > 0 {
		o.supervisor.Add(workers.NewStatsReporter(o.log, o.registry, o.QueueDepth, o.statsInterval))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
}

// Stop cancels the supervised workers. Events still queued are dropped.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
