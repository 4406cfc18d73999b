//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-desk/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Connection is a live transport handle tracked by the registry.
type Connection interface {
	EventSink
	ID() string
	// Close terminates the transport. It is safe to call more than once.
	Close(reason string)
}

type IRegistry interface {
	Attach(identityKey string, conn Connection) bool
	Detach(identityKey string, connID string) bool
	Join(chatID string, connID string) bool
	Leave(chatID string, connID string)
	RoomsOf(connID string) []string
	SinksFor(audience event.Audience) []EventSink
	IsConnected(identityKey string) bool
	CloseAll(reason string) int
	CloseIdentity(identityKey string, reason string) int
}

// Publisher hands events to the fanout.
type Publisher interface {
	// Publish blocks until the event is queued or ctx ends.
	Publish(ctx context.Context, e event.DomainEvent) error
	// TryPublish drops the event when the queue is full.
	TryPublish(e event.DomainEvent) bool
}
