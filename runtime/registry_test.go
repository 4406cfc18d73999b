package runtime

import (
	"chat-desk/domain/event"
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id      string
	mu      sync.Mutex
	events  []event.DomainEvent
	closed  []string
	onClose func()
}

func newFakeConn() *fakeConn {
	return &fakeConn{id: uuid.NewString()}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Consume(_ context.Context, e event.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *fakeConn) Close(reason string) {
	c.mu.Lock()
	c.closed = append(c.closed, reason)
	onClose := c.onClose
	c.mu.Unlock()
	if onClose != nil {
		onClose()
	}
}

func (c *fakeConn) received() []event.DomainEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.DomainEvent(nil), c.events...)
}

func TestRegistry_Attach_Reports_First_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first, second := newFakeConn(), newFakeConn()

	// Given no connection exists
	req.False(registry.IsConnected("admin:1"))

	// When the identity connects twice
	req.True(registry.Attach("admin:1", first))
	req.False(registry.Attach("admin:1", second))

	// Then the identity is connected through both
	req.True(registry.IsConnected("admin:1"))
	connections, identities, rooms := registry.Stats()
	req.Equal(2, connections)
	req.Equal(1, identities)
	req.Zero(rooms)
}

func TestRegistry_Detach_Reports_Last_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first, second := newFakeConn(), newFakeConn()
	registry.Attach("admin:1", first)
	registry.Attach("admin:1", second)

	req.False(registry.Detach("admin:1", first.ID()))
	req.True(registry.IsConnected("admin:1"))

	req.True(registry.Detach("admin:1", second.ID()))
	req.False(registry.IsConnected("admin:1"))

	// Detaching twice is a no-op
	req.False(registry.Detach("admin:1", second.ID()))
}

func TestRegistry_Join_And_Leave_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newFakeConn()

	// Unknown connections cannot join
	req.False(registry.Join("chat-1", conn.ID()))

	registry.Attach("admin:1", conn)
	req.True(registry.Join("chat-1", conn.ID()))
	req.True(registry.Join("chat-2", conn.ID()))
	req.ElementsMatch([]string{"chat-1", "chat-2"}, registry.RoomsOf(conn.ID()))

	registry.Leave("chat-1", conn.ID())
	req.Equal([]string{"chat-2"}, registry.RoomsOf(conn.ID()))
	req.Empty(registry.SinksFor(event.Audience{ChatID: "chat-1"}))
	req.Len(registry.SinksFor(event.Audience{ChatID: "chat-2"}), 1)
}

func TestRegistry_Detach_Leaves_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newFakeConn()
	registry.Attach("participant:p:1", conn)
	registry.Join("chat-1", conn.ID())

	registry.Detach("participant:p:1", conn.ID())

	req.Empty(registry.RoomsOf(conn.ID()))
	req.Empty(registry.SinksFor(event.Audience{ChatID: "chat-1"}))
	_, _, rooms := registry.Stats()
	req.Zero(rooms)
}

func TestRegistry_SinksFor_Deduplicates(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	admin, participant, other := newFakeConn(), newFakeConn(), newFakeConn()
	registry.Attach("admin:1", admin)
	registry.Attach("participant:p:1", participant)
	registry.Attach("participant:p:2", other)
	registry.Join("chat-1", admin.ID())
	registry.Join("chat-1", participant.ID())

	// Given the admin is both in the room and targeted by identity
	sinks := registry.SinksFor(event.Audience{ChatID: "chat-1", Identities: []string{"admin:1", "participant:p:2"}})

	// Then every connection is listed once
	req.Len(sinks, 3)
	req.ElementsMatch([]any{admin, participant, other}, toAny(sinks))
}

func TestRegistry_CloseAll(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first, second := newFakeConn(), newFakeConn()
	registry.Attach("admin:1", first)
	registry.Attach("participant:p:1", second)
	// Closing detaches the connection, as the gateway cleanup does
	first.onClose = func() { registry.Detach("admin:1", first.ID()) }
	second.onClose = func() { registry.Detach("participant:p:1", second.ID()) }

	req.Equal(2, registry.CloseAll("shutdown"))

	req.Equal([]string{"shutdown"}, first.closed)
	req.Equal([]string{"shutdown"}, second.closed)
	connections, _, _ := registry.Stats()
	req.Zero(connections)
}

func TestRegistry_CloseIdentity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first, second, bystander := newFakeConn(), newFakeConn(), newFakeConn()
	registry.Attach("participant:p:1", first)
	registry.Attach("participant:p:1", second)
	registry.Attach("participant:p:2", bystander)
	first.onClose = func() { registry.Detach("participant:p:1", first.ID()) }
	second.onClose = func() { registry.Detach("participant:p:1", second.ID()) }

	req.Equal(2, registry.CloseIdentity("participant:p:1", "participant deleted"))

	req.Equal([]string{"participant deleted"}, first.closed)
	req.Equal([]string{"participant deleted"}, second.closed)
	req.Empty(bystander.closed)
	req.False(registry.IsConnected("participant:p:1"))
	req.True(registry.IsConnected("participant:p:2"))
	req.Zero(registry.CloseIdentity("participant:p:unknown", "participant deleted"))
}

func toAny[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
