package runtime

import (
	"chat-desk/contract"
	"chat-desk/domain/event"
	"sync"
)

type Set map[string]struct{}

// Registry is the in-memory directory of live connections. It answers two
// questions for the fanout: which connections belong to an identity, and
// which connections joined a chat room.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]contract.Connection // connection id -> connection
	identities  map[string]Set                 // identity key -> connection ids
	owners      map[string]string              // connection id -> identity key
	roomMembers map[string]Set                 // chat id -> connection ids
	connRooms   map[string]Set                 // connection id -> chat ids
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]contract.Connection),
		identities:  make(map[string]Set),
		owners:      make(map[string]string),
		roomMembers: make(map[string]Set),
		connRooms:   make(map[string]Set),
	}
}

// Attach records conn under identityKey and reports whether it is the
// identity's first live connection.
func (r *Registry) Attach(identityKey string, conn contract.Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[conn.ID()] = conn
	r.owners[conn.ID()] = identityKey
	conns, ok := r.identities[identityKey]
	if !ok {
		conns = make(Set)
		r.identities[identityKey] = conns
	}
	conns[conn.ID()] = struct{}{}
	return len(conns) == 1
}

// Detach forgets the connection, including its room memberships, and
// reports whether the identity has no live connection left. Detaching an
// unknown connection reports false.
func (r *Registry) Detach(identityKey string, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[connID]; !ok {
		return false
	}
	delete(r.connections, connID)
	delete(r.owners, connID)

	for chatID := range r.connRooms[connID] {
		r.leaveLocked(chatID, connID)
	}
	delete(r.connRooms, connID)

	conns, ok := r.identities[identityKey]
	if !ok {
		return false
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.identities, identityKey)
		return true
	}
	return false
}

// Join subscribes a live connection to a chat room. It reports false when
// the connection is unknown.
func (r *Registry) Join(chatID string, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connections[connID]; !ok {
		return false
	}
	if _, ok := r.roomMembers[chatID]; !ok {
		r.roomMembers[chatID] = make(Set)
	}
	r.roomMembers[chatID][connID] = struct{}{}
	if _, ok := r.connRooms[connID]; !ok {
		r.connRooms[connID] = make(Set)
	}
	r.connRooms[connID][chatID] = struct{}{}
	return true
}

func (r *Registry) Leave(chatID string, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(chatID, connID)
	if rooms, ok := r.connRooms[connID]; ok {
		delete(rooms, chatID)
		if len(rooms) == 0 {
			delete(r.connRooms, connID)
		}
	}
}

// leaveLocked removes the membership and drops empty rooms so the map does
// not grow with every chat ever opened.
func (r *Registry) leaveLocked(chatID string, connID string) {
	if members, ok := r.roomMembers[chatID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.roomMembers, chatID)
		}
	}
}

func (r *Registry) RoomsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.connRooms[connID]))
	for chatID := range r.connRooms[connID] {
		rooms = append(rooms, chatID)
	}
	return rooms
}

// SinksFor resolves an audience into connections: the chat room's
// subscribers plus every connection of the listed identities. Each
// connection appears once.
func (r *Registry) SinksFor(audience event.Audience) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(Set)
	var sinks []contract.EventSink
	add := func(connID string) {
		if _, dup := seen[connID]; dup {
			return
		}
		if conn, ok := r.connections[connID]; ok {
			seen[connID] = struct{}{}
			sinks = append(sinks, conn)
		}
	}

	if audience.ChatID != "" {
		for connID := range r.roomMembers[audience.ChatID] {
			add(connID)
		}
	}
	for _, key := range audience.Identities {
		for connID := range r.identities[key] {
			add(connID)
		}
	}
	return sinks
}

func (r *Registry) IsConnected(identityKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.identities[identityKey]) > 0
}

// Stats returns the number of live connections, connected identities and
// non-empty rooms.
func (r *Registry) Stats() (connections, identities, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections), len(r.identities), len(r.roomMembers)
}

// CloseAll closes every live connection and returns how many were closed.
// Connections are closed outside the lock: their cleanup detaches them.
func (r *Registry) CloseAll(reason string) int {
	r.mu.RLock()
	conns := make([]contract.Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		conn.Close(reason)
	}
	return len(conns)
}

// CloseIdentity closes every live connection of one identity and returns
// how many were closed.
func (r *Registry) CloseIdentity(identityKey string, reason string) int {
	r.mu.RLock()
	conns := make([]contract.Connection, 0, len(r.identities[identityKey]))
	for connID := range r.identities[identityKey] {
		if conn, ok := r.connections[connID]; ok {
			conns = append(conns, conn)
		}
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		conn.Close(reason)
	}
	return len(conns)
}
