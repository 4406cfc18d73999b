package runtime

import (
	"chat-desk/contract"
	"chat-desk/domain"
	"chat-desk/domain/event"
	"chat-desk/errors"
	"chat-desk/repositories"
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/samber/lo"
)

// PresenceTracker turns connection counts into online/offline transitions.
// An identity goes online with its first connection and offline with its
// last one; transitions of one identity are serialised so observers never
// see them out of order.
type PresenceTracker struct {
	log       *slog.Logger
	registry  contract.IRegistry
	publisher contract.Publisher
	admins    repositories.IAdminRepository
	chats     repositories.IChatRepository
	locks     *KeyedMutex
	now       func() time.Time

	mu       sync.RWMutex
	lastSeen map[string]time.Time // participant key -> last disconnect
}

func NewPresenceTracker(log *slog.Logger, registry contract.IRegistry, publisher contract.Publisher,
	admins repositories.IAdminRepository, chats repositories.IChatRepository) *PresenceTracker {
	return &PresenceTracker{
		log:       log,
		registry:  registry,
		publisher: publisher,
		admins:    admins,
		chats:     chats,
		locks:     NewKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
		lastSeen:  make(map[string]time.Time),
	}
}

// OnConnect tracks conn for identity. The first connection of an identity
// persists the admin's online flag and notifies its chat peers.
func (p *PresenceTracker) OnConnect(ctx context.Context, identity domain.Identity, conn contract.Connection) {
	key := identity.Key()
	unlock := p.locks.Lock(key)
	defer unlock()

	if !p.registry.Attach(key, conn) {
		return
	}
	if admin, ok := identity.(domain.AdminCaller); ok {
		if err := p.admins.SetPresence(ctx, admin.AdminID, true, p.now()); err != nil {
			errors.Log(p.log, err, "Unable to persist admin presence", "admin_id", admin.AdminID)
		}
	}
	p.broadcast(ctx, identity, true, nil)
}

// OnDisconnect forgets the connection. When it was the identity's last one
// the identity goes offline and its last seen time is recorded.
func (p *PresenceTracker) OnDisconnect(ctx context.Context, identity domain.Identity, connID string) {
	// The connection's own context is usually gone by now
	ctx = context.WithoutCancel(ctx)
	key := identity.Key()
	unlock := p.locks.Lock(key)
	defer unlock()

	if !p.registry.Detach(key, connID) {
		return
	}
	at := p.now()
	switch id := identity.(type) {
	case domain.AdminCaller:
		if err := p.admins.SetPresence(ctx, id.AdminID, false, at); err != nil {
			errors.Log(p.log, err, "Unable to persist admin presence", "admin_id", id.AdminID)
		}
	case domain.ParticipantCaller:
		p.mu.Lock()
		p.lastSeen[key] = at
		p.mu.Unlock()
	}
	p.broadcast(ctx, identity, false, &at)
}

// Status reports whether identity has a live connection and when it was
// last seen otherwise.
func (p *PresenceTracker) Status(ctx context.Context, identity domain.Identity) (domain.PresenceStatus, error) {
	key := identity.Key()
	status := domain.PresenceStatus{Identity: key, Online: p.registry.IsConnected(key)}
	if status.Online {
		return status, nil
	}

	switch id := identity.(type) {
	case domain.AdminCaller:
		admin, err := p.admins.GetAdmin(ctx, id.AdminID)
		if err != nil {
			return domain.PresenceStatus{}, err
		}
		status.LastSeen = admin.LastSeen
	case domain.ParticipantCaller:
		p.mu.RLock()
		if at, ok := p.lastSeen[key]; ok {
			status.LastSeen = lo.ToPtr(at)
		}
		p.mu.RUnlock()
	}
	return status, nil
}

// SetTyping tells the counterpart of chat that identity started or stopped
// typing. Start signals are dropped under pressure; the stop signal waits for
// room in the queue so no one stays "typing" forever.
func (p *PresenceTracker) SetTyping(ctx context.Context, chat domain.Chat, identity domain.Identity, isTyping bool) error {
	evt := event.TypingChanged{
		ChatID:   chat.ID,
		Identity: identity.Key(),
		IsTyping: isTyping,
		Target:   chat.Counterpart(identity).Key(),
	}
	if isTyping {
		p.publisher.TryPublish(evt)
		return nil
	}
	return p.publisher.Publish(ctx, evt)
}

// Shutdown closes every tracked connection. Their cleanup runs the offline
// transitions.
func (p *PresenceTracker) Shutdown(reason string) int {
	closed := p.registry.CloseAll(reason)
	p.log.Info("Closed live connections", "count", closed)
	return closed
}

// Disconnect closes the live connections of one identity, for instance a
// participant that was just deleted. The offline transition follows from
// their cleanup.
func (p *PresenceTracker) Disconnect(identity domain.Identity, reason string) int {
	closed := p.registry.CloseIdentity(identity.Key(), reason)
	if closed > 0 {
		p.log.Info("Closed identity connections", "identity", identity.Key(), "count", closed)
	}
	return closed
}

func (p *PresenceTracker) broadcast(ctx context.Context, identity domain.Identity, online bool, lastSeen *time.Time) {
	peers, err := p.peers(ctx, identity)
	if err != nil {
		errors.Log(p.log, err, "Unable to resolve presence peers", "identity", identity.Key())
		return
	}
	if len(peers) == 0 {
		return
	}
	evt := event.PresenceChanged{
		Identity: identity.Key(),
		Role:     identity.Role(),
		ID:       identity.SenderID(),
		Online:   online,
		LastSeen: lastSeen,
		Peers:    peers,
	}
	if err = p.publisher.Publish(ctx, evt); err != nil {
		p.log.Warn("Presence change not published", "identity", identity.Key(), "error", err)
	}
}

// peers are the counterparts the identity shares a chat with.
func (p *PresenceTracker) peers(ctx context.Context, identity domain.Identity) ([]string, error) {
	var (
		chats []domain.Chat
		err   error
	)
	switch id := identity.(type) {
	case domain.AdminCaller:
		chats, err = p.chats.ListChatsForAdmin(ctx, id.AdminID,
			domain.ChatFilter{Page: domain.Page{Limit: math.MaxInt32}})
	case domain.ParticipantCaller:
		chats, err = p.chats.ListChatsForParticipant(ctx, id.ProjectID, id.ParticipantID)
	}
	if err != nil {
		return nil, err
	}
	return lo.Uniq(lo.Map(chats, func(c domain.Chat, _ int) string {
		return c.Counterpart(identity).Key()
	})), nil
}
