package event

import (
	"chat-desk/domain"
	"time"
)

const (
	MessageReceivedName = "messageReceived"
	ChatUpdatedName     = "chatUpdated"
	PresenceChangedName = "presenceChanged"
	TypingChangedName   = "typingChanged"
)

type ChatUpdateReason string

const (
	ReasonCreated     ChatUpdateReason = "created"
	ReasonMessage     ChatUpdateReason = "message"
	ReasonRead        ChatUpdateReason = "read"
	ReasonDeactivated ChatUpdateReason = "deactivated"
	ReasonReactivated ChatUpdateReason = "reactivated"
)

// DomainEvent is what the fanout delivers to live connections.
type DomainEvent interface {
	Name() string
	Audience() Audience
}

// Audience selects connections: every subscriber of ChatID's room plus every
// connection of the listed identities. A connection matching both receives
// the event once.
type Audience struct {
	ChatID     string
	Identities []string
}

type MessageReceived struct {
	Message domain.Message `json:"message"`
}

func (m MessageReceived) Name() string { return MessageReceivedName }

func (m MessageReceived) Audience() Audience {
	return Audience{ChatID: m.Message.ChatID}
}

type ChatUpdated struct {
	Chat      domain.Chat      `json:"chat"`
	Reason    ChatUpdateReason `json:"reason"`
	ReadBy    domain.Role      `json:"readBy,omitempty"`
	ReadCount int              `json:"readCount,omitempty"`
	At        time.Time        `json:"at"`
}

func (c ChatUpdated) Name() string { return ChatUpdatedName }

// Audience reaches both parties even when they have not joined the room, so
// dashboards can refresh unread counters.
func (c ChatUpdated) Audience() Audience {
	return Audience{ChatID: c.Chat.ID, Identities: c.Chat.PartyKeys()}
}

type PresenceChanged struct {
	Identity string      `json:"identity"`
	Role     domain.Role `json:"role"`
	ID       string      `json:"id"`
	Online   bool        `json:"online"`
	LastSeen *time.Time  `json:"lastSeen,omitempty"`
	Peers    []string    `json:"-"`
}

func (p PresenceChanged) Name() string { return PresenceChangedName }

func (p PresenceChanged) Audience() Audience {
	return Audience{Identities: p.Peers}
}

type TypingChanged struct {
	ChatID   string `json:"chatId"`
	Identity string `json:"identity"`
	IsTyping bool   `json:"isTyping"`
	Target   string `json:"-"`
}

func (t TypingChanged) Name() string { return TypingChangedName }

func (t TypingChanged) Audience() Audience {
	return Audience{Identities: []string{t.Target}}
}
