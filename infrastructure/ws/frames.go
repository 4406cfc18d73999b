package ws

import (
	"chat-desk/domain"
	"encoding/json"
)

// Client to server events.
const (
	EventJoinChat    = "joinChat"
	EventLeaveChat   = "leaveChat"
	EventSendMessage = "sendMessage"
	EventMarkAsRead  = "markAsRead"
	EventTyping      = "typing"
)

// Server replies. Pushed domain events use their own names.
const (
	EventConnected = "connected"
	EventAck       = "ack"
	EventError     = "error"
)

// CloseAuthenticationFailed is sent when the handshake credentials are
// rejected.
const CloseAuthenticationFailed = 4401

// InboundFrame is one client event. Data is decoded according to Event.
type InboundFrame struct {
	Event     string          `json:"event" validate:"required"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type OutboundFrame struct {
	Event     string `json:"event"`
	RequestID string `json:"requestId,omitempty"`
	Data      any    `json:"data,omitempty"`
}

type ChatRef struct {
	ChatID string `json:"chatId" validate:"required"`
}

type SendMessageData struct {
	ChatID   string         `json:"chatId" validate:"required"`
	Content  string         `json:"content"`
	Type     string         `json:"type,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type TypingData struct {
	ChatID   string `json:"chatId" validate:"required"`
	IsTyping bool   `json:"isTyping"`
}

type ConnectedData struct {
	ConnectionID string      `json:"connectionId"`
	Identity     string      `json:"identity"`
	Role         domain.Role `json:"role"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type LeftData struct {
	ChatID string `json:"chatId"`
}
