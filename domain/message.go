// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once persisted except for the read receipt.
package domain

import (
	"strings"
	"time"
)

type MessageType string

const (
	MessageText   MessageType = "TEXT"
	MessageEmoji  MessageType = "EMOJI"
	MessageFile   MessageType = "FILE"
	MessageImage  MessageType = "IMAGE"
	MessageSystem MessageType = "SYSTEM"
)

// ParseMessageType accepts the declared type case-insensitively. An empty
// string means "infer from content".
func ParseMessageType(s string) (MessageType, bool) {
	switch t := MessageType(strings.ToUpper(strings.TrimSpace(s))); t {
	case "", MessageText, MessageEmoji, MessageFile, MessageImage, MessageSystem:
		return t, true
	default:
		return "", false
	}
}

// Message is a persisted chat entry. Seq is the persistence order inside
// the whole store and is the delivery order authority.
type Message struct {
	ID         string         `json:"id"`
	ChatID     string         `json:"chatId"`
	SenderID   string         `json:"senderId"`
	SenderRole Role           `json:"senderRole"`
	Content    string         `json:"content"`
	Type       MessageType    `json:"type"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Read       bool           `json:"read"`
	ReadAt     *time.Time     `json:"readAt,omitempty"`
	Seq        uint64         `json:"seq"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// MarkRead flips the receipt. ReadAt is set if and only if Read is true.
func (m *Message) MarkRead(at time.Time) {
	if m.Read {
		return
	}
	at = at.UTC()
	m.Read = true
	m.ReadAt = &at
}
