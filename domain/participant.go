// Package domain contains core concepts of the chat system.
// This file defines Admin, Project and Participant entities.
package domain

import "time"

// Admin is the operator on one side of every chat.
type Admin struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsOnline     bool       `json:"isOnline"`
	LastSeen     *time.Time `json:"lastSeen,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Project scopes participants and chats. UniqueID is the public handle given
// to mobile applications.
type Project struct {
	ID        string    `json:"id"`
	UniqueID  string    `json:"uniqueId"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Participant is a mobile identity. ParticipantUID is supplied by the
// project's own backend and is unique within the project.
type Participant struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	ParticipantUID string    `json:"participantUid"`
	DisplayName    string    `json:"displayName"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (p Participant) Identity() ParticipantCaller {
	return ParticipantCaller{ProjectID: p.ProjectID, ParticipantID: p.ID, ParticipantUID: p.ParticipantUID}
}

// Profile holds the optional descriptive fields of a participant.
type Profile struct {
	DisplayName string `json:"displayName" validate:"max=120"`
}

// Page is an offset based window over a listing.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

func (p Page) Normalize(defaultLimit, maxLimit int) Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Window applies the page to n items and returns the [start, end) bounds.
func (p Page) Window(n int) (int, int) {
	start := min(p.Offset, n)
	end := min(start+p.Limit, n)
	return start, end
}

// PresenceStatus is what get-online-status returns.
type PresenceStatus struct {
	Identity string     `json:"identity"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}
