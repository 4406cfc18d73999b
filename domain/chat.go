package domain

import "time"

// Chat is the one-to-one conversation between an admin and a participant of
// a project. UnreadCount counts messages the admin has not read yet.
type Chat struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"projectId"`
	AdminID       string    `json:"adminId"`
	ParticipantID string    `json:"participantId"`
	IsActive      bool      `json:"isActive"`
	UnreadCount   int       `json:"unreadCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Involves reports whether the caller is one of the two parties.
func (c Chat) Involves(identity Identity) bool {
	switch id := identity.(type) {
	case AdminCaller:
		return id.AdminID == c.AdminID
	case ParticipantCaller:
		return id.ProjectID == c.ProjectID && id.ParticipantID == c.ParticipantID
	default:
		return false
	}
}

func (c Chat) AdminIdentity() AdminCaller {
	return AdminCaller{AdminID: c.AdminID}
}

func (c Chat) ParticipantIdentity() ParticipantCaller {
	return ParticipantCaller{ProjectID: c.ProjectID, ParticipantID: c.ParticipantID}
}

// Counterpart returns the other party of the chat.
func (c Chat) Counterpart(identity Identity) Identity {
	if identity.Role() == RoleAdmin {
		return c.ParticipantIdentity()
	}
	return c.AdminIdentity()
}

// PartyKeys lists the presence keys of both parties.
func (c Chat) PartyKeys() []string {
	return []string{c.AdminIdentity().Key(), c.ParticipantIdentity().Key()}
}

// ChatFilter narrows the admin chat listing.
type ChatFilter struct {
	ProjectID  string
	Active     *bool
	UnreadOnly bool
	Page       Page
}

func (f ChatFilter) Match(c Chat) bool {
	if f.ProjectID != "" && c.ProjectID != f.ProjectID {
		return false
	}
	if f.Active != nil && c.IsActive != *f.Active {
		return false
	}
	if f.UnreadOnly && c.UnreadCount == 0 {
		return false
	}
	return true
}
