// Package domain contains core concepts of the chat system.
// This file defines the two caller kinds and the identity keys used by
// presence tracking. No runtime, network, or UI logic should be added here.
package domain

import "fmt"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
)

// Identity is either an AdminCaller or a ParticipantCaller. The interface is
// sealed: authorization code switches over the two variants.
type Identity interface {
	// Key identifies the caller in presence and connection tables.
	Key() string
	Role() Role
	// SenderID is the id stored on messages sent by this caller.
	SenderID() string
	isIdentity()
}

// AdminCaller is an authenticated admin, proven by a verified token.
type AdminCaller struct {
	AdminID string `json:"adminId"`
}

// ParticipantCaller is a mobile identity proven only by knowledge of the
// (project, participant uid) pair.
type ParticipantCaller struct {
	ProjectID      string `json:"projectId"`
	ParticipantID  string `json:"participantId"`
	ParticipantUID string `json:"participantUid"`
}

func (a AdminCaller) Key() string      { return AdminKey(a.AdminID) }
func (a AdminCaller) Role() Role       { return RoleAdmin }
func (a AdminCaller) SenderID() string { return a.AdminID }
func (AdminCaller) isIdentity()        {}

func (p ParticipantCaller) Key() string      { return ParticipantKey(p.ProjectID, p.ParticipantID) }
func (p ParticipantCaller) Role() Role       { return RoleParticipant }
func (p ParticipantCaller) SenderID() string { return p.ParticipantID }
func (ParticipantCaller) isIdentity()        {}

func AdminKey(adminID string) string {
	return fmt.Sprintf("admin:%s", adminID)
}

func ParticipantKey(projectID, participantID string) string {
	return fmt.Sprintf("participant:%s:%s", projectID, participantID)
}
