package models

import (
	"time"

	"github.com/google/uuid"
)

// ConversationStatus tracks the hire lifecycle of a conversation.
type ConversationStatus string

const (
	ConversationNotHired ConversationStatus = "not-hired"
	ConversationHired    ConversationStatus = "hired"
	ConversationClosed   ConversationStatus = "closed"
)

// Valid reports whether s is a known status value.
func (s ConversationStatus) Valid() bool {
	switch s {
	case ConversationNotHired, ConversationHired, ConversationClosed:
		return true
	}
	return false
}

// Conversation is a durable pairing between one client and one freelancer,
// optionally scoped to a job. LastMessage/LastMessageAt are a denormalized
// cache refreshed on every append so list views never scan the message log.
type Conversation struct {
	ID               uuid.UUID          `db:"id" json:"id"`
	ClientID         uuid.UUID          `db:"client_id" json:"client_id"`
	FreelancerID     uuid.UUID          `db:"freelancer_id" json:"freelancer_id"`
	JobID            *uuid.UUID         `db:"job_id" json:"job_id,omitempty"`
	ProjectTitle     string             `db:"project_title" json:"project_title,omitempty"`
	Status           ConversationStatus `db:"status" json:"status"`
	LastMessage      string             `db:"last_message" json:"last_message"`
	LastMessageAt    *time.Time         `db:"last_message_at" json:"last_message_at,omitempty"`
	ClientUnread     bool               `db:"client_unread" json:"client_unread"`
	FreelancerUnread bool               `db:"freelancer_unread" json:"freelancer_unread"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}

// Member reports whether userID is one of the two conversation parties.
func (c Conversation) Member(userID uuid.UUID) bool {
	return c.ClientID == userID || c.FreelancerID == userID
}

// OtherParty returns the member opposite to userID.
func (c Conversation) OtherParty(userID uuid.UUID) uuid.UUID {
	if c.ClientID == userID {
		return c.FreelancerID
	}
	return c.ClientID
}

// ConversationSummary is the API-friendly list view of a conversation,
// computed relative to the requesting user.
type ConversationSummary struct {
	Conversation
	UnreadCount      int       `json:"unread_count"`
	Unread           bool      `json:"unread"`
	Timestamp        string    `json:"timestamp"`
	OtherParticipant uuid.UUID `json:"other_participant"`
}

// ConversationEvent is broadcast over websockets to conversation members.
type ConversationEvent struct {
	Type         string              `json:"type"`
	Message      *Message            `json:"message,omitempty"`
	Conversation *Conversation       `json:"conversation,omitempty"`
	Status       *ConversationStatus `json:"status,omitempty"`
}
