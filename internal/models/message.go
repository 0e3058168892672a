package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType classifies a message. System messages are generated by the
// service itself to record lifecycle events in the log.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

// MessageStatus advances forward only. Delivered is reserved: no operation
// currently produces it.
type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

// FileData describes an attached file payload.
type FileData struct {
	Name string `json:"name"`
	Size string `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// NullFileData is an optional FileData stored as JSONB.
type NullFileData struct {
	FileData *FileData
}

// Value implements driver.Valuer.
func (n NullFileData) Value() (driver.Value, error) {
	if n.FileData == nil {
		return nil, nil
	}
	return json.Marshal(n.FileData)
}

// Scan implements sql.Scanner.
func (n *NullFileData) Scan(src interface{}) error {
	if src == nil {
		n.FileData = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected file_data type %T", src)
	}
	fd := &FileData{}
	if err := json.Unmarshal(raw, fd); err != nil {
		return err
	}
	n.FileData = fd
	return nil
}

// MarshalJSON renders the wrapped payload, or null when absent.
func (n NullFileData) MarshalJSON() ([]byte, error) {
	if n.FileData == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.FileData)
}

// UnmarshalJSON accepts either null or a FileData object.
func (n *NullFileData) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.FileData = nil
		return nil
	}
	fd := &FileData{}
	if err := json.Unmarshal(data, fd); err != nil {
		return err
	}
	n.FileData = fd
	return nil
}

// Message is one append-only entry in a conversation's log. RecipientID is
// always derived as the conversation member opposite the sender.
type Message struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	ConversationID uuid.UUID     `db:"conversation_id" json:"conversation_id"`
	SenderID       uuid.UUID     `db:"sender_id" json:"sender_id"`
	RecipientID    uuid.UUID     `db:"recipient_id" json:"recipient_id"`
	Content        string        `db:"content" json:"content"`
	Type           MessageType   `db:"type" json:"type"`
	Status         MessageStatus `db:"status" json:"status"`
	ReadAt         *time.Time    `db:"read_at" json:"read_at,omitempty"`
	FileData       NullFileData  `db:"file_data" json:"file_data"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}
