package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Attachment describes one file attached to a message
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// AttachmentList is stored as a JSONB array on the messages table
type AttachmentList []Attachment

// Value implements driver.Valuer
func (a AttachmentList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *AttachmentList) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into AttachmentList", src)
	}
}

// Message represents a message exchanged inside a booking conversation
type Message struct {
	ID          string         `json:"id" db:"id"`
	BookingID   string         `json:"booking_id" db:"booking_id"`
	SenderID    string         `json:"sender_id" db:"sender_id"`
	ReceiverID  string         `json:"receiver_id" db:"receiver_id"`
	Body        string         `json:"body" db:"body"`
	Attachments AttachmentList `json:"attachments,omitempty" db:"attachments"`
	IsRead      bool           `json:"is_read" db:"is_read"`
	ReadAt      *time.Time     `json:"read_at,omitempty" db:"read_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// SendMessageRequest represents the request to send a message in a booking conversation
type SendMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=2000"`
}

// Conversation summarizes a booking thread for the conversation list
type Conversation struct {
	BookingID      string    `json:"booking_id" db:"booking_id"`
	BookingNumber  string    `json:"booking_number" db:"booking_number"`
	TourTitle      string    `json:"tour_title" db:"tour_title"`
	OtherPartyID   string    `json:"other_party_id" db:"other_party_id"`
	OtherPartyName string    `json:"other_party_name" db:"other_party_name"`
	LastMessage    string    `json:"last_message" db:"last_message"`
	LastMessageAt  time.Time `json:"last_message_at" db:"last_message_at"`
	UnreadCount    int       `json:"unread_count" db:"unread_count"`
}
