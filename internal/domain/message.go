package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message validation errors
var (
	ErrMessageBodyEmpty   = fmt.Errorf("%w: message body cannot be empty", ErrValidation)
	ErrMessageBodyTooLong = fmt.Errorf("%w: message body must be at most 2000 characters", ErrValidation)
	ErrMessageSelf        = fmt.Errorf("%w: cannot message yourself", ErrValidation)
	ErrMessageUserIDEmpty = fmt.Errorf("%w: message user ID cannot be empty", ErrValidation)
)

// MaxMessageLength bounds Message.Body.
const MaxMessageLength = 2000

// Message is a direct message between two friends.
type Message struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Body        string     `json:"body"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewMessage creates a validated message.
func NewMessage(senderID, recipientID uuid.UUID, body string) (*Message, error) {
	m := &Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        strings.TrimSpace(body),
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks if the Message has valid data.
func (m *Message) Validate() error {
	if m.SenderID == uuid.Nil || m.RecipientID == uuid.Nil {
		return ErrMessageUserIDEmpty
	}
	if m.SenderID == m.RecipientID {
		return ErrMessageSelf
	}
	if m.Body == "" {
		return ErrMessageBodyEmpty
	}
	if len(m.Body) > MaxMessageLength {
		return ErrMessageBodyTooLong
	}
	return nil
}
