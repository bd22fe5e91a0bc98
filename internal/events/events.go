package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeStudyRecorded  = "study.recorded"
	TypeCardReviewed   = "card.reviewed"
	TypeDeckShared     = "deck.shared"
	TypeFriendAccepted = "friend.accepted"
)

// Event is a fact emitted by a service.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	UserID     uuid.UUID       `json:"user_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// New creates an Event with payload marshaled to JSON.
func New(eventType string, userID uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		Payload:    data,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// StudyRecorded is the payload of TypeStudyRecorded.
type StudyRecorded struct {
	Day           string `json:"day"`
	NewDay        bool   `json:"new_day"`
	CardsStudied  int    `json:"cards_studied"`
	CurrentStreak int    `json:"current_streak"`
}

// CardReviewed is the payload of TypeCardReviewed.
type CardReviewed struct {
	CardID     uuid.UUID `json:"card_id"`
	Correct    bool      `json:"correct"`
	Difficulty int       `json:"difficulty"`
	NextReview time.Time `json:"next_review"`
}

// DeckShared is the payload of TypeDeckShared.
type DeckShared struct {
	SourceDeckID uuid.UUID `json:"source_deck_id"`
	CopyDeckID   uuid.UUID `json:"copy_deck_id"`
	RecipientID  uuid.UUID `json:"recipient_id"`
	CardCount    int       `json:"card_count"`
}

// FriendAccepted is the payload of TypeFriendAccepted.
type FriendAccepted struct {
	FriendshipID uuid.UUID `json:"friendship_id"`
	RequesterID  uuid.UUID `json:"requester_id"`
}

// EventHandler processes events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
