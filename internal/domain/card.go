package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card validation errors
var (
	ErrCardIDEmpty       = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)
	ErrCardUserIDEmpty   = fmt.Errorf("%w: card user ID cannot be empty", ErrValidation)
	ErrCardDeckIDEmpty   = fmt.Errorf("%w: card deck ID cannot be empty", ErrValidation)
	ErrCardFrontEmpty    = fmt.Errorf("%w: card front cannot be empty", ErrValidation)
	ErrCardBackEmpty     = fmt.Errorf("%w: card back cannot be empty", ErrValidation)
	ErrCardSideTooLong   = fmt.Errorf("%w: card side must be at most 4000 characters", ErrValidation)
	ErrInvalidDifficulty = fmt.Errorf("%w: difficulty must be between 0 and 5", ErrValidation)
	ErrInvalidCounters   = fmt.Errorf("%w: review counters are inconsistent", ErrValidation)
)

const (
	MinDifficulty     = 0
	MaxDifficulty     = 5
	MaxCardSideLength = 4000
)

// ReviewState is the scheduling state of a card. Difficulty is only ever
// changed by the review scheduler.
type ReviewState struct {
	Difficulty    int        `json:"difficulty"`
	TimesReviewed int        `json:"times_reviewed"`
	TimesCorrect  int        `json:"times_correct"`
	LastReviewed  *time.Time `json:"last_reviewed,omitempty"`
	NextReview    time.Time  `json:"next_review"`
}

// NewReviewState returns the state of a card that has never been reviewed.
// It is due immediately.
func NewReviewState(now time.Time) ReviewState {
	return ReviewState{NextReview: now.UTC()}
}

// Validate checks the counters and bucket invariants.
func (s ReviewState) Validate() error {
	if s.Difficulty < MinDifficulty || s.Difficulty > MaxDifficulty {
		return ErrInvalidDifficulty
	}
	if s.TimesReviewed < 0 || s.TimesCorrect < 0 || s.TimesCorrect > s.TimesReviewed {
		return ErrInvalidCounters
	}
	return nil
}

// IsDue reports whether the card should be shown at now.
func (s ReviewState) IsDue(now time.Time) bool {
	return !s.NextReview.After(now)
}

// Card is a two-sided flashcard in a deck.
type Card struct {
	ID     uuid.UUID `json:"id"`
	DeckID uuid.UUID `json:"deck_id"`
	UserID uuid.UUID `json:"user_id"`
	Front  string    `json:"front"`
	Back   string    `json:"back"`

	ReviewState

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCard creates a validated card with a fresh review state.
func NewCard(userID, deckID uuid.UUID, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:          uuid.New(),
		DeckID:      deckID,
		UserID:      userID,
		Front:       strings.TrimSpace(front),
		Back:        strings.TrimSpace(back),
		ReviewState: NewReviewState(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}
	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}
	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}
	if c.Front == "" {
		return ErrCardFrontEmpty
	}
	if c.Back == "" {
		return ErrCardBackEmpty
	}
	if len(c.Front) > MaxCardSideLength || len(c.Back) > MaxCardSideLength {
		return ErrCardSideTooLong
	}
	return c.ReviewState.Validate()
}

// UpdateContent replaces both sides of the card. Review state is untouched.
func (c *Card) UpdateContent(front, back string, now time.Time) error {
	updated := *c
	updated.Front = strings.TrimSpace(front)
	updated.Back = strings.TrimSpace(back)
	updated.UpdatedAt = now.UTC()
	if err := updated.Validate(); err != nil {
		return err
	}
	*c = updated
	return nil
}

// CopyTo returns a copy of the card placed in another user's deck with a
// fresh review state.
func (c *Card) CopyTo(userID, deckID uuid.UUID, now time.Time) *Card {
	now = now.UTC()
	return &Card{
		ID:          uuid.New(),
		DeckID:      deckID,
		UserID:      userID,
		Front:       c.Front,
		Back:        c.Back,
		ReviewState: NewReviewState(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
