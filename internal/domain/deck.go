package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck validation errors
var (
	ErrDeckIDEmpty         = fmt.Errorf("%w: deck ID cannot be empty", ErrValidation)
	ErrDeckUserIDEmpty     = fmt.Errorf("%w: deck user ID cannot be empty", ErrValidation)
	ErrDeckNameEmpty       = fmt.Errorf("%w: deck name cannot be empty", ErrValidation)
	ErrDeckNameTooLong     = fmt.Errorf("%w: deck name must be at most 120 characters", ErrValidation)
	ErrDeckDescriptionLong = fmt.Errorf("%w: deck description must be at most 2000 characters", ErrValidation)
)

const (
	MaxDeckNameLength        = 120
	MaxDeckDescriptionLength = 2000
)

// Deck groups a user's cards.
type Deck struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDeck creates a validated Deck owned by userID.
func NewDeck(userID uuid.UUID, name, description string) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}
	if d.UserID == uuid.Nil {
		return ErrDeckUserIDEmpty
	}
	if d.Name == "" {
		return ErrDeckNameEmpty
	}
	if len(d.Name) > MaxDeckNameLength {
		return ErrDeckNameTooLong
	}
	if len(d.Description) > MaxDeckDescriptionLength {
		return ErrDeckDescriptionLong
	}
	return nil
}

// Rename updates the deck's name and description and bumps UpdatedAt.
func (d *Deck) Rename(name, description string, now time.Time) error {
	updated := *d
	updated.Name = strings.TrimSpace(name)
	updated.Description = strings.TrimSpace(description)
	updated.UpdatedAt = now.UTC()
	if err := updated.Validate(); err != nil {
		return err
	}
	*d = updated
	return nil
}
