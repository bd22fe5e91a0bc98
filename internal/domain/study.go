package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Study session validation errors
var (
	ErrSessionUserIDEmpty   = fmt.Errorf("%w: session user ID cannot be empty", ErrValidation)
	ErrSessionCounts        = fmt.Errorf("%w: cards correct cannot exceed cards studied", ErrValidation)
	ErrSessionNegativeCount = fmt.Errorf("%w: session counts cannot be negative", ErrValidation)
)

// StudySession records one completed study or test run. Each session marks
// its calendar day as studied.
type StudySession struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	DeckID       *uuid.UUID `json:"deck_id,omitempty"`
	CardsStudied int        `json:"cards_studied"`
	CardsCorrect int        `json:"cards_correct"`
	StudiedOn    string     `json:"studied_on"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewStudySession creates a validated session. studiedOn is the day key the
// session counts toward.
func NewStudySession(userID uuid.UUID, deckID *uuid.UUID, studied, correct int, studiedOn string) (*StudySession, error) {
	s := &StudySession{
		ID:           uuid.New(),
		UserID:       userID,
		DeckID:       deckID,
		CardsStudied: studied,
		CardsCorrect: correct,
		StudiedOn:    studiedOn,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks if the StudySession has valid data.
func (s *StudySession) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrSessionUserIDEmpty
	}
	if s.CardsStudied < 0 || s.CardsCorrect < 0 {
		return ErrSessionNegativeCount
	}
	if s.CardsCorrect > s.CardsStudied {
		return ErrSessionCounts
	}
	return nil
}
