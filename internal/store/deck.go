package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
)

// DeckSummary is a deck with its card counts.
type DeckSummary struct {
	domain.Deck
	CardCount int `json:"card_count"`
	DueCount  int `json:"due_count"`
}

// DeckStore persists decks.
type DeckStore interface {
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// ListByUser returns the user's decks ordered by name.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]DeckSummary, error)

	// Update writes name and description.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes the deck and its cards.
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) DeckStore
}
