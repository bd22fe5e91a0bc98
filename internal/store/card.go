package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
)

// DueQuery filters due cards.
type DueQuery struct {
	UserID uuid.UUID
	DeckID *uuid.UUID
	Now    time.Time
	Limit  int
}

// CardStore persists cards and their review state.
type CardStore interface {
	Create(ctx context.Context, card *domain.Card) error

	// CreateMultiple inserts cards. Run it inside a transaction for
	// all-or-nothing behavior.
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetForUpdate loads a card and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByDeck returns a deck's cards in creation order.
	ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error)

	// ListDue returns cards with next_review <= q.Now, soonest first.
	ListDue(ctx context.Context, q DueQuery) ([]*domain.Card, error)

	UpdateContent(ctx context.Context, card *domain.Card) error

	// UpdateReviewState persists the scheduling fields of a card.
	UpdateReviewState(ctx context.Context, card *domain.Card) error

	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) CardStore
}
