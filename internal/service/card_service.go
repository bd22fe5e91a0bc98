package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

// CardService manages card content. Reviews go through the card_review
// package.
type CardService interface {
	// CreateCard adds a card with a fresh review state to an owned deck.
	CreateCard(ctx context.Context, userID, deckID uuid.UUID, front, back string) (*domain.Card, error)

	ListCards(ctx context.Context, userID, deckID uuid.UUID) ([]*domain.Card, error)

	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error)

	// UpdateCard replaces the text of a card. Its review state is kept.
	UpdateCard(ctx context.Context, userID, cardID uuid.UUID, front, back string) (*domain.Card, error)

	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error
}

type cardService struct {
	decks  store.DeckStore
	cards  store.CardStore
	logger *slog.Logger
}

var _ CardService = (*cardService)(nil)

// NewCardService creates a CardService.
func NewCardService(decks store.DeckStore, cards store.CardStore, logger *slog.Logger) (CardService, error) {
	if err := requireDep("decks", decks == nil); err != nil {
		return nil, err
	}
	if err := requireDep("cards", cards == nil); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &cardService{
		decks:  decks,
		cards:  cards,
		logger: logger.With(slog.String("component", "card_service")),
	}, nil
}

func (s *cardService) CreateCard(
	ctx context.Context,
	userID, deckID uuid.UUID,
	front, back string,
) (*domain.Card, error) {
	if _, err := ownedDeck(ctx, s.decks, userID, deckID); err != nil {
		return nil, err
	}
	card, err := domain.NewCard(userID, deckID, front, back)
	if err != nil {
		return nil, err
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, NewServiceError("card", "create", "failed to save card", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deckID.String()))
	return card, nil
}

func (s *cardService) ListCards(ctx context.Context, userID, deckID uuid.UUID) ([]*domain.Card, error) {
	if _, err := ownedDeck(ctx, s.decks, userID, deckID); err != nil {
		return nil, err
	}
	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, NewServiceError("card", "list", "failed to list cards", err)
	}
	return cards, nil
}

func (s *cardService) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("card access denied",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, ErrNotOwned
	}
	return card, nil
}

func (s *cardService) UpdateCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	front, back string,
) (*domain.Card, error) {
	card, err := s.GetCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if err := card.UpdateContent(front, back, time.Now()); err != nil {
		return nil, err
	}
	if err := s.cards.UpdateContent(ctx, card); err != nil {
		return nil, NewServiceError("card", "update", "failed to save card", err)
	}
	return card, nil
}

func (s *cardService) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	if _, err := s.GetCard(ctx, userID, cardID); err != nil {
		return err
	}
	if err := s.cards.Delete(ctx, cardID); err != nil {
		return NewServiceError("card", "delete", "failed to delete card", err)
	}
	return nil
}
