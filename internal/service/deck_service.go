package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/events"
	"github.com/greenleaf-study/greenleaf/internal/importer"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

// ImportSummary reports the outcome of a deck import.
type ImportSummary struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// DeckService manages decks, bulk imports and sharing.
type DeckService interface {
	CreateDeck(ctx context.Context, userID uuid.UUID, name, description string) (*domain.Deck, error)

	// ListDecks returns the user's decks with card and due counts.
	ListDecks(ctx context.Context, userID uuid.UUID) ([]store.DeckSummary, error)

	// GetDeck returns ErrNotOwned if the deck belongs to another user.
	GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error)

	UpdateDeck(ctx context.Context, userID, deckID uuid.UUID, name, description string) (*domain.Deck, error)

	// DeleteDeck removes the deck and all of its cards.
	DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error

	// ImportCards adds every valid row of a parsed file to the deck in one
	// transaction. Invalid rows are skipped and reported.
	ImportCards(ctx context.Context, userID, deckID uuid.UUID, parsed *importer.Result) (*ImportSummary, error)

	// ShareDeck copies the deck and its cards into a friend's account with
	// fresh review state and returns the copy. Returns ErrNotFriends unless
	// the two users have an accepted friendship.
	ShareDeck(ctx context.Context, userID, deckID, friendID uuid.UUID) (*domain.Deck, error)
}

type deckService struct {
	db      store.Beginner
	decks   store.DeckStore
	cards   store.CardStore
	friends store.FriendStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

var _ DeckService = (*deckService)(nil)

// NewDeckService creates a DeckService. emitter may be nil.
func NewDeckService(
	db store.Beginner,
	decks store.DeckStore,
	cards store.CardStore,
	friends store.FriendStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (DeckService, error) {
	for _, err := range []error{
		requireDep("db", db == nil),
		requireDep("decks", decks == nil),
		requireDep("cards", cards == nil),
		requireDep("friends", friends == nil),
	} {
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &deckService{
		db:      db,
		decks:   decks,
		cards:   cards,
		friends: friends,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "deck_service")),
	}, nil
}

func (s *deckService) CreateDeck(ctx context.Context, userID uuid.UUID, name, description string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(userID, name, description)
	if err != nil {
		return nil, err
	}
	if err := s.decks.Create(ctx, deck); err != nil {
		return nil, NewServiceError("deck", "create", "failed to save deck", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("user_id", userID.String()))
	return deck, nil
}

func (s *deckService) ListDecks(ctx context.Context, userID uuid.UUID) ([]store.DeckSummary, error) {
	decks, err := s.decks.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("deck", "list", "failed to list decks", err)
	}
	return decks, nil
}

func (s *deckService) GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error) {
	return ownedDeck(ctx, s.decks, userID, deckID)
}

func (s *deckService) UpdateDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
	name, description string,
) (*domain.Deck, error) {
	deck, err := ownedDeck(ctx, s.decks, userID, deckID)
	if err != nil {
		return nil, err
	}
	if err := deck.Rename(name, description, time.Now()); err != nil {
		return nil, err
	}
	if err := s.decks.Update(ctx, deck); err != nil {
		return nil, NewServiceError("deck", "update", "failed to save deck", err)
	}
	return deck, nil
}

func (s *deckService) DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error {
	if _, err := ownedDeck(ctx, s.decks, userID, deckID); err != nil {
		return err
	}
	if err := s.decks.Delete(ctx, deckID); err != nil {
		return NewServiceError("deck", "delete", "failed to delete deck", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("deck deleted",
		slog.String("deck_id", deckID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

func (s *deckService) ImportCards(
	ctx context.Context,
	userID, deckID uuid.UUID,
	parsed *importer.Result,
) (*ImportSummary, error) {
	if parsed == nil {
		return nil, domain.NewValidationError("file", "is required", domain.ErrValidation)
	}
	if _, err := ownedDeck(ctx, s.decks, userID, deckID); err != nil {
		return nil, err
	}

	summary := &ImportSummary{
		Skipped: parsed.Skipped,
		Errors:  append([]string{}, parsed.Errors...),
	}

	cards := make([]*domain.Card, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		card, err := domain.NewCard(userID, deckID, row.Front, row.Back)
		if err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %s", row.Line, validationMessage(err)))
			continue
		}
		cards = append(cards, card)
	}

	if len(cards) > 0 {
		err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			return s.cards.WithTx(tx).CreateMultiple(ctx, cards)
		})
		if err != nil {
			return nil, NewServiceError("deck", "import", "failed to save imported cards", err)
		}
	}
	summary.Imported = len(cards)

	logger.FromContextOrDefault(ctx, s.logger).Info("cards imported",
		slog.String("deck_id", deckID.String()),
		slog.Int("imported", summary.Imported),
		slog.Int("skipped", summary.Skipped))
	return summary, nil
}

func (s *deckService) ShareDeck(ctx context.Context, userID, deckID, friendID uuid.UUID) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	source, err := ownedDeck(ctx, s.decks, userID, deckID)
	if err != nil {
		return nil, err
	}
	if err := requireFriends(ctx, s.friends, userID, friendID); err != nil {
		return nil, err
	}

	var (
		deckCopy  *domain.Deck
		cardCount int
	)
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards, err := s.cards.WithTx(tx).ListByDeck(ctx, source.ID)
		if err != nil {
			return err
		}

		deckCopy, err = domain.NewDeck(friendID, source.Name, source.Description)
		if err != nil {
			return err
		}
		if err := s.decks.WithTx(tx).Create(ctx, deckCopy); err != nil {
			return err
		}

		now := time.Now()
		copies := make([]*domain.Card, len(cards))
		for i, card := range cards {
			copies[i] = card.CopyTo(friendID, deckCopy.ID, now)
		}
		cardCount = len(copies)
		if cardCount == 0 {
			return nil
		}
		return s.cards.WithTx(tx).CreateMultiple(ctx, copies)
	})
	if err != nil {
		log.Error("failed to share deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, NewServiceError("deck", "share", "failed to copy deck", err)
	}

	log.Info("deck shared",
		slog.String("deck_id", deckID.String()),
		slog.String("copy_id", deckCopy.ID.String()),
		slog.Int("card_count", cardCount))

	events.Emit(ctx, s.emitter, events.TypeDeckShared, userID, events.DeckShared{
		SourceDeckID: source.ID,
		CopyDeckID:   deckCopy.ID,
		RecipientID:  friendID,
		CardCount:    cardCount,
	})
	return deckCopy, nil
}

// ownedDeck loads a deck and checks that userID owns it.
func ownedDeck(ctx context.Context, decks store.DeckStore, userID, deckID uuid.UUID) (*domain.Deck, error) {
	deck, err := decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.UserID != userID {
		return nil, ErrNotOwned
	}
	return deck, nil
}

// requireFriends returns ErrNotFriends unless a and b have an accepted
// friendship.
func requireFriends(ctx context.Context, friends store.FriendStore, a, b uuid.UUID) error {
	f, err := friends.GetBetween(ctx, a, b)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFriends
		}
		return err
	}
	if f.Status != domain.FriendshipAccepted {
		return ErrNotFriends
	}
	return nil
}

// validationMessage strips the generic prefix from a domain validation error.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
}
