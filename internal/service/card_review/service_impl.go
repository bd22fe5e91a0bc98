package card_review

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/domain/srs"
	"github.com/greenleaf-study/greenleaf/internal/events"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

var _ CardReviewService = (*cardReviewServiceImpl)(nil)

type cardReviewServiceImpl struct {
	db         store.Beginner
	cardStore  store.CardStore
	deckStore  store.DeckStore
	srsService srs.Service
	emitter    events.EventEmitter
	logger     *slog.Logger
	now        func() time.Time
}

// NewCardReviewService creates a CardReviewService. emitter may be nil.
func NewCardReviewService(
	db store.Beginner,
	cardStore store.CardStore,
	deckStore store.DeckStore,
	srsService srs.Service,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (CardReviewService, error) {
	switch {
	case db == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	case cardStore == nil:
		return nil, domain.NewValidationError("cardStore", "cannot be nil", domain.ErrValidation)
	case deckStore == nil:
		return nil, domain.NewValidationError("deckStore", "cannot be nil", domain.ErrValidation)
	case srsService == nil:
		return nil, domain.NewValidationError("srsService", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &cardReviewServiceImpl{
		db:         db,
		cardStore:  cardStore,
		deckStore:  deckStore,
		srsService: srsService,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "card_review_service")),
		now:        time.Now,
	}, nil
}

// ListDue implements CardReviewService.ListDue.
func (s *cardReviewServiceImpl) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	deckID *uuid.UUID,
	limit int,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if deckID != nil {
		deck, err := s.deckStore.GetByID(ctx, *deckID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, ErrDeckNotFound
			}
			return nil, NewListDueError("failed to load deck", err)
		}
		if deck.UserID != userID {
			log.Warn("due cards requested for another user's deck",
				slog.String("user_id", userID.String()),
				slog.String("deck_id", deckID.String()))
			return nil, ErrCardNotOwned
		}
	}

	switch {
	case limit <= 0:
		limit = DefaultDueLimit
	case limit > MaxDueLimit:
		limit = MaxDueLimit
	}

	cards, err := s.cardStore.ListDue(ctx, store.DueQuery{
		UserID: userID,
		DeckID: deckID,
		Now:    s.now().UTC(),
		Limit:  limit,
	})
	if err != nil {
		log.Error("failed to list due cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewListDueError("failed to list due cards", err)
	}

	log.Debug("listed due cards",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// SubmitReview implements CardReviewService.SubmitReview.
func (s *cardReviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	correct bool,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var reviewed *domain.Card
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cardStore.WithTx(tx)

		card, err := cards.GetForUpdate(ctx, cardID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrCardNotFound
			}
			return err
		}

		if card.UserID != userID {
			log.Warn("user does not own card",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
			return ErrCardNotOwned
		}

		now := s.now().UTC()
		card.ReviewState = s.srsService.ApplyReview(card.ReviewState, correct, now)
		card.UpdatedAt = now

		if err := cards.UpdateReviewState(ctx, card); err != nil {
			return err
		}
		reviewed = card
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrCardNotOwned) {
			return nil, err
		}
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, NewSubmitReviewError("failed to record review", err)
	}

	log.Debug("recorded review",
		slog.String("card_id", cardID.String()),
		slog.Bool("correct", correct),
		slog.Int("difficulty", reviewed.Difficulty),
		slog.Time("next_review", reviewed.NextReview))

	events.Emit(ctx, s.emitter, events.TypeCardReviewed, userID, events.CardReviewed{
		CardID:     reviewed.ID,
		Correct:    correct,
		Difficulty: reviewed.Difficulty,
		NextReview: reviewed.NextReview,
	})

	return reviewed, nil
}
