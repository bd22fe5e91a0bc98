package api

import (
	"log/slog"
	"net/http"

	"github.com/greenleaf-study/greenleaf/internal/api/shared"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/service"
	"github.com/greenleaf-study/greenleaf/internal/service/card_review"
)

// CardHandler serves card CRUD, the due queue and reviews.
type CardHandler struct {
	cardService       service.CardService
	cardReviewService card_review.CardReviewService
	logger            *slog.Logger
}

// NewCardHandler creates a CardHandler.
func NewCardHandler(
	cardService service.CardService,
	cardReviewService card_review.CardReviewService,
	logger *slog.Logger,
) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}
	return &CardHandler{
		cardService:       cardService,
		cardReviewService: cardReviewService,
		logger:            logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /api/decks/{id}/cards.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cardService.CreateCard(r.Context(), userID, deckID, req.Front, req.Back)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// ListCards handles GET /api/decks/{id}/cards.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	cards, err := h.cardService.ListCards(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newListResponse[*domain.Card](cards))
}

// UpdateCard handles PUT /api/cards/{id}. The review state is kept.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cardService.UpdateCard(r.Context(), userID, cardID, req.Front, req.Back)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteCard handles DELETE /api/cards/{id}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(r.Context(), userID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListDue handles GET /api/cards/due?deck_id=&limit=.
func (h *CardHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	deckID, err := queryUUID(r, "deck_id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid deck_id", err)
		return
	}
	limit, err := queryInt(r, "limit", card_review.DefaultDueLimit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	cards, err := h.cardReviewService.ListDue(r.Context(), userID, deckID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due cards")
		return
	}

	log.Debug("listed due cards", slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, newListResponse[*domain.Card](cards))
}

// SubmitReview handles POST /api/cards/{id}/review.
func (h *CardHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cardReviewService.SubmitReview(r.Context(), userID, cardID, *req.Correct)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("card_id", cardID.String()),
		slog.Bool("correct", *req.Correct),
		slog.Int("difficulty", card.Difficulty))
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}
