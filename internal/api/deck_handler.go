package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/greenleaf-study/greenleaf/internal/api/shared"
	"github.com/greenleaf-study/greenleaf/internal/config"
	"github.com/greenleaf-study/greenleaf/internal/importer"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/service"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

// DeckHandler serves deck CRUD, spreadsheet import and sharing.
type DeckHandler struct {
	deckService service.DeckService
	importCfg   config.ImportConfig
	logger      *slog.Logger
}

// NewDeckHandler creates a DeckHandler.
func NewDeckHandler(deckService service.DeckService, importCfg config.ImportConfig, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckHandler{
		deckService: deckService,
		importCfg:   importCfg,
		logger:      logger.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeck handles POST /api/decks.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req DeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.deckService.CreateDeck(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, deck)
}

// ListDecks handles GET /api/decks.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	decks, err := h.deckService.ListDecks(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newListResponse[store.DeckSummary](decks))
}

// GetDeck handles GET /api/decks/{id}.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	deck, err := h.deckService.GetDeck(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// UpdateDeck handles PUT /api/decks/{id}.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req DeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.deckService.UpdateDeck(r.Context(), userID, deckID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// DeleteDeck handles DELETE /api/decks/{id}. Cards go with the deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.deckService.DeleteDeck(r.Context(), userID, deckID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete deck")
		return
	}

	log.Debug("deck deleted", slog.String("deck_id", deckID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ImportCards handles POST /api/decks/{id}/import with a multipart "file"
// field holding an .xlsx or .csv sheet.
func (h *DeckHandler) ImportCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if r.ContentLength > h.importCfg.MaxUploadBytes {
		shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.importCfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.importCfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "File is too large", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Missing file field", err)
		return
	}
	defer func() { _ = file.Close() }()

	parsed, err := importer.Parse(file, header.Filename, h.importCfg.MaxRows)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read file")
		return
	}

	summary, err := h.deckService.ImportCards(r.Context(), userID, deckID, parsed)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import cards")
		return
	}

	log.Info("cards imported",
		slog.String("deck_id", deckID.String()),
		slog.Int("imported", summary.Imported),
		slog.Int("skipped", summary.Skipped))
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// ShareDeck handles POST /api/decks/{id}/share. The friend receives a copy
// with fresh review state.
func (h *DeckHandler) ShareDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ShareDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	copied, err := h.deckService.ShareDeck(r.Context(), userID, deckID, req.FriendID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to share deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, copied)
}
