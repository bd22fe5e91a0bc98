package api

import (
	"log/slog"
	"net/http"

	"github.com/greenleaf-study/greenleaf/internal/api/shared"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/service"
)

// StudyHandler serves study sessions, the streak view and the garden
// stage override.
type StudyHandler struct {
	studyService service.StudyService
	logger       *slog.Logger
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(studyService service.StudyService, logger *slog.Logger) *StudyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudyHandler{
		studyService: studyService,
		logger:       logger.With(slog.String("component", "study_handler")),
	}
}

// RecordSession handles POST /api/study/sessions.
func (h *StudyHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req StudySessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	summary, err := h.studyService.RecordSession(r.Context(), userID, service.SessionInput{
		DeckID:       req.DeckID,
		CardsStudied: req.CardsStudied,
		CardsCorrect: req.CardsCorrect,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record study session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, summary)
}

// GetStreak handles GET /api/streak.
func (h *StudyHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	summary, err := h.studyService.GetStreak(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load streak")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// SetGardenOverride handles PUT /api/streak/garden-override.
func (h *StudyHandler) SetGardenOverride(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req GardenOverrideRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	summary, err := h.studyService.SetGardenOverride(r.Context(), userID, req.Stage)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to set garden stage")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}
