package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/api/shared"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
)

// getUserIDFromContext returns the user ID placed in the context by the
// auth middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathUUID parses the chi URL parameter paramName as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requireUserID writes a 401 and returns false when the request carries no
// authenticated user.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// handleUserIDAndPathUUID extracts the user ID and the UUID path parameter,
// writing an error response when either is missing or malformed.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContext(r.Context())
	}

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	id, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid "+paramName, err)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, id, true
}

// decodeAndValidate reads the JSON body into req and validates it,
// writing a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter. A missing value
// returns def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrValidation)
	}
	return n, nil
}

// queryUUID parses an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "has invalid format", domain.ErrInvalidID)
	}
	return &id, nil
}
