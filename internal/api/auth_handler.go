package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/api/shared"
	"github.com/greenleaf-study/greenleaf/internal/config"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/service"
	"github.com/greenleaf-study/greenleaf/internal/service/auth"
)

// AuthHandler serves registration, login, token refresh, two-factor setup
// and the caller's profile.
type AuthHandler struct {
	userService   service.UserService
	jwtService    auth.JWTService
	tokenLifetime time.Duration
	timeFunc      func() time.Time
	logger        *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	authConfig config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		userService:   userService,
		jwtService:    jwtService,
		tokenLifetime: time.Duration(authConfig.TokenLifetimeMinutes) * time.Minute,
		timeFunc:      time.Now,
		logger:        logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	resp, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password, req.TOTPCode)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	resp, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	log.Debug("user logged in", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// RefreshToken handles POST /api/auth/refresh. The old refresh token is
// not revoked; both tokens are replaced.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	resp, err := h.issueTokens(r.Context(), claims.UserID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UpdateMe handles PUT /api/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		DisplayName: req.DisplayName,
		Timezone:    req.Timezone,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// SetupTOTP handles POST /api/auth/2fa/setup.
func (h *AuthHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	key, err := h.userService.SetupTOTP(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to set up two-factor authentication")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, key)
}

// EnableTOTP handles POST /api/auth/2fa/enable.
func (h *AuthHandler) EnableTOTP(w http.ResponseWriter, r *http.Request) {
	h.changeTOTP(w, r, h.userService.EnableTOTP, "Failed to enable two-factor authentication")
}

// DisableTOTP handles POST /api/auth/2fa/disable.
func (h *AuthHandler) DisableTOTP(w http.ResponseWriter, r *http.Request) {
	h.changeTOTP(w, r, h.userService.DisableTOTP, "Failed to disable two-factor authentication")
}

func (h *AuthHandler) changeTOTP(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, userID uuid.UUID, code string) error,
	fallback string,
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req TOTPCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := apply(r.Context(), userID, req.Code); err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueTokens(ctx context.Context, userID uuid.UUID) (AuthResponse, error) {
	accessToken, err := h.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return AuthResponse{}, err
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    h.timeFunc().Add(h.tokenLifetime).UTC().Format(time.RFC3339),
	}, nil
}
