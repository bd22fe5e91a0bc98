package api

import (
	"log/slog"
	"net/http"

	"github.com/greenleaf-study/greenleaf/internal/api/shared"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/service"
)

// SocialHandler serves friendships and direct messages.
type SocialHandler struct {
	socialService service.SocialService
	logger        *slog.Logger
}

// NewSocialHandler creates a SocialHandler.
func NewSocialHandler(socialService service.SocialService, logger *slog.Logger) *SocialHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocialHandler{
		socialService: socialService,
		logger:        logger.With(slog.String("component", "social_handler")),
	}
}

// SendFriendRequest handles POST /api/friends/requests.
func (h *SocialHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req FriendRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	friendship, err := h.socialService.SendFriendRequest(r.Context(), userID, req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to send friend request")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, friendship)
}

// ListIncomingRequests handles GET /api/friends/requests.
func (h *SocialHandler) ListIncomingRequests(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	requests, err := h.socialService.ListIncomingRequests(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list friend requests")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newListResponse[service.FriendRequest](requests))
}

// AcceptFriendRequest handles POST /api/friends/requests/{id}/accept.
func (h *SocialHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, requestID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	friendship, err := h.socialService.AcceptFriendRequest(r.Context(), userID, requestID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to accept friend request")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, friendship)
}

// ListFriends handles GET /api/friends.
func (h *SocialHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	friends, err := h.socialService.ListFriends(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list friends")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newListResponse[service.Friend](friends))
}

// RemoveFriend handles DELETE /api/friends/{userID}.
func (h *SocialHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, friendID, ok := handleUserIDAndPathUUID(w, r, "userID", log)
	if !ok {
		return
	}

	if err := h.socialService.RemoveFriend(r.Context(), userID, friendID); err != nil {
		HandleAPIError(w, r, err, "Failed to remove friend")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendMessage handles POST /api/messages.
func (h *SocialHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req SendMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.socialService.SendMessage(r.Context(), userID, req.RecipientID, req.Body)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to send message")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, msg)
}

// Conversation handles GET /api/messages/{userID}?limit=.
func (h *SocialHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, otherID, ok := handleUserIDAndPathUUID(w, r, "userID", log)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", service.DefaultConversationLimit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	messages, err := h.socialService.Conversation(r.Context(), userID, otherID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load conversation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newListResponse[*domain.Message](messages))
}
