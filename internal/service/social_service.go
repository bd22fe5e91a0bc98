package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/events"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

// Conversation page sizes.
const (
	DefaultConversationLimit = 50
	MaxConversationLimit     = 200
)

// Friend is an accepted friend as seen by the other side.
type Friend struct {
	UserID        uuid.UUID `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	CurrentStreak int       `json:"current_streak"`
	Since         time.Time `json:"since"`
}

// FriendRequest is a pending request addressed to the viewer.
type FriendRequest struct {
	ID          uuid.UUID `json:"id"`
	FromUserID  uuid.UUID `json:"from_user_id"`
	DisplayName string    `json:"display_name"`
	SentAt      time.Time `json:"sent_at"`
}

// SocialService manages friendships and direct messages.
type SocialService interface {
	// SendFriendRequest asks the user registered under email to become a
	// friend. Returns ErrFriendshipExists for a repeated request in either
	// direction.
	SendFriendRequest(ctx context.Context, userID uuid.UUID, email string) (*domain.Friendship, error)

	// AcceptFriendRequest accepts a pending request addressed to userID.
	AcceptFriendRequest(ctx context.Context, userID, requestID uuid.UUID) (*domain.Friendship, error)

	// RemoveFriend deletes the friendship or pending request between the
	// two users.
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error

	ListFriends(ctx context.Context, userID uuid.UUID) ([]Friend, error)

	ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]FriendRequest, error)

	// SendMessage sends a direct message. Only friends can message each
	// other.
	SendMessage(ctx context.Context, userID, recipientID uuid.UUID, body string) (*domain.Message, error)

	// Conversation returns the latest messages with another user, oldest
	// first, and marks the ones received by userID as read.
	Conversation(ctx context.Context, userID, otherID uuid.UUID, limit int) ([]*domain.Message, error)
}

type socialService struct {
	users    store.UserStore
	friends  store.FriendStore
	messages store.MessageStore
	emitter  events.EventEmitter
	logger   *slog.Logger
}

var _ SocialService = (*socialService)(nil)

// NewSocialService creates a SocialService. emitter may be nil.
func NewSocialService(
	users store.UserStore,
	friends store.FriendStore,
	messages store.MessageStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (SocialService, error) {
	for _, err := range []error{
		requireDep("users", users == nil),
		requireDep("friends", friends == nil),
		requireDep("messages", messages == nil),
	} {
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &socialService{
		users:    users,
		friends:  friends,
		messages: messages,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "social_service")),
	}, nil
}

func (s *socialService) SendFriendRequest(
	ctx context.Context,
	userID uuid.UUID,
	email string,
) (*domain.Friendship, error) {
	addressee, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	request, err := domain.NewFriendRequest(userID, addressee.ID)
	if err != nil {
		return nil, err
	}
	if err := s.friends.Create(ctx, request); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, store.ErrFriendshipExists
		}
		return nil, NewServiceError("social", "send_request", "failed to save friend request", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("friend request sent",
		slog.String("request_id", request.ID.String()),
		slog.String("user_id", userID.String()))
	return request, nil
}

func (s *socialService) AcceptFriendRequest(
	ctx context.Context,
	userID, requestID uuid.UUID,
) (*domain.Friendship, error) {
	request, err := s.friends.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.AddresseeID != userID {
		return nil, ErrNotOwned
	}
	if request.Status != domain.FriendshipPending {
		return nil, ErrRequestNotPending
	}

	now := time.Now().UTC()
	if err := s.friends.UpdateStatus(ctx, request.ID, domain.FriendshipAccepted, now); err != nil {
		return nil, NewServiceError("social", "accept_request", "failed to accept friend request", err)
	}
	request.Status = domain.FriendshipAccepted
	request.UpdatedAt = now

	events.Emit(ctx, s.emitter, events.TypeFriendAccepted, userID, events.FriendAccepted{
		FriendshipID: request.ID,
		RequesterID:  request.RequesterID,
	})
	return request, nil
}

func (s *socialService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	f, err := s.friends.GetBetween(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if err := s.friends.Delete(ctx, f.ID); err != nil {
		return NewServiceError("social", "remove_friend", "failed to delete friendship", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("friendship removed",
		slog.String("friendship_id", f.ID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

func (s *socialService) ListFriends(ctx context.Context, userID uuid.UUID) ([]Friend, error) {
	friendships, err := s.friends.ListAccepted(ctx, userID)
	if err != nil {
		return nil, NewServiceError("social", "list_friends", "failed to list friends", err)
	}

	friends := make([]Friend, 0, len(friendships))
	for _, f := range friendships {
		other, err := s.users.GetByID(ctx, f.Other(userID))
		if err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return nil, err
		}
		friends = append(friends, Friend{
			UserID:        other.ID,
			DisplayName:   other.DisplayName,
			CurrentStreak: other.CurrentStreak,
			Since:         f.UpdatedAt,
		})
	}
	return friends, nil
}

func (s *socialService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]FriendRequest, error) {
	pending, err := s.friends.ListIncoming(ctx, userID)
	if err != nil {
		return nil, NewServiceError("social", "list_requests", "failed to list friend requests", err)
	}

	requests := make([]FriendRequest, 0, len(pending))
	for _, f := range pending {
		from, err := s.users.GetByID(ctx, f.RequesterID)
		if err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return nil, err
		}
		requests = append(requests, FriendRequest{
			ID:          f.ID,
			FromUserID:  from.ID,
			DisplayName: from.DisplayName,
			SentAt:      f.CreatedAt,
		})
	}
	return requests, nil
}

func (s *socialService) SendMessage(
	ctx context.Context,
	userID, recipientID uuid.UUID,
	body string,
) (*domain.Message, error) {
	msg, err := domain.NewMessage(userID, recipientID, body)
	if err != nil {
		return nil, err
	}
	if err := requireFriends(ctx, s.friends, userID, recipientID); err != nil {
		return nil, err
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, NewServiceError("social", "send_message", "failed to save message", err)
	}
	return msg, nil
}

func (s *socialService) Conversation(
	ctx context.Context,
	userID, otherID uuid.UUID,
	limit int,
) ([]*domain.Message, error) {
	if err := requireFriends(ctx, s.friends, userID, otherID); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = DefaultConversationLimit
	case limit > MaxConversationLimit:
		limit = MaxConversationLimit
	}

	msgs, err := s.messages.ListConversation(ctx, userID, otherID, limit)
	if err != nil {
		return nil, NewServiceError("social", "conversation", "failed to load messages", err)
	}

	now := time.Now().UTC()
	if _, err := s.messages.MarkRead(ctx, userID, otherID, now); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to mark messages read",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return msgs, nil
	}
	for _, m := range msgs {
		if m.RecipientID == userID && m.ReadAt == nil {
			m.ReadAt = &now
		}
	}
	return msgs, nil
}
