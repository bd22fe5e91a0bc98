package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
)

// FriendStore persists friendships.
type FriendStore interface {
	// Create returns ErrFriendshipExists if the pair already has a
	// friendship in either direction.
	Create(ctx context.Context, f *domain.Friendship) error

	// GetByID returns ErrFriendshipNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error)

	// GetBetween finds the friendship between two users in either direction.
	GetBetween(ctx context.Context, a, b uuid.UUID) (*domain.Friendship, error)

	// UpdateStatus changes the status of a friendship.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FriendshipStatus, at time.Time) error

	// ListAccepted returns the user's accepted friendships.
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error)

	// ListIncoming returns pending requests addressed to the user.
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error)

	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) FriendStore
}

// MessageStore persists direct messages.
type MessageStore interface {
	Create(ctx context.Context, m *domain.Message) error

	// ListConversation returns the most recent limit messages between two
	// users, oldest first.
	ListConversation(ctx context.Context, a, b uuid.UUID, limit int) ([]*domain.Message, error)

	// MarkRead marks every unread message from sender to recipient as read
	// and returns how many changed.
	MarkRead(ctx context.Context, recipientID, senderID uuid.UUID, at time.Time) (int64, error)

	WithTx(tx *sql.Tx) MessageStore
}
