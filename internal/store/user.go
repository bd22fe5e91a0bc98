package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	// Create hashes user.Password and inserts the user.
	// Returns ErrEmailExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail returns ErrUserNotFound if no user has the email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfile writes display name and timezone.
	UpdateProfile(ctx context.Context, user *domain.User) error

	// UpdateStreakCache stores the cached streak projection.
	UpdateStreakCache(ctx context.Context, id uuid.UUID, current, longest int) error

	// SetGardenOverride stores or clears (nil) the garden stage override.
	SetGardenOverride(ctx context.Context, id uuid.UUID, stage *int) error

	// SetTOTP stores the two-factor secret and whether it is enforced.
	SetTOTP(ctx context.Context, id uuid.UUID, secret string, enabled bool) error

	// ListIDs pages through user IDs in ascending order after the given ID.
	// Pass uuid.Nil to start from the beginning.
	ListIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)

	// Delete removes the user and, through cascades, all of their data.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
