package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
)

// StudyStore persists study sessions and the studied-day set.
type StudyStore interface {
	// AddDay marks day as studied for the user. It is a single atomic
	// insert-if-absent and reports whether the day was new.
	AddDay(ctx context.Context, userID uuid.UUID, day string) (bool, error)

	// ListDays returns every studied day key for the user.
	ListDays(ctx context.Context, userID uuid.UUID) ([]string, error)

	// CreateSession records a completed session.
	CreateSession(ctx context.Context, session *domain.StudySession) error

	WithTx(tx *sql.Tx) StudyStore
}
