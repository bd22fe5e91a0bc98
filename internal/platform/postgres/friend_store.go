package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

const friendshipColumns = `id, requester_id, addressee_id, status, created_at, updated_at`

// PostgresFriendStore implements store.FriendStore.
type PostgresFriendStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFriendStore creates a friendship store.
func NewPostgresFriendStore(db store.DBTX, logger *slog.Logger) *PostgresFriendStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresFriendStore{
		db:     db,
		logger: logger.With(slog.String("component", "friend_store")),
	}
}

var _ store.FriendStore = (*PostgresFriendStore)(nil)

// WithTx implements store.FriendStore.
func (s *PostgresFriendStore) WithTx(tx *sql.Tx) store.FriendStore {
	return &PostgresFriendStore{db: tx, logger: s.logger}
}

// Create implements store.FriendStore.
func (s *PostgresFriendStore) Create(ctx context.Context, f *domain.Friendship) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := f.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friendships (`+friendshipColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, f.ID, f.RequesterID, f.AddresseeID, string(f.Status), f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrFriendshipExists
		}
		log.Error("failed to create friendship",
			slog.String("error", err.Error()),
			slog.String("requester_id", f.RequesterID.String()))
		return store.NewStoreError("friendship", "create", "insert failed", MapError(err))
	}
	return nil
}

// GetByID implements store.FriendStore.
func (s *PostgresFriendStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error) {
	return s.getOne(ctx, `SELECT `+friendshipColumns+` FROM friendships WHERE id = $1`, id)
}

// GetBetween implements store.FriendStore.
func (s *PostgresFriendStore) GetBetween(ctx context.Context, a, b uuid.UUID) (*domain.Friendship, error) {
	return s.getOne(ctx, `
		SELECT `+friendshipColumns+` FROM friendships
		WHERE (requester_id = $1 AND addressee_id = $2)
			OR (requester_id = $2 AND addressee_id = $1)
	`, a, b)
}

func (s *PostgresFriendStore) getOne(ctx context.Context, query string, args ...any) (*domain.Friendship, error) {
	f, err := scanFriendship(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFriendshipNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get friendship",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("friendship", "get", "query failed", MapError(err))
	}
	return f, nil
}

// UpdateStatus implements store.FriendStore.
func (s *PostgresFriendStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.FriendshipStatus,
	at time.Time,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE friendships SET status = $1, updated_at = $2 WHERE id = $3
	`, string(status), at, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update friendship",
			slog.String("error", err.Error()),
			slog.String("friendship_id", id.String()))
		return store.NewStoreError("friendship", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrFriendshipNotFound)
}

// ListAccepted implements store.FriendStore.
func (s *PostgresFriendStore) ListAccepted(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error) {
	return s.list(ctx, `
		SELECT `+friendshipColumns+` FROM friendships
		WHERE status = 'accepted' AND (requester_id = $1 OR addressee_id = $1)
		ORDER BY updated_at DESC, id
	`, userID)
}

// ListIncoming implements store.FriendStore.
func (s *PostgresFriendStore) ListIncoming(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error) {
	return s.list(ctx, `
		SELECT `+friendshipColumns+` FROM friendships
		WHERE status = 'pending' AND addressee_id = $1
		ORDER BY created_at, id
	`, userID)
}

func (s *PostgresFriendStore) list(ctx context.Context, query string, userID uuid.UUID) ([]*domain.Friendship, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list friendships",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("friendship", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.Friendship{}
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, store.NewStoreError("friendship", "list", "scan failed", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("friendship", "list", "iteration failed", err)
	}
	return out, nil
}

// Delete implements store.FriendStore.
func (s *PostgresFriendStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("friendship", "delete", "delete failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrFriendshipNotFound)
}

func scanFriendship(row rowScanner) (*domain.Friendship, error) {
	var (
		f      domain.Friendship
		status string
	)
	if err := row.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Status = domain.FriendshipStatus(status)
	return &f, nil
}
