package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, email, display_name, hashed_password, timezone, role,
	totp_secret, totp_enabled, garden_stage_override, current_streak, longest_streak,
	created_at, updated_at`

// PostgresUserStore implements store.UserStore.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// NewPostgresUserStore creates a user store. bcryptCost outside the
// range bcrypt accepts falls back to bcrypt.DefaultCost.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, bcryptCost: s.bcryptCost, logger: s.logger}
}

// Create implements store.UserStore. The plaintext password is cleared
// once hashed.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	if user.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			log.Error("failed to hash password",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hash)
		user.Password = ""
	}

	query := `
		INSERT INTO users (id, email, display_name, hashed_password, timezone, role,
			totp_secret, totp_enabled, garden_stage_override, current_streak, longest_streak,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.HashedPassword,
		user.Timezone,
		string(user.Role),
		user.TOTPSecret,
		user.TOTPEnabled,
		intArg(user.GardenStageOverride),
		user.CurrentStreak,
		user.LongestStreak,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "create", "insert failed", MapError(err))
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getOne(ctx, "user_id", id.String(), query, id)
}

// GetByEmail implements store.UserStore.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = LOWER($1)`
	return s.getOne(ctx, "lookup", "email", query, email)
}

func (s *PostgresUserStore) getOne(ctx context.Context, key, value, query string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String(key, value))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			slog.String("error", err.Error()),
			slog.String(key, value))
		return nil, store.NewStoreError("user", "get", "query failed", MapError(err))
	}
	return user, nil
}

// UpdateProfile implements store.UserStore.
func (s *PostgresUserStore) UpdateProfile(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET display_name = $1, timezone = $2, updated_at = $3
		WHERE id = $4
	`, user.DisplayName, user.Timezone, user.UpdatedAt, user.ID)
	if err != nil {
		log.Error("failed to update user profile",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// UpdateStreakCache implements store.UserStore.
func (s *PostgresUserStore) UpdateStreakCache(ctx context.Context, id uuid.UUID, current, longest int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET current_streak = $1, longest_streak = $2
		WHERE id = $3
	`, current, longest, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update streak cache",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return store.NewStoreError("user", "update", "streak cache update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// SetGardenOverride implements store.UserStore.
func (s *PostgresUserStore) SetGardenOverride(ctx context.Context, id uuid.UUID, stage *int) error {
	if stage != nil && (*stage < 0 || *stage > domain.MaxGardenStage) {
		return domain.ErrInvalidStageOverride
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET garden_stage_override = $1, updated_at = $2
		WHERE id = $3
	`, intArg(stage), time.Now().UTC(), id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to set garden override",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return store.NewStoreError("user", "update", "garden override update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// SetTOTP implements store.UserStore.
func (s *PostgresUserStore) SetTOTP(ctx context.Context, id uuid.UUID, secret string, enabled bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET totp_secret = $1, totp_enabled = $2, updated_at = $3
		WHERE id = $4
	`, secret, enabled, time.Now().UTC(), id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update two-factor settings",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return store.NewStoreError("user", "update", "totp update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// ListIDs implements store.UserStore.
func (s *PostgresUserStore) ListIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM users WHERE id > $1 ORDER BY id LIMIT $2
	`, after, limit)
	if err != nil {
		return nil, store.NewStoreError("user", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, store.NewStoreError("user", "list", "scan failed", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("user", "list", "iteration failed", err)
	}
	return ids, nil
}

// Delete implements store.UserStore.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return store.NewStoreError("user", "delete", "delete failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted", slog.String("user_id", id.String()))
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user     domain.User
		role     string
		override sql.NullInt32
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.HashedPassword,
		&user.Timezone,
		&role,
		&user.TOTPSecret,
		&user.TOTPEnabled,
		&override,
		&user.CurrentStreak,
		&user.LongestStreak,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = domain.Role(role)
	if override.Valid {
		stage := int(override.Int32)
		user.GardenStageOverride = &stage
	}
	return &user, nil
}
