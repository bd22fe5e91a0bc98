package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

// PostgresStudyStore implements store.StudyStore.
type PostgresStudyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudyStore creates a study store.
func NewPostgresStudyStore(db store.DBTX, logger *slog.Logger) *PostgresStudyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStudyStore{
		db:     db,
		logger: logger.With(slog.String("component", "study_store")),
	}
}

var _ store.StudyStore = (*PostgresStudyStore)(nil)

// WithTx implements store.StudyStore.
func (s *PostgresStudyStore) WithTx(tx *sql.Tx) store.StudyStore {
	return &PostgresStudyStore{db: tx, logger: s.logger}
}

// AddDay implements store.StudyStore. Concurrent calls for the same day
// resolve in the database; exactly one of them reports true.
func (s *PostgresStudyStore) AddDay(ctx context.Context, userID uuid.UUID, day string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO study_days (user_id, day) VALUES ($1, $2::date)
		ON CONFLICT DO NOTHING
	`, userID, day)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to record study day",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("day", day))
		return false, store.NewStoreError("study_day", "create", "insert failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("study_day", "create", "rows affected unavailable", err)
	}
	return n == 1, nil
}

// ListDays implements store.StudyStore.
func (s *PostgresStudyStore) ListDays(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(day, 'YYYY-MM-DD') FROM study_days
		WHERE user_id = $1
		ORDER BY day
	`, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list study days",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("study_day", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	days := []string{}
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, store.NewStoreError("study_day", "list", "scan failed", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("study_day", "list", "iteration failed", err)
	}
	return days, nil
}

// CreateSession implements store.StudyStore.
func (s *PostgresStudyStore) CreateSession(ctx context.Context, session *domain.StudySession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO study_sessions (id, user_id, deck_id, cards_studied, cards_correct, studied_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7)
	`,
		session.ID,
		session.UserID,
		uuidArg(session.DeckID),
		session.CardsStudied,
		session.CardsCorrect,
		session.StudiedOn,
		session.CreatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create study session",
			slog.String("error", err.Error()),
			slog.String("user_id", session.UserID.String()))
		return store.NewStoreError("study_session", "create", "insert failed", MapError(err))
	}
	return nil
}
