package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

const cardColumns = `id, deck_id, user_id, front, back, difficulty, times_reviewed,
	times_correct, last_reviewed, next_review, created_at, updated_at`

// PostgresCardStore implements store.CardStore.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a card store.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}

const insertCardQuery = `
	INSERT INTO cards (id, deck_id, user_id, front, back, difficulty, times_reviewed,
		times_correct, last_reviewed, next_review, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// Create implements store.CardStore.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	if _, err := s.db.ExecContext(ctx, insertCardQuery, cardArgs(card)...); err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("deck_id", card.DeckID.String()))
		return store.NewStoreError("card", "create", "insert failed", MapError(err))
	}
	return nil
}

// CreateMultiple implements store.CardStore. Every card is validated
// before anything is written.
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return err
		}
	}

	stmt, err := s.db.PrepareContext(ctx, insertCardQuery)
	if err != nil {
		return store.NewStoreError("card", "create", "prepare failed", MapError(err))
	}
	defer func() { _ = stmt.Close() }()

	for _, card := range cards {
		if _, err := stmt.ExecContext(ctx, cardArgs(card)...); err != nil {
			log.Error("failed to create card in batch",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return store.NewStoreError("card", "create", "batch insert failed", MapError(err))
		}
	}

	log.Debug("cards created", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.getOne(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
}

// GetForUpdate implements store.CardStore. It must run on a transaction
// for the lock to mean anything.
func (s *PostgresCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.getOne(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresCardStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Card, error) {
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, store.NewStoreError("card", "get", "query failed", MapError(err))
	}
	return card, nil
}

// ListByDeck implements store.CardStore.
func (s *PostgresCardStore) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	return s.list(ctx, `
		SELECT `+cardColumns+` FROM cards
		WHERE deck_id = $1
		ORDER BY created_at, id
	`, deckID)
}

// ListDue implements store.CardStore.
func (s *PostgresCardStore) ListDue(ctx context.Context, q store.DueQuery) ([]*domain.Card, error) {
	return s.list(ctx, `
		SELECT `+cardColumns+` FROM cards
		WHERE user_id = $1
			AND next_review <= $2
			AND ($3::uuid IS NULL OR deck_id = $3)
		ORDER BY next_review, id
		LIMIT $4
	`, q.UserID, q.Now, uuidArg(q.DeckID), q.Limit)
}

func (s *PostgresCardStore) list(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list cards",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("card", "list", "scan failed", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "list", "iteration failed", err)
	}
	return cards, nil
}

// UpdateContent implements store.CardStore.
func (s *PostgresCardStore) UpdateContent(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE cards SET front = $1, back = $2, updated_at = $3
		WHERE id = $4
	`, card.Front, card.Back, card.UpdatedAt, card.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update card content",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return store.NewStoreError("card", "update", "content update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// UpdateReviewState implements store.CardStore.
func (s *PostgresCardStore) UpdateReviewState(ctx context.Context, card *domain.Card) error {
	if err := card.ReviewState.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET difficulty = $1, times_reviewed = $2, times_correct = $3,
			last_reviewed = $4, next_review = $5, updated_at = $6
		WHERE id = $7
	`,
		card.Difficulty,
		card.TimesReviewed,
		card.TimesCorrect,
		timeArg(card.LastReviewed),
		card.NextReview,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update review state",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return store.NewStoreError("card", "update", "review state update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// Delete implements store.CardStore.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return store.NewStoreError("card", "delete", "delete failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

func cardArgs(card *domain.Card) []any {
	return []any{
		card.ID,
		card.DeckID,
		card.UserID,
		card.Front,
		card.Back,
		card.Difficulty,
		card.TimesReviewed,
		card.TimesCorrect,
		timeArg(card.LastReviewed),
		card.NextReview,
		card.CreatedAt,
		card.UpdatedAt,
	}
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card         domain.Card
		lastReviewed sql.NullTime
	)
	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&card.UserID,
		&card.Front,
		&card.Back,
		&card.Difficulty,
		&card.TimesReviewed,
		&card.TimesCorrect,
		&lastReviewed,
		&card.NextReview,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastReviewed.Valid {
		t := lastReviewed.Time
		card.LastReviewed = &t
	}
	return &card, nil
}
