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

// PostgresDeckStore implements store.DeckStore.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a deck store.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

var _ store.DeckStore = (*PostgresDeckStore)(nil)

// WithTx implements store.DeckStore.
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx, logger: s.logger}
}

// Create implements store.DeckStore.
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decks (id, user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, deck.ID, deck.UserID, deck.Name, deck.Description, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()),
			slog.String("user_id", deck.UserID.String()))
		return store.NewStoreError("deck", "create", "insert failed", MapError(err))
	}

	log.Debug("deck created", slog.String("deck_id", deck.ID.String()))
	return nil
}

// GetByID implements store.DeckStore.
func (s *PostgresDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	var deck domain.Deck
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM decks WHERE id = $1
	`, id).Scan(&deck.ID, &deck.UserID, &deck.Name, &deck.Description, &deck.CreatedAt, &deck.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return nil, store.NewStoreError("deck", "get", "query failed", MapError(err))
	}
	return &deck, nil
}

// ListByUser implements store.DeckStore.
func (s *PostgresDeckStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]store.DeckSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.user_id, d.name, d.description, d.created_at, d.updated_at,
			COUNT(c.id),
			COUNT(c.id) FILTER (WHERE c.next_review <= NOW())
		FROM decks d
		LEFT JOIN cards c ON c.deck_id = d.id
		WHERE d.user_id = $1
		GROUP BY d.id
		ORDER BY d.name, d.id
	`, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list decks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("deck", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	decks := []store.DeckSummary{}
	for rows.Next() {
		var d store.DeckSummary
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt,
			&d.CardCount, &d.DueCount,
		); err != nil {
			return nil, store.NewStoreError("deck", "list", "scan failed", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("deck", "list", "iteration failed", err)
	}
	return decks, nil
}

// Update implements store.DeckStore.
func (s *PostgresDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE decks SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, deck.Name, deck.Description, deck.UpdatedAt, deck.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return store.NewStoreError("deck", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrDeckNotFound)
}

// Delete implements store.DeckStore. Cards go with the deck through the
// foreign key cascade.
func (s *PostgresDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return store.NewStoreError("deck", "delete", "delete failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return err
	}

	log.Info("deck deleted", slog.String("deck_id", id.String()))
	return nil
}
