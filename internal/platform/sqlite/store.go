package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// GuestUserID owns all guest data.
var GuestUserID = uuid.MustParse("00000000-0000-4000-8000-000000000001")

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store is the guest-mode persistence layer.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path
	}
	dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open guest database: %w", err)
	}
	// One connection: SQLite has a single writer and ":memory:" is
	// per-connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to guest database: %w", err)
	}

	s := &Store{db: db, logger: logger.With(slog.String("component", "guest_store"))}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load guest migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db.DB, sub)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate guest database: %w", err)
	}
	for _, r := range results {
		s.logger.Debug("applied guest migration",
			slog.String("source", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type deckRow struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   int64     `db:"created_at"`
	UpdatedAt   int64     `db:"updated_at"`
	CardCount   int       `db:"card_count"`
	DueCount    int       `db:"due_count"`
}

func (r deckRow) summary() store.DeckSummary {
	return store.DeckSummary{
		Deck: domain.Deck{
			ID:          r.ID,
			UserID:      GuestUserID,
			Name:        r.Name,
			Description: r.Description,
			CreatedAt:   fromMillis(r.CreatedAt),
			UpdatedAt:   fromMillis(r.UpdatedAt),
		},
		CardCount: r.CardCount,
		DueCount:  r.DueCount,
	}
}

type cardRow struct {
	ID            uuid.UUID     `db:"id"`
	DeckID        uuid.UUID     `db:"deck_id"`
	Front         string        `db:"front"`
	Back          string        `db:"back"`
	Difficulty    int           `db:"difficulty"`
	TimesReviewed int           `db:"times_reviewed"`
	TimesCorrect  int           `db:"times_correct"`
	LastReviewed  sql.NullInt64 `db:"last_reviewed"`
	NextReview    int64         `db:"next_review"`
	CreatedAt     int64         `db:"created_at"`
	UpdatedAt     int64         `db:"updated_at"`
}

func newCardRow(c *domain.Card) cardRow {
	row := cardRow{
		ID:            c.ID,
		DeckID:        c.DeckID,
		Front:         c.Front,
		Back:          c.Back,
		Difficulty:    c.Difficulty,
		TimesReviewed: c.TimesReviewed,
		TimesCorrect:  c.TimesCorrect,
		NextReview:    c.NextReview.UnixMilli(),
		CreatedAt:     c.CreatedAt.UnixMilli(),
		UpdatedAt:     c.UpdatedAt.UnixMilli(),
	}
	if c.LastReviewed != nil {
		row.LastReviewed = sql.NullInt64{Int64: c.LastReviewed.UnixMilli(), Valid: true}
	}
	return row
}

func (r cardRow) card() *domain.Card {
	c := &domain.Card{
		ID:     r.ID,
		DeckID: r.DeckID,
		UserID: GuestUserID,
		Front:  r.Front,
		Back:   r.Back,
		ReviewState: domain.ReviewState{
			Difficulty:    r.Difficulty,
			TimesReviewed: r.TimesReviewed,
			TimesCorrect:  r.TimesCorrect,
			NextReview:    fromMillis(r.NextReview),
		},
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
	if r.LastReviewed.Valid {
		t := fromMillis(r.LastReviewed.Int64)
		c.LastReviewed = &t
	}
	return c
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// CreateDeck stores a new deck. Deck names are unique in guest mode so the
// CLI can address decks by name.
func (s *Store) CreateDeck(ctx context.Context, name, description string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(GuestUserID, name, description)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decks (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, deck.ID, deck.Name, deck.Description, deck.CreatedAt.UnixMilli(), deck.UpdatedAt.UnixMilli())
	if err != nil {
		if isConstraintError(err) {
			return nil, fmt.Errorf("%w: deck %q", store.ErrDuplicate, deck.Name)
		}
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	s.logger.Debug("deck created", slog.String("deck_id", deck.ID.String()))
	return deck, nil
}

// ListDecks returns every deck with card and due counts as of now.
func (s *Store) ListDecks(ctx context.Context, now time.Time) ([]store.DeckSummary, error) {
	var rows []deckRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT d.id, d.name, d.description, d.created_at, d.updated_at,
			COUNT(c.id) AS card_count,
			COALESCE(SUM(CASE WHEN c.next_review <= ? THEN 1 ELSE 0 END), 0) AS due_count
		FROM decks d
		LEFT JOIN cards c ON c.deck_id = d.id
		GROUP BY d.id
		ORDER BY d.name
	`, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}

	out := make([]store.DeckSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.summary())
	}
	return out, nil
}

// DeckByName finds a deck by exact name.
func (s *Store) DeckByName(ctx context.Context, name string) (*domain.Deck, error) {
	var row deckRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, description, created_at, updated_at FROM decks WHERE name = ?
	`, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	deck := row.summary().Deck
	return &deck, nil
}

const insertCard = `
	INSERT INTO cards (id, deck_id, front, back, difficulty, times_reviewed, times_correct,
		last_reviewed, next_review, created_at, updated_at)
	VALUES (:id, :deck_id, :front, :back, :difficulty, :times_reviewed, :times_correct,
		:last_reviewed, :next_review, :created_at, :updated_at)
`

// AddCard creates a card in deckID.
func (s *Store) AddCard(ctx context.Context, deckID uuid.UUID, front, back string) (*domain.Card, error) {
	card, err := domain.NewCard(GuestUserID, deckID, front, back)
	if err != nil {
		return nil, err
	}
	if err := s.AddCards(ctx, []*domain.Card{card}); err != nil {
		return nil, err
	}
	return card, nil
}

// AddCards inserts cards in one transaction.
func (s *Store) AddCards(ctx context.Context, cards []*domain.Card) error {
	if len(cards) == 0 {
		return nil
	}
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range cards {
		if _, err := tx.NamedExecContext(ctx, insertCard, newCardRow(c)); err != nil {
			if isConstraintError(err) {
				return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
			}
			return fmt.Errorf("failed to insert card: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrTransactionFailed, err)
	}
	return nil
}

// DueCards returns up to limit cards in deckID due at now, soonest first.
func (s *Store) DueCards(ctx context.Context, deckID uuid.UUID, now time.Time, limit int) ([]*domain.Card, error) {
	var rows []cardRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, deck_id, front, back, difficulty, times_reviewed, times_correct,
			last_reviewed, next_review, created_at, updated_at
		FROM cards
		WHERE deck_id = ? AND next_review <= ?
		ORDER BY next_review, id
		LIMIT ?
	`, deckID, now.UnixMilli(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due cards: %w", err)
	}

	cards := make([]*domain.Card, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, r.card())
	}
	return cards, nil
}

// SaveReview persists the review state of card.
func (s *Store) SaveReview(ctx context.Context, card *domain.Card) error {
	if err := card.ReviewState.Validate(); err != nil {
		return err
	}

	row := newCardRow(card)
	result, err := s.db.NamedExecContext(ctx, `
		UPDATE cards SET difficulty = :difficulty, times_reviewed = :times_reviewed,
			times_correct = :times_correct, last_reviewed = :last_reviewed,
			next_review = :next_review, updated_at = :updated_at
		WHERE id = :id
	`, row)
	if err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrCardNotFound
	}
	return nil
}

// AddStudyDay records day and reports whether it was new.
func (s *Store) AddStudyDay(ctx context.Context, day string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO study_days (day) VALUES (?) ON CONFLICT DO NOTHING`, day)
	if err != nil {
		return false, fmt.Errorf("failed to record study day: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// StudyDays returns every recorded day key.
func (s *Store) StudyDays(ctx context.Context) ([]string, error) {
	days := []string{}
	if err := s.db.SelectContext(ctx, &days, `SELECT day FROM study_days ORDER BY day`); err != nil {
		return nil, fmt.Errorf("failed to list study days: %w", err)
	}
	return days, nil
}

func isConstraintError(err error) bool {
	return strings.Contains(err.Error(), "constraint failed")
}
