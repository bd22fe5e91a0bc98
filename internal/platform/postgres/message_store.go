package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

// PostgresMessageStore implements store.MessageStore.
type PostgresMessageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMessageStore creates a message store.
func NewPostgresMessageStore(db store.DBTX, logger *slog.Logger) *PostgresMessageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMessageStore{
		db:     db,
		logger: logger.With(slog.String("component", "message_store")),
	}
}

var _ store.MessageStore = (*PostgresMessageStore)(nil)

// WithTx implements store.MessageStore.
func (s *PostgresMessageStore) WithTx(tx *sql.Tx) store.MessageStore {
	return &PostgresMessageStore{db: tx, logger: s.logger}
}

// Create implements store.MessageStore.
func (s *PostgresMessageStore) Create(ctx context.Context, m *domain.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, recipient_id, body, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.SenderID, m.RecipientID, m.Body, timeArg(m.ReadAt), m.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create message",
			slog.String("error", err.Error()),
			slog.String("sender_id", m.SenderID.String()))
		return store.NewStoreError("message", "create", "insert failed", MapError(err))
	}
	return nil
}

// ListConversation implements store.MessageStore.
func (s *PostgresMessageStore) ListConversation(
	ctx context.Context,
	a, b uuid.UUID,
	limit int,
) ([]*domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, recipient_id, body, read_at, created_at FROM (
			SELECT id, sender_id, recipient_id, body, read_at, created_at
			FROM messages
			WHERE (sender_id = $1 AND recipient_id = $2)
				OR (sender_id = $2 AND recipient_id = $1)
			ORDER BY created_at DESC, id DESC
			LIMIT $3
		) recent
		ORDER BY created_at, id
	`, a, b, limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list messages",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("message", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.Message{}
	for rows.Next() {
		var (
			m      domain.Message
			readAt sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &readAt, &m.CreatedAt); err != nil {
			return nil, store.NewStoreError("message", "list", "scan failed", err)
		}
		if readAt.Valid {
			t := readAt.Time
			m.ReadAt = &t
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("message", "list", "iteration failed", err)
	}
	return out, nil
}

// MarkRead implements store.MessageStore.
func (s *PostgresMessageStore) MarkRead(
	ctx context.Context,
	recipientID, senderID uuid.UUID,
	at time.Time,
) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE messages SET read_at = $1
		WHERE recipient_id = $2 AND sender_id = $3 AND read_at IS NULL
	`, at, recipientID, senderID)
	if err != nil {
		return 0, store.NewStoreError("message", "update", "mark read failed", MapError(err))
	}
	return result.RowsAffected()
}
