package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockFriendStore is a testify mock of store.FriendStore.
type MockFriendStore struct {
	mock.Mock
}

var _ store.FriendStore = (*MockFriendStore)(nil)

func (m *MockFriendStore) Create(ctx context.Context, f *domain.Friendship) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFriendStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error) {
	return friendshipResult(m.Called(ctx, id))
}

func (m *MockFriendStore) GetBetween(ctx context.Context, a, b uuid.UUID) (*domain.Friendship, error) {
	return friendshipResult(m.Called(ctx, a, b))
}

func (m *MockFriendStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.FriendshipStatus,
	at time.Time,
) error {
	return m.Called(ctx, id, status, at).Error(0)
}

func (m *MockFriendStore) ListAccepted(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error) {
	return friendshipsResult(m.Called(ctx, userID))
}

func (m *MockFriendStore) ListIncoming(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error) {
	return friendshipsResult(m.Called(ctx, userID))
}

func (m *MockFriendStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFriendStore) WithTx(*sql.Tx) store.FriendStore {
	return m
}

func friendshipResult(args mock.Arguments) (*domain.Friendship, error) {
	if f, ok := args.Get(0).(*domain.Friendship); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func friendshipsResult(args mock.Arguments) ([]*domain.Friendship, error) {
	if fs, ok := args.Get(0).([]*domain.Friendship); ok {
		return fs, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMessageStore is a testify mock of store.MessageStore.
type MockMessageStore struct {
	mock.Mock
}

var _ store.MessageStore = (*MockMessageStore)(nil)

func (m *MockMessageStore) Create(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageStore) ListConversation(
	ctx context.Context,
	a, b uuid.UUID,
	limit int,
) ([]*domain.Message, error) {
	args := m.Called(ctx, a, b, limit)
	if msgs, ok := args.Get(0).([]*domain.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageStore) MarkRead(ctx context.Context, recipientID, senderID uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, recipientID, senderID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageStore) WithTx(*sql.Tx) store.MessageStore {
	return m
}
