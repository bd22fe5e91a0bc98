package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockUserStore is a testify mock of store.UserStore.
type MockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*MockUserStore)(nil)

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) UpdateProfile(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) UpdateStreakCache(ctx context.Context, id uuid.UUID, current, longest int) error {
	return m.Called(ctx, id, current, longest).Error(0)
}

func (m *MockUserStore) SetGardenOverride(ctx context.Context, id uuid.UUID, stage *int) error {
	return m.Called(ctx, id, stage).Error(0)
}

func (m *MockUserStore) SetTOTP(ctx context.Context, id uuid.UUID, secret string, enabled bool) error {
	return m.Called(ctx, id, secret, enabled).Error(0)
}

func (m *MockUserStore) ListIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, after, limit)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore {
	return m
}
