package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockStudyStore is a testify mock of store.StudyStore.
type MockStudyStore struct {
	mock.Mock
}

var _ store.StudyStore = (*MockStudyStore)(nil)

func (m *MockStudyStore) AddDay(ctx context.Context, userID uuid.UUID, day string) (bool, error) {
	args := m.Called(ctx, userID, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockStudyStore) ListDays(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if days, ok := args.Get(0).([]string); ok {
		return days, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStudyStore) CreateSession(ctx context.Context, session *domain.StudySession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockStudyStore) WithTx(*sql.Tx) store.StudyStore {
	return m
}
