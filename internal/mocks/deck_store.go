package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockDeckStore is a testify mock of store.DeckStore.
type MockDeckStore struct {
	mock.Mock
}

var _ store.DeckStore = (*MockDeckStore)(nil)

func (m *MockDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	return m.Called(ctx, deck).Error(0)
}

func (m *MockDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	args := m.Called(ctx, id)
	if deck, ok := args.Get(0).(*domain.Deck); ok {
		return deck, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeckStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]store.DeckSummary, error) {
	args := m.Called(ctx, userID)
	if decks, ok := args.Get(0).([]store.DeckSummary); ok {
		return decks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	return m.Called(ctx, deck).Error(0)
}

func (m *MockDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDeckStore) WithTx(*sql.Tx) store.DeckStore {
	return m
}
