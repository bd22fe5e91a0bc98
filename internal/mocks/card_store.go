package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockCardStore is a testify mock of store.CardStore.
type MockCardStore struct {
	mock.Mock
}

var _ store.CardStore = (*MockCardStore)(nil)

func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	return m.Called(ctx, card).Error(0)
}

func (m *MockCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	return m.Called(ctx, cards).Error(0)
}

func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return cardResult(m.Called(ctx, id))
}

func (m *MockCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return cardResult(m.Called(ctx, id))
}

func (m *MockCardStore) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	return cardsResult(m.Called(ctx, deckID))
}

func (m *MockCardStore) ListDue(ctx context.Context, q store.DueQuery) ([]*domain.Card, error) {
	return cardsResult(m.Called(ctx, q))
}

func (m *MockCardStore) UpdateContent(ctx context.Context, card *domain.Card) error {
	return m.Called(ctx, card).Error(0)
}

func (m *MockCardStore) UpdateReviewState(ctx context.Context, card *domain.Card) error {
	return m.Called(ctx, card).Error(0)
}

func (m *MockCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCardStore) WithTx(*sql.Tx) store.CardStore {
	return m
}

func cardResult(args mock.Arguments) (*domain.Card, error) {
	if card, ok := args.Get(0).(*domain.Card); ok {
		return card, args.Error(1)
	}
	return nil, args.Error(1)
}

func cardsResult(args mock.Arguments) ([]*domain.Card, error) {
	if cards, ok := args.Get(0).([]*domain.Card); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}
