package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/events"
	"github.com/greenleaf-study/greenleaf/internal/importer"
	"github.com/greenleaf-study/greenleaf/internal/mocks"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type deckFixture struct {
	svc     DeckService
	decks   *mocks.MockDeckStore
	cards   *mocks.MockCardStore
	friends *mocks.MockFriendStore
	events  *recorder
}

func newDeckFixture(t *testing.T) *deckFixture {
	t.Helper()
	f := &deckFixture{
		decks:   new(mocks.MockDeckStore),
		cards:   new(mocks.MockCardStore),
		friends: new(mocks.MockFriendStore),
	}
	rec, emitter := newRecorder()
	f.events = rec

	svc, err := NewDeckService(mocks.NewTxDB(t), f.decks, f.cards, f.friends, emitter, discardLogger())
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNewDeckService_RequiresStores(t *testing.T) {
	t.Parallel()

	_, err := NewDeckService(nil, new(mocks.MockDeckStore), new(mocks.MockCardStore), new(mocks.MockFriendStore), nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewDeckService(mocks.NewTxDB(t), new(mocks.MockDeckStore), nil, new(mocks.MockFriendStore), nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeckService_CreateDeck(t *testing.T) {
	t.Parallel()

	f := newDeckFixture(t)
	userID := uuid.New()
	f.decks.On("Create", mock.Anything, mock.AnythingOfType("*domain.Deck")).Return(nil)

	deck, err := f.svc.CreateDeck(context.Background(), userID, "  Verbs ", "")
	require.NoError(t, err)
	assert.Equal(t, "Verbs", deck.Name)
	assert.Equal(t, userID, deck.UserID)

	_, err = f.svc.CreateDeck(context.Background(), userID, "   ", "")
	assert.ErrorIs(t, err, domain.ErrDeckNameEmpty)
	f.decks.AssertNumberOfCalls(t, "Create", 1)
}

func TestDeckService_Ownership(t *testing.T) {
	t.Parallel()

	f := newDeckFixture(t)
	deck := testDeck(t, uuid.New())
	stranger := uuid.New()
	f.decks.On("GetByID", mock.Anything, deck.ID).Return(deck, nil)

	_, err := f.svc.GetDeck(context.Background(), stranger, deck.ID)
	assert.ErrorIs(t, err, ErrNotOwned)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.UpdateDeck(context.Background(), stranger, deck.ID, "Mine now", "")
	assert.ErrorIs(t, err, ErrNotOwned)

	err = f.svc.DeleteDeck(context.Background(), stranger, deck.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	f.decks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.decks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeckService_MissingDeck(t *testing.T) {
	t.Parallel()

	f := newDeckFixture(t)
	deckID := uuid.New()
	f.decks.On("GetByID", mock.Anything, deckID).Return(nil, store.ErrDeckNotFound)

	_, err := f.svc.GetDeck(context.Background(), uuid.New(), deckID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeckService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	f := newDeckFixture(t)
	deck := testDeck(t, uuid.New())
	f.decks.On("GetByID", mock.Anything, deck.ID).Return(deck, nil)
	f.decks.On("Update", mock.Anything, deck).Return(nil)
	f.decks.On("Delete", mock.Anything, deck.ID).Return(nil)

	updated, err := f.svc.UpdateDeck(context.Background(), deck.UserID, deck.ID, "Spanish II", "harder")
	require.NoError(t, err)
	assert.Equal(t, "Spanish II", updated.Name)
	assert.Equal(t, "harder", updated.Description)

	require.NoError(t, f.svc.DeleteDeck(context.Background(), deck.UserID, deck.ID))
	f.decks.AssertExpectations(t)
}

func TestDeckService_ImportCards(t *testing.T) {
	t.Parallel()

	f := newDeckFixture(t)
	deck := testDeck(t, uuid.New())
	f.decks.On("GetByID", mock.Anything, deck.ID).Return(deck, nil)

	var saved []*domain.Card
	f.cards.On("CreateMultiple", mock.Anything, mock.AnythingOfType("[]*domain.Card")).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]*domain.Card) }).
		Return(nil)

	parsed := &importer.Result{
		Rows: []importer.Row{
			{Line: 2, Front: "uno", Back: "one"},
			{Line: 3, Front: "dos", Back: strings.Repeat("x", domain.MaxCardSideLength+1)},
			{Line: 4, Front: "tres", Back: "three"},
		},
		Skipped: 1,
		Errors:  []string{"line 5: front and back are both required"},
	}

	summary, err := f.svc.ImportCards(context.Background(), deck.UserID, deck.ID, parsed)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, []string{
		"line 5: front and back are both required",
		"line 3: card side must be at most 4000 characters",
	}, summary.Errors)

	require.Len(t, saved, 2)
	for _, c := range saved {
		assert.Equal(t, deck.ID, c.DeckID)
		assert.Equal(t, deck.UserID, c.UserID)
		assert.Equal(t, 0, c.Difficulty)
	}
}

func TestDeckService_ImportCardsNothingValid(t *testing.T) {
	t.Parallel()

	f := newDeckFixture(t)
	deck := testDeck(t, uuid.New())
	f.decks.On("GetByID", mock.Anything, deck.ID).Return(deck, nil)

	summary, err := f.svc.ImportCards(context.Background(), deck.UserID, deck.ID, &importer.Result{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	f.cards.AssertNotCalled(t, "CreateMultiple", mock.Anything, mock.Anything)
}

func TestDeckService_ShareDeck(t *testing.T) {
	t.Parallel()

	t.Run("copies cards with fresh review state", func(t *testing.T) {
		t.Parallel()
		f := newDeckFixture(t)
		deck := testDeck(t, uuid.New())
		friendID := uuid.New()

		studied, err := domain.NewCard(deck.UserID, deck.ID, "gato", "cat")
		require.NoError(t, err)
		studied.Difficulty = 4
		studied.TimesReviewed = 9
		studied.TimesCorrect = 8

		f.decks.On("GetByID", mock.Anything, deck.ID).Return(deck, nil)
		f.friends.On("GetBetween", mock.Anything, deck.UserID, friendID).Return(&domain.Friendship{
			ID: uuid.New(), RequesterID: deck.UserID, AddresseeID: friendID, Status: domain.FriendshipAccepted,
		}, nil)
		f.cards.On("ListByDeck", mock.Anything, deck.ID).Return([]*domain.Card{studied}, nil)
		f.decks.On("Create", mock.Anything, mock.AnythingOfType("*domain.Deck")).Return(nil)

		var copies []*domain.Card
		f.cards.On("CreateMultiple", mock.Anything, mock.AnythingOfType("[]*domain.Card")).
			Run(func(args mock.Arguments) { copies = args.Get(1).([]*domain.Card) }).
			Return(nil)

		copyDeck, err := f.svc.ShareDeck(context.Background(), deck.UserID, deck.ID, friendID)
		require.NoError(t, err)

		assert.Equal(t, friendID, copyDeck.UserID)
		assert.Equal(t, deck.Name, copyDeck.Name)
		assert.NotEqual(t, deck.ID, copyDeck.ID)

		require.Len(t, copies, 1)
		assert.Equal(t, copyDeck.ID, copies[0].DeckID)
		assert.Equal(t, friendID, copies[0].UserID)
		assert.Equal(t, 0, copies[0].Difficulty)
		assert.Equal(t, 0, copies[0].TimesReviewed)
		assert.NotEqual(t, studied.ID, copies[0].ID)

		assert.Equal(t, []string{events.TypeDeckShared}, f.events.types())
		var payload events.DeckShared
		require.NoError(t, f.events.events[0].UnmarshalPayload(&payload))
		assert.Equal(t, 1, payload.CardCount)
		assert.Equal(t, friendID, payload.RecipientID)
	})

	t.Run("requires an accepted friendship", func(t *testing.T) {
		t.Parallel()
		f := newDeckFixture(t)
		deck := testDeck(t, uuid.New())
		pendingID, strangerID := uuid.New(), uuid.New()

		f.decks.On("GetByID", mock.Anything, deck.ID).Return(deck, nil)
		f.friends.On("GetBetween", mock.Anything, deck.UserID, pendingID).Return(&domain.Friendship{
			ID: uuid.New(), RequesterID: deck.UserID, AddresseeID: pendingID, Status: domain.FriendshipPending,
		}, nil)
		f.friends.On("GetBetween", mock.Anything, deck.UserID, strangerID).Return(nil, store.ErrFriendshipNotFound)

		_, err := f.svc.ShareDeck(context.Background(), deck.UserID, deck.ID, pendingID)
		assert.ErrorIs(t, err, ErrNotFriends)

		_, err = f.svc.ShareDeck(context.Background(), deck.UserID, deck.ID, strangerID)
		assert.ErrorIs(t, err, ErrNotFriends)

		f.decks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.events.events)
	})
}
