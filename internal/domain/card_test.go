package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	userID, deckID := uuid.New(), uuid.New()
	before := time.Now().UTC()

	card, err := NewCard(userID, deckID, " What is Go? ", "A language")
	require.NoError(t, err)

	assert.Equal(t, "What is Go?", card.Front)
	assert.Equal(t, 0, card.Difficulty)
	assert.Equal(t, 0, card.TimesReviewed)
	assert.Equal(t, 0, card.TimesCorrect)
	assert.Nil(t, card.LastReviewed)
	assert.True(t, card.IsDue(before.Add(time.Minute)), "new cards are due immediately")

	_, err = NewCard(uuid.Nil, deckID, "f", "b")
	assert.ErrorIs(t, err, ErrCardUserIDEmpty)
	_, err = NewCard(userID, uuid.Nil, "f", "b")
	assert.ErrorIs(t, err, ErrCardDeckIDEmpty)
	_, err = NewCard(userID, deckID, "  ", "b")
	assert.ErrorIs(t, err, ErrCardFrontEmpty)
	_, err = NewCard(userID, deckID, "f", "")
	assert.ErrorIs(t, err, ErrCardBackEmpty)
	_, err = NewCard(userID, deckID, strings.Repeat("a", MaxCardSideLength+1), "b")
	assert.ErrorIs(t, err, ErrCardSideTooLong)
}

func TestReviewStateValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ReviewState{Difficulty: 5, TimesReviewed: 3, TimesCorrect: 3}.Validate())
	assert.ErrorIs(t, ReviewState{Difficulty: 6}.Validate(), ErrInvalidDifficulty)
	assert.ErrorIs(t, ReviewState{Difficulty: -1}.Validate(), ErrInvalidDifficulty)
	assert.ErrorIs(t, ReviewState{TimesReviewed: 1, TimesCorrect: 2}.Validate(), ErrInvalidCounters)
}

func TestCardUpdateContent(t *testing.T) {
	t.Parallel()

	card, err := NewCard(uuid.New(), uuid.New(), "front", "back")
	require.NoError(t, err)
	card.Difficulty = 3

	later := card.UpdatedAt.Add(time.Hour)
	require.NoError(t, card.UpdateContent("new front", "new back", later))
	assert.Equal(t, "new front", card.Front)
	assert.Equal(t, 3, card.Difficulty)
	assert.Equal(t, later, card.UpdatedAt)

	err = card.UpdateContent("", "x", later)
	assert.ErrorIs(t, err, ErrCardFrontEmpty)
	assert.Equal(t, "new front", card.Front, "failed update leaves card untouched")
}

func TestCardCopyTo(t *testing.T) {
	t.Parallel()

	card, err := NewCard(uuid.New(), uuid.New(), "front", "back")
	require.NoError(t, err)
	reviewed := time.Now().UTC()
	card.Difficulty = 4
	card.TimesReviewed = 9
	card.TimesCorrect = 7
	card.LastReviewed = &reviewed

	friend, deck := uuid.New(), uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cp := card.CopyTo(friend, deck, now)

	assert.NotEqual(t, card.ID, cp.ID)
	assert.Equal(t, friend, cp.UserID)
	assert.Equal(t, deck, cp.DeckID)
	assert.Equal(t, "front", cp.Front)
	assert.Equal(t, NewReviewState(now), cp.ReviewState)
	assert.NoError(t, cp.Validate())
}
