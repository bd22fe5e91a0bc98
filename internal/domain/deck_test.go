package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck(uuid.New(), " Spanish ", "verbs")
	require.NoError(t, err)
	assert.Equal(t, "Spanish", deck.Name)

	_, err = NewDeck(uuid.Nil, "x", "")
	assert.ErrorIs(t, err, ErrDeckUserIDEmpty)
	_, err = NewDeck(uuid.New(), "", "")
	assert.ErrorIs(t, err, ErrDeckNameEmpty)
	_, err = NewDeck(uuid.New(), strings.Repeat("n", MaxDeckNameLength+1), "")
	assert.ErrorIs(t, err, ErrDeckNameTooLong)
	_, err = NewDeck(uuid.New(), "n", strings.Repeat("d", MaxDeckDescriptionLength+1))
	assert.ErrorIs(t, err, ErrDeckDescriptionLong)
}

func TestDeckRename(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck(uuid.New(), "old", "")
	require.NoError(t, err)

	now := time.Now().UTC().Add(time.Minute)
	require.NoError(t, deck.Rename("new", "desc", now))
	assert.Equal(t, "new", deck.Name)
	assert.Equal(t, "desc", deck.Description)

	assert.ErrorIs(t, deck.Rename(" ", "", now), ErrDeckNameEmpty)
	assert.Equal(t, "new", deck.Name)
}
