package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/events"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser(role domain.Role) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:             uuid.New(),
		Email:          uuid.NewString()[:8] + "@example.com",
		DisplayName:    "Tester",
		HashedPassword: "$2a$10$hash",
		Timezone:       "UTC",
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func testDeck(t *testing.T, userID uuid.UUID) *domain.Deck {
	t.Helper()
	deck, err := domain.NewDeck(userID, "Spanish", "common words")
	require.NoError(t, err)
	return deck
}

// recorder collects emitted events.
type recorder struct {
	events []*events.Event
}

func newRecorder() (*recorder, *events.InMemoryEventEmitter) {
	r := &recorder{}
	emitter := events.NewInMemoryEventEmitter(discardLogger())
	emitter.RegisterHandler(events.HandlerFunc(func(_ context.Context, e *events.Event) error {
		r.events = append(r.events, e)
		return nil
	}))
	return r, emitter
}

func (r *recorder) types() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
