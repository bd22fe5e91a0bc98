package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/api/shared"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/importer"
	"github.com/greenleaf-study/greenleaf/internal/service"
	"github.com/greenleaf-study/greenleaf/internal/service/auth"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockUserService struct{ mock.Mock }

func (m *mockUserService) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	args := m.Called(ctx, email, password, displayName)
	return userResult(args)
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password, totpCode string) (*domain.User, error) {
	args := m.Called(ctx, email, password, totpCode)
	return userResult(args)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	return userResult(args)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, update service.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, userID, update)
	return userResult(args)
}

func (m *mockUserService) SetupTOTP(ctx context.Context, userID uuid.UUID) (*auth.TOTPKey, error) {
	args := m.Called(ctx, userID)
	key, _ := args.Get(0).(*auth.TOTPKey)
	return key, args.Error(1)
}

func (m *mockUserService) EnableTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}

func (m *mockUserService) DisableTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}

func userResult(args mock.Arguments) (*domain.User, error) {
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

type mockDeckService struct{ mock.Mock }

func (m *mockDeckService) CreateDeck(ctx context.Context, userID uuid.UUID, name, description string) (*domain.Deck, error) {
	args := m.Called(ctx, userID, name, description)
	return deckResult(args)
}

func (m *mockDeckService) ListDecks(ctx context.Context, userID uuid.UUID) ([]store.DeckSummary, error) {
	args := m.Called(ctx, userID)
	decks, _ := args.Get(0).([]store.DeckSummary)
	return decks, args.Error(1)
}

func (m *mockDeckService) GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error) {
	args := m.Called(ctx, userID, deckID)
	return deckResult(args)
}

func (m *mockDeckService) UpdateDeck(ctx context.Context, userID, deckID uuid.UUID, name, description string) (*domain.Deck, error) {
	args := m.Called(ctx, userID, deckID, name, description)
	return deckResult(args)
}

func (m *mockDeckService) DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error {
	return m.Called(ctx, userID, deckID).Error(0)
}

func (m *mockDeckService) ImportCards(ctx context.Context, userID, deckID uuid.UUID, parsed *importer.Result) (*service.ImportSummary, error) {
	args := m.Called(ctx, userID, deckID, parsed)
	summary, _ := args.Get(0).(*service.ImportSummary)
	return summary, args.Error(1)
}

func (m *mockDeckService) ShareDeck(ctx context.Context, userID, deckID, friendID uuid.UUID) (*domain.Deck, error) {
	args := m.Called(ctx, userID, deckID, friendID)
	return deckResult(args)
}

func deckResult(args mock.Arguments) (*domain.Deck, error) {
	deck, _ := args.Get(0).(*domain.Deck)
	return deck, args.Error(1)
}

type mockCardService struct{ mock.Mock }

func (m *mockCardService) CreateCard(ctx context.Context, userID, deckID uuid.UUID, front, back string) (*domain.Card, error) {
	args := m.Called(ctx, userID, deckID, front, back)
	return cardResult(args)
}

func (m *mockCardService) ListCards(ctx context.Context, userID, deckID uuid.UUID) ([]*domain.Card, error) {
	args := m.Called(ctx, userID, deckID)
	return cardsResult(args)
}

func (m *mockCardService) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error) {
	args := m.Called(ctx, userID, cardID)
	return cardResult(args)
}

func (m *mockCardService) UpdateCard(ctx context.Context, userID, cardID uuid.UUID, front, back string) (*domain.Card, error) {
	args := m.Called(ctx, userID, cardID, front, back)
	return cardResult(args)
}

func (m *mockCardService) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	return m.Called(ctx, userID, cardID).Error(0)
}

type mockCardReviewService struct{ mock.Mock }

func (m *mockCardReviewService) ListDue(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, limit int) ([]*domain.Card, error) {
	args := m.Called(ctx, userID, deckID, limit)
	return cardsResult(args)
}

func (m *mockCardReviewService) SubmitReview(ctx context.Context, userID, cardID uuid.UUID, correct bool) (*domain.Card, error) {
	args := m.Called(ctx, userID, cardID, correct)
	return cardResult(args)
}

func cardResult(args mock.Arguments) (*domain.Card, error) {
	card, _ := args.Get(0).(*domain.Card)
	return card, args.Error(1)
}

func cardsResult(args mock.Arguments) ([]*domain.Card, error) {
	cards, _ := args.Get(0).([]*domain.Card)
	return cards, args.Error(1)
}

type mockStudyService struct{ mock.Mock }

func (m *mockStudyService) RecordSession(ctx context.Context, userID uuid.UUID, in service.SessionInput) (*service.StreakSummary, error) {
	args := m.Called(ctx, userID, in)
	return summaryResult(args)
}

func (m *mockStudyService) GetStreak(ctx context.Context, userID uuid.UUID) (*service.StreakSummary, error) {
	args := m.Called(ctx, userID)
	return summaryResult(args)
}

func (m *mockStudyService) SetGardenOverride(ctx context.Context, userID uuid.UUID, stage *int) (*service.StreakSummary, error) {
	args := m.Called(ctx, userID, stage)
	return summaryResult(args)
}

func (m *mockStudyService) RefreshStreakCache(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockStudyService) RefreshAllStreakCaches(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func summaryResult(args mock.Arguments) (*service.StreakSummary, error) {
	summary, _ := args.Get(0).(*service.StreakSummary)
	return summary, args.Error(1)
}

type mockSocialService struct{ mock.Mock }

func (m *mockSocialService) SendFriendRequest(ctx context.Context, userID uuid.UUID, email string) (*domain.Friendship, error) {
	args := m.Called(ctx, userID, email)
	f, _ := args.Get(0).(*domain.Friendship)
	return f, args.Error(1)
}

func (m *mockSocialService) AcceptFriendRequest(ctx context.Context, userID, requestID uuid.UUID) (*domain.Friendship, error) {
	args := m.Called(ctx, userID, requestID)
	f, _ := args.Get(0).(*domain.Friendship)
	return f, args.Error(1)
}

func (m *mockSocialService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	return m.Called(ctx, userID, friendID).Error(0)
}

func (m *mockSocialService) ListFriends(ctx context.Context, userID uuid.UUID) ([]service.Friend, error) {
	args := m.Called(ctx, userID)
	friends, _ := args.Get(0).([]service.Friend)
	return friends, args.Error(1)
}

func (m *mockSocialService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]service.FriendRequest, error) {
	args := m.Called(ctx, userID)
	requests, _ := args.Get(0).([]service.FriendRequest)
	return requests, args.Error(1)
}

func (m *mockSocialService) SendMessage(ctx context.Context, userID, recipientID uuid.UUID, body string) (*domain.Message, error) {
	args := m.Called(ctx, userID, recipientID, body)
	msg, _ := args.Get(0).(*domain.Message)
	return msg, args.Error(1)
}

func (m *mockSocialService) Conversation(ctx context.Context, userID, otherID uuid.UUID, limit int) ([]*domain.Message, error) {
	args := m.Called(ctx, userID, otherID, limit)
	msgs, _ := args.Get(0).([]*domain.Message)
	return msgs, args.Error(1)
}

var (
	_ service.UserService   = (*mockUserService)(nil)
	_ service.DeckService   = (*mockDeckService)(nil)
	_ service.CardService   = (*mockCardService)(nil)
	_ service.StudyService  = (*mockStudyService)(nil)
	_ service.SocialService = (*mockSocialService)(nil)
)

// newTestRequest builds a request authenticated as userID (uuid.Nil for
// none) with chi URL params set from the key/value pairs in params.
func newTestRequest(t *testing.T, method, target string, body any, userID uuid.UUID, params ...string) *http.Request {
	t.Helper()

	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if userID != uuid.Nil {
		ctx = shared.WithUserID(ctx, userID)
	}
	if len(params) > 0 {
		require.Zero(t, len(params)%2, "params must be key/value pairs")
		rctx := chi.NewRouteContext()
		for i := 0; i < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}
