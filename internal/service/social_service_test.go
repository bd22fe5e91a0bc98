package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/events"
	"github.com/greenleaf-study/greenleaf/internal/mocks"
	"github.com/greenleaf-study/greenleaf/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type socialFixture struct {
	svc      SocialService
	users    *mocks.MockUserStore
	friends  *mocks.MockFriendStore
	messages *mocks.MockMessageStore
	events   *recorder
}

func newSocialFixture(t *testing.T) *socialFixture {
	t.Helper()
	f := &socialFixture{
		users:    new(mocks.MockUserStore),
		friends:  new(mocks.MockFriendStore),
		messages: new(mocks.MockMessageStore),
	}
	rec, emitter := newRecorder()
	f.events = rec

	svc, err := NewSocialService(f.users, f.friends, f.messages, emitter, discardLogger())
	require.NoError(t, err)
	f.svc = svc
	return f
}

func friendship(a, b uuid.UUID, status domain.FriendshipStatus) *domain.Friendship {
	now := time.Now().UTC()
	return &domain.Friendship{
		ID: uuid.New(), RequesterID: a, AddresseeID: b, Status: status, CreatedAt: now, UpdatedAt: now,
	}
}

func TestSocialService_SendFriendRequest(t *testing.T) {
	t.Parallel()

	t.Run("creates a pending request", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		me, them := testUser(domain.RoleUser), testUser(domain.RoleUser)
		f.users.On("GetByEmail", mock.Anything, them.Email).Return(them, nil)
		f.friends.On("Create", mock.Anything, mock.AnythingOfType("*domain.Friendship")).Return(nil)

		req, err := f.svc.SendFriendRequest(context.Background(), me.ID, them.Email)
		require.NoError(t, err)
		assert.Equal(t, me.ID, req.RequesterID)
		assert.Equal(t, them.ID, req.AddresseeID)
		assert.Equal(t, domain.FriendshipPending, req.Status)
	})

	t.Run("rejects yourself", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		me := testUser(domain.RoleUser)
		f.users.On("GetByEmail", mock.Anything, me.Email).Return(me, nil)

		_, err := f.svc.SendFriendRequest(context.Background(), me.ID, me.Email)
		assert.ErrorIs(t, err, domain.ErrSelfFriendship)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("duplicate request", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		me, them := testUser(domain.RoleUser), testUser(domain.RoleUser)
		f.users.On("GetByEmail", mock.Anything, them.Email).Return(them, nil)
		f.friends.On("Create", mock.Anything, mock.Anything).
			Return(store.NewStoreError("friendship", "create", "insert failed", store.ErrDuplicate))

		_, err := f.svc.SendFriendRequest(context.Background(), me.ID, them.Email)
		assert.ErrorIs(t, err, store.ErrFriendshipExists)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		f.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, store.ErrUserNotFound)

		_, err := f.svc.SendFriendRequest(context.Background(), uuid.New(), "ghost@example.com")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSocialService_AcceptFriendRequest(t *testing.T) {
	t.Parallel()

	requester, addressee := uuid.New(), uuid.New()

	t.Run("addressee accepts", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		req := friendship(requester, addressee, domain.FriendshipPending)
		f.friends.On("GetByID", mock.Anything, req.ID).Return(req, nil)
		f.friends.On("UpdateStatus", mock.Anything, req.ID, domain.FriendshipAccepted, mock.AnythingOfType("time.Time")).
			Return(nil)

		got, err := f.svc.AcceptFriendRequest(context.Background(), addressee, req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.FriendshipAccepted, got.Status)
		assert.Equal(t, []string{events.TypeFriendAccepted}, f.events.types())
	})

	t.Run("requester cannot accept their own request", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		req := friendship(requester, addressee, domain.FriendshipPending)
		f.friends.On("GetByID", mock.Anything, req.ID).Return(req, nil)

		_, err := f.svc.AcceptFriendRequest(context.Background(), requester, req.ID)
		assert.ErrorIs(t, err, ErrNotOwned)
	})

	t.Run("already accepted", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		req := friendship(requester, addressee, domain.FriendshipAccepted)
		f.friends.On("GetByID", mock.Anything, req.ID).Return(req, nil)

		_, err := f.svc.AcceptFriendRequest(context.Background(), addressee, req.ID)
		assert.ErrorIs(t, err, ErrRequestNotPending)
		f.friends.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSocialService_ListFriends(t *testing.T) {
	t.Parallel()

	f := newSocialFixture(t)
	me, a, b := testUser(domain.RoleUser), testUser(domain.RoleUser), testUser(domain.RoleUser)
	a.CurrentStreak = 12

	f.friends.On("ListAccepted", mock.Anything, me.ID).Return([]*domain.Friendship{
		friendship(me.ID, a.ID, domain.FriendshipAccepted),
		friendship(b.ID, me.ID, domain.FriendshipAccepted),
	}, nil)
	f.users.On("GetByID", mock.Anything, a.ID).Return(a, nil)
	f.users.On("GetByID", mock.Anything, b.ID).Return(nil, store.ErrUserNotFound)

	friends, err := f.svc.ListFriends(context.Background(), me.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, a.ID, friends[0].UserID)
	assert.Equal(t, 12, friends[0].CurrentStreak)
}

func TestSocialService_Messages(t *testing.T) {
	t.Parallel()

	t.Run("friends can message", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		me, them := uuid.New(), uuid.New()
		f.friends.On("GetBetween", mock.Anything, me, them).Return(friendship(me, them, domain.FriendshipAccepted), nil)
		f.messages.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)

		msg, err := f.svc.SendMessage(context.Background(), me, them, "  ¿estudiamos hoy?  ")
		require.NoError(t, err)
		assert.Equal(t, "¿estudiamos hoy?", msg.Body)
	})

	t.Run("strangers cannot", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		me, them := uuid.New(), uuid.New()
		f.friends.On("GetBetween", mock.Anything, me, them).Return(nil, store.ErrFriendshipNotFound)

		_, err := f.svc.SendMessage(context.Background(), me, them, "hola")
		assert.ErrorIs(t, err, ErrNotFriends)
		f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		_, err := f.svc.SendMessage(context.Background(), uuid.New(), uuid.New(), "   ")
		assert.ErrorIs(t, err, domain.ErrMessageBodyEmpty)
	})

	t.Run("conversation marks incoming messages read", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		me, them := uuid.New(), uuid.New()
		incoming := &domain.Message{ID: uuid.New(), SenderID: them, RecipientID: me, Body: "hi"}
		outgoing := &domain.Message{ID: uuid.New(), SenderID: me, RecipientID: them, Body: "hello"}

		f.friends.On("GetBetween", mock.Anything, me, them).Return(friendship(me, them, domain.FriendshipAccepted), nil)
		f.messages.On("ListConversation", mock.Anything, me, them, DefaultConversationLimit).
			Return([]*domain.Message{incoming, outgoing}, nil)
		f.messages.On("MarkRead", mock.Anything, me, them, mock.AnythingOfType("time.Time")).Return(int64(1), nil)

		msgs, err := f.svc.Conversation(context.Background(), me, them, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.NotNil(t, msgs[0].ReadAt)
		assert.Nil(t, msgs[1].ReadAt)
	})

	t.Run("conversation limit is capped", func(t *testing.T) {
		t.Parallel()
		f := newSocialFixture(t)
		me, them := uuid.New(), uuid.New()
		f.friends.On("GetBetween", mock.Anything, me, them).Return(friendship(them, me, domain.FriendshipAccepted), nil)
		f.messages.On("ListConversation", mock.Anything, me, them, MaxConversationLimit).Return([]*domain.Message{}, nil)
		f.messages.On("MarkRead", mock.Anything, me, them, mock.Anything).Return(int64(0), nil)

		_, err := f.svc.Conversation(context.Background(), me, them, 5000)
		require.NoError(t, err)
		f.messages.AssertExpectations(t)
	})
}

func TestSocialService_RemoveFriend(t *testing.T) {
	t.Parallel()

	f := newSocialFixture(t)
	me, them := uuid.New(), uuid.New()
	fs := friendship(them, me, domain.FriendshipAccepted)
	f.friends.On("GetBetween", mock.Anything, me, them).Return(fs, nil)
	f.friends.On("Delete", mock.Anything, fs.ID).Return(nil)

	require.NoError(t, f.svc.RemoveFriend(context.Background(), me, them))
	f.friends.AssertExpectations(t)
}
