package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Friendship validation errors
var (
	ErrSelfFriendship        = fmt.Errorf("%w: cannot befriend yourself", ErrValidation)
	ErrFriendshipUserIDEmpty = fmt.Errorf("%w: friendship user ID cannot be empty", ErrValidation)
	ErrInvalidFriendStatus   = fmt.Errorf("%w: unknown friendship status", ErrValidation)
)

// FriendshipStatus is the lifecycle state of a friend request.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship links two users. RequesterID sent the request and AddresseeID
// must accept it.
type Friendship struct {
	ID          uuid.UUID        `json:"id"`
	RequesterID uuid.UUID        `json:"requester_id"`
	AddresseeID uuid.UUID        `json:"addressee_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewFriendRequest creates a pending request from requester to addressee.
func NewFriendRequest(requesterID, addresseeID uuid.UUID) (*Friendship, error) {
	now := time.Now().UTC()
	f := &Friendship{
		ID:          uuid.New(),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      FriendshipPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks if the Friendship has valid data.
func (f *Friendship) Validate() error {
	if f.RequesterID == uuid.Nil || f.AddresseeID == uuid.Nil {
		return ErrFriendshipUserIDEmpty
	}
	if f.RequesterID == f.AddresseeID {
		return ErrSelfFriendship
	}
	switch f.Status {
	case FriendshipPending, FriendshipAccepted:
		return nil
	default:
		return ErrInvalidFriendStatus
	}
}

// Involves reports whether userID is either side of the friendship.
func (f *Friendship) Involves(userID uuid.UUID) bool {
	return f.RequesterID == userID || f.AddresseeID == userID
}

// Other returns the user on the opposite side from userID.
func (f *Friendship) Other(userID uuid.UUID) uuid.UUID {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}
