package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=12,max=72"`
	DisplayName string `json:"display_name" validate:"max=64"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=1"`
	TOTPCode string `json:"totp_code" validate:"omitempty,len=6,numeric"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    string    `json:"expires_at"`
}

// RefreshTokenRequest is the body of POST /api/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TOTPCodeRequest carries a two-factor code.
type TOTPCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// UpdateProfileRequest is the body of PUT /api/me. Absent fields are left
// unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=64"`
	Timezone    *string `json:"timezone"     validate:"omitempty,timezone"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	DisplayName         string    `json:"display_name"`
	Timezone            string    `json:"timezone"`
	Role                string    `json:"role"`
	TOTPEnabled         bool      `json:"totp_enabled"`
	GardenStageOverride *int      `json:"garden_stage_override,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                  u.ID,
		Email:               u.Email,
		DisplayName:         u.DisplayName,
		Timezone:            u.Timezone,
		Role:                string(u.Role),
		TOTPEnabled:         u.TOTPEnabled,
		GardenStageOverride: u.GardenStageOverride,
		CreatedAt:           u.CreatedAt,
	}
}

// DeckRequest is the body of deck create and update.
type DeckRequest struct {
	Name        string `json:"name"        validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

// ShareDeckRequest is the body of POST /api/decks/{id}/share.
type ShareDeckRequest struct {
	FriendID uuid.UUID `json:"friend_id" validate:"required"`
}

// CardRequest is the body of card create and update.
type CardRequest struct {
	Front string `json:"front" validate:"required,max=4000"`
	Back  string `json:"back"  validate:"required,max=4000"`
}

// ReviewRequest is the body of POST /api/cards/{id}/review. A pointer
// distinguishes false from a missing field.
type ReviewRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

// StudySessionRequest is the body of POST /api/study/sessions.
type StudySessionRequest struct {
	DeckID       *uuid.UUID `json:"deck_id"`
	CardsStudied int        `json:"cards_studied" validate:"gte=0"`
	CardsCorrect int        `json:"cards_correct" validate:"gte=0,ltefield=CardsStudied"`
}

// GardenOverrideRequest is the body of PUT /api/streak/garden-override.
// A null stage clears the override.
type GardenOverrideRequest struct {
	Stage *int `json:"stage" validate:"omitempty,gte=0,lte=10"`
}

// FriendRequestRequest is the body of POST /api/friends/requests.
type FriendRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendMessageRequest is the body of POST /api/messages.
type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
	Body        string    `json:"body"         validate:"required,max=2000"`
}

// ListResponse wraps collections so the top-level JSON value is an object.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

func newListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items}
}
