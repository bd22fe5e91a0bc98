package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User validation errors
var (
	ErrEmptyUserID          = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyEmail           = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrPasswordTooShort     = fmt.Errorf("%w: password must be at least 12 characters long", ErrValidation)
	ErrPasswordTooLong      = fmt.Errorf("%w: password must be at most 72 characters long", ErrValidation)
	ErrEmptyPassword        = fmt.Errorf("%w: password cannot be empty", ErrValidation)
	ErrDisplayNameTooLong   = fmt.Errorf("%w: display name must be at most 64 characters", ErrValidation)
	ErrInvalidTimezone      = fmt.Errorf("%w: unknown timezone", ErrValidation)
	ErrInvalidRole          = fmt.Errorf("%w: unknown role", ErrValidation)
	ErrInvalidStageOverride = fmt.Errorf("%w: garden stage override out of range", ErrValidation)
)

const (
	// MinPasswordLength and MaxPasswordLength bound plaintext passwords.
	// bcrypt ignores input past 72 bytes.
	MinPasswordLength = 12
	MaxPasswordLength = 72

	// MaxDisplayNameLength bounds User.DisplayName.
	MaxDisplayNameLength = 64

	// MaxGardenStage is the highest garden stage index.
	MaxGardenStage = 10
)

// Role grants capabilities beyond those of a regular account.
type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

// User is a registered account.
//
// CurrentStreak and LongestStreak are a cached projection of the user's
// study days and are only refreshed by the study service; readers recompute
// the streak rather than trusting them.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Password       string    `json:"-"` // plaintext, only set during registration
	HashedPassword string    `json:"-"`
	Timezone       string    `json:"timezone"`
	Role           Role      `json:"role"`

	TOTPSecret  string `json:"-"`
	TOTPEnabled bool   `json:"totp_enabled"`

	GardenStageOverride *int `json:"garden_stage_override,omitempty"`
	CurrentStreak       int  `json:"current_streak"`
	LongestStreak       int  `json:"longest_streak"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a User with a fresh ID. The plaintext password is kept
// on the struct so the store can hash it before insert.
func NewUser(email, password, displayName string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:          uuid.New(),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: strings.TrimSpace(displayName),
		Password:    password,
		Timezone:    "UTC",
		Role:        RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if _, err := mail.ParseAddress(u.Email); err != nil || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}

	// Existing users only carry the hash.
	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return ErrPasswordTooShort
		}
		if len(u.Password) > MaxPasswordLength {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	if len(u.DisplayName) > MaxDisplayNameLength {
		return ErrDisplayNameTooLong
	}
	if u.Timezone != "" {
		if _, err := time.LoadLocation(u.Timezone); err != nil {
			return ErrInvalidTimezone
		}
	}
	switch u.Role {
	case RoleUser, RoleOwner, "":
	default:
		return ErrInvalidRole
	}
	if u.GardenStageOverride != nil {
		if *u.GardenStageOverride < 0 || *u.GardenStageOverride > MaxGardenStage {
			return ErrInvalidStageOverride
		}
	}

	return nil
}

// IsOwner reports whether the user holds the owner role.
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// Location resolves the user's timezone, falling back to UTC.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
