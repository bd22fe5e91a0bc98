package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/service/auth"
)

// MockJWTService implements auth.JWTService. Function fields override the
// default return values.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	Token        string
	RefreshToken string
	Err          error
	ValidateErr  error
	Claims       *auth.Claims
}

var _ auth.JWTService = (*MockJWTService)(nil)

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return m.Token, m.Err
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}
	return m.RefreshToken, m.Err
}

func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// MockPasswordVerifier implements auth.PasswordVerifier.
type MockPasswordVerifier struct {
	ShouldSucceed bool
	CallCount     int
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CallCount++
	if m.ShouldSucceed {
		return nil
	}
	return errors.New("password mismatch")
}

// MockTOTPService implements auth.TOTPService. Validate accepts exactly
// ValidCode.
type MockTOTPService struct {
	Key       *auth.TOTPKey
	Err       error
	ValidCode string
}

var _ auth.TOTPService = (*MockTOTPService)(nil)

func (m *MockTOTPService) Generate(accountName string) (*auth.TOTPKey, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Key != nil {
		return m.Key, nil
	}
	return &auth.TOTPKey{
		Secret: "JBSWY3DPEHPK3PXP",
		URL:    "otpauth://totp/greenleaf:" + accountName + "?secret=JBSWY3DPEHPK3PXP",
	}, nil
}

func (m *MockTOTPService) Validate(code, secret string) bool {
	return m.ValidCode != "" && code == m.ValidCode
}
