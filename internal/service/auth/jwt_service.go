package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/config"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// MinSecretLength is the shortest accepted HMAC secret.
const MinSecretLength = 32

// JWTService manages access and refresh tokens.
type JWTService interface {
	// GenerateToken signs a short-lived access token for userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks an access token and returns its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken signs a long-lived refresh token for userID.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken checks a refresh token and returns its claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of a token.
type Claims struct {
	UserID    uuid.UUID
	TokenType string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

// tokenErrors maps parse failures for one token type.
type tokenErrors struct {
	invalid error
	expired error
	early   error
}

var (
	accessErrors  = tokenErrors{invalid: ErrInvalidToken, expired: ErrExpiredToken, early: ErrTokenNotYetValid}
	refreshErrors = tokenErrors{invalid: ErrInvalidRefreshToken, expired: ErrExpiredRefreshToken, early: ErrInvalidRefreshToken}
)

type hmacJWTService struct {
	signingKey           []byte
	tokenLifetime        time.Duration
	refreshTokenLifetime time.Duration
	timeFunc             func() time.Time
	clockSkew            time.Duration
}

var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates an HS256 token service from cfg.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	return newHMACJWTService(cfg, time.Now)
}

func newHMACJWTService(cfg config.AuthConfig, now func() time.Time) (*hmacJWTService, error) {
	if len(cfg.JWTSecret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &hmacJWTService{
		signingKey:           []byte(cfg.JWTSecret),
		tokenLifetime:        time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		refreshTokenLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		timeFunc:             now,
		clockSkew:            2 * time.Minute,
	}, nil
}

// GenerateToken implements JWTService.
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.sign(ctx, userID, TokenTypeAccess, s.tokenLifetime)
}

// GenerateRefreshToken implements JWTService.
func (s *hmacJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.sign(ctx, userID, TokenTypeRefresh, s.refreshTokenLifetime)
}

// ValidateToken implements JWTService.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.parse(ctx, tokenString, TokenTypeAccess, accessErrors)
}

// ValidateRefreshToken implements JWTService.
func (s *hmacJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.parse(ctx, tokenString, TokenTypeRefresh, refreshErrors)
}

func (s *hmacJWTService) sign(
	ctx context.Context,
	userID uuid.UUID,
	tokenType string,
	lifetime time.Duration,
) (string, error) {
	now := s.timeFunc()
	claims := jwtCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("token_type", tokenType))
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *hmacJWTService) parse(
	ctx context.Context,
	tokenString string,
	wantType string,
	errs tokenErrors,
) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		log.Debug("token validation failed",
			slog.String("error", err.Error()),
			slog.String("token_type", wantType))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, errs.expired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, errs.early
		default:
			return nil, errs.invalid
		}
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, errs.invalid
	}
	if claims.TokenType != wantType {
		log.Debug("token validation failed: wrong token type",
			slog.String("expected", wantType),
			slog.String("actual", claims.TokenType))
		return nil, ErrWrongTokenType
	}

	return &Claims{
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
