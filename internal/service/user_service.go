package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/service/auth"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

// ProfileUpdate carries optional profile changes. Nil fields are left as
// they are.
type ProfileUpdate struct {
	DisplayName *string
	Timezone    *string
}

// UserService manages accounts, credentials and two-factor settings.
type UserService interface {
	// Register creates an account. Returns store.ErrEmailExists if the
	// email is taken.
	Register(ctx context.Context, email, password, displayName string) (*domain.User, error)

	// Authenticate checks email and password, and the two-factor code when
	// the account has two-factor enabled.
	Authenticate(ctx context.Context, email, password, totpCode string) (*domain.User, error)

	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)

	// SetupTOTP generates a new secret and stores it unenforced until
	// EnableTOTP confirms a code.
	SetupTOTP(ctx context.Context, userID uuid.UUID) (*auth.TOTPKey, error)

	EnableTOTP(ctx context.Context, userID uuid.UUID, code string) error

	DisableTOTP(ctx context.Context, userID uuid.UUID, code string) error
}

type userService struct {
	users    store.UserStore
	verifier auth.PasswordVerifier
	totp     auth.TOTPService
	logger   *slog.Logger
}

var _ UserService = (*userService)(nil)

// NewUserService creates a UserService.
func NewUserService(
	users store.UserStore,
	verifier auth.PasswordVerifier,
	totp auth.TOTPService,
	logger *slog.Logger,
) (UserService, error) {
	for _, err := range []error{
		requireDep("users", users == nil),
		requireDep("verifier", verifier == nil),
		requireDep("totp", totp == nil),
	} {
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		users:    users,
		verifier: verifier,
		totp:     totp,
		logger:   logger.With(slog.String("component", "user_service")),
	}, nil
}

func (s *userService) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	user, err := domain.NewUser(email, password, displayName)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, err
		}
		return nil, NewServiceError("user", "register", "failed to create user", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user registered",
		slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password, totpCode string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "authenticate", "failed to load user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	if user.TOTPEnabled {
		code := strings.TrimSpace(totpCode)
		if code == "" {
			return nil, ErrTOTPRequired
		}
		if !s.totp.Validate(code, user.TOTPSecret) {
			log.Warn("invalid two-factor code", slog.String("user_id", user.ID.String()))
			return nil, ErrInvalidTOTP
		}
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	update ProfileUpdate,
) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*update.DisplayName)
	}
	if update.Timezone != nil {
		user.Timezone = strings.TrimSpace(*update.Timezone)
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, NewServiceError("user", "update_profile", "failed to save profile", err)
	}
	return user, nil
}

func (s *userService) SetupTOTP(ctx context.Context, userID uuid.UUID) (*auth.TOTPKey, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TOTPEnabled {
		return nil, ErrTOTPAlreadyEnabled
	}

	key, err := s.totp.Generate(user.Email)
	if err != nil {
		return nil, NewServiceError("user", "setup_totp", "failed to generate secret", err)
	}
	if err := s.users.SetTOTP(ctx, userID, key.Secret, false); err != nil {
		return nil, NewServiceError("user", "setup_totp", "failed to save secret", err)
	}
	return key, nil
}

func (s *userService) EnableTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPEnabled {
		return ErrTOTPAlreadyEnabled
	}
	if user.TOTPSecret == "" {
		return ErrTOTPNotSetUp
	}
	if !s.totp.Validate(strings.TrimSpace(code), user.TOTPSecret) {
		return ErrInvalidTOTP
	}
	if err := s.users.SetTOTP(ctx, userID, user.TOTPSecret, true); err != nil {
		return NewServiceError("user", "enable_totp", "failed to enable two-factor", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("two-factor enabled",
		slog.String("user_id", userID.String()))
	return nil
}

func (s *userService) DisableTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled {
		return ErrTOTPNotSetUp
	}
	if !s.totp.Validate(strings.TrimSpace(code), user.TOTPSecret) {
		return ErrInvalidTOTP
	}
	if err := s.users.SetTOTP(ctx, userID, "", false); err != nil {
		return NewServiceError("user", "disable_totp", "failed to disable two-factor", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("two-factor disabled",
		slog.String("user_id", userID.String()))
	return nil
}
