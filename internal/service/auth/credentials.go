package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier compares a stored hash with a plaintext candidate.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier with bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements PasswordVerifier.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// TOTPKey is a freshly generated two-factor secret.
type TOTPKey struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
}

// TOTPService generates and checks time-based one-time passwords.
type TOTPService interface {
	// Generate creates a new secret for accountName.
	Generate(accountName string) (*TOTPKey, error)

	// Validate reports whether code is valid for secret right now.
	Validate(code, secret string) bool
}

type pquernaTOTP struct {
	issuer string
	now    func() time.Time
}

// NewTOTPService creates a TOTPService issuing keys under issuer. Codes
// are six digits over 30 second steps, and one step of drift either way
// is accepted.
func NewTOTPService(issuer string) TOTPService {
	return &pquernaTOTP{issuer: issuer, now: time.Now}
}

// Generate implements TOTPService.
func (s *pquernaTOTP) Generate(accountName string) (*TOTPKey, error) {
	if accountName == "" {
		return nil, errors.New("account name is required")
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp key: %w", err)
	}
	return &TOTPKey{Secret: key.Secret(), URL: key.URL()}, nil
}

// Validate implements TOTPService.
func (s *pquernaTOTP) Validate(code, secret string) bool {
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, s.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
