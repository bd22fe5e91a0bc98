package auth

import (
	"net/url"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse-battery"), bcrypt.MinCost)
	require.NoError(t, err)

	v := NewBcryptVerifier()
	assert.NoError(t, v.Compare(string(hash), "correct-horse-battery"))
	assert.ErrorIs(t, v.Compare(string(hash), "wrong-password"), bcrypt.ErrMismatchedHashAndPassword)
}

func TestTOTPGenerateAndValidate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc := &pquernaTOTP{issuer: "Greenleaf", now: func() time.Time { return now }}

	key, err := svc.Generate("ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, key.Secret)

	u, err := url.Parse(key.URL)
	require.NoError(t, err)
	assert.Equal(t, "otpauth", u.Scheme)
	assert.Equal(t, "Greenleaf", u.Query().Get("issuer"))
	assert.Equal(t, key.Secret, u.Query().Get("secret"))

	code, err := totp.GenerateCode(key.Secret, now)
	require.NoError(t, err)
	assert.True(t, svc.Validate(code, key.Secret))

	previous, err := totp.GenerateCode(key.Secret, now.Add(-30*time.Second))
	require.NoError(t, err)
	assert.True(t, svc.Validate(previous, key.Secret), "one step of drift is accepted")

	stale, err := totp.GenerateCode(key.Secret, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.False(t, svc.Validate(stale, key.Secret))

	assert.False(t, svc.Validate("", key.Secret))
	assert.False(t, svc.Validate(code, ""))
}

func TestTOTPGenerateRequiresAccount(t *testing.T) {
	t.Parallel()

	_, err := NewTOTPService("Greenleaf").Generate("")
	assert.Error(t, err)
}
