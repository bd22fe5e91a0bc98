package auth

import "errors"

var (
	// ErrInvalidToken indicates a malformed token or a bad signature.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the access token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the nbf claim is in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates no token was sent.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidRefreshToken indicates a refresh token that cannot be used.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrWrongTokenType indicates an access token used as a refresh token
	// or the other way round.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrWeakSecret is returned when the signing secret is too short.
	ErrWeakSecret = errors.New("jwt secret must be at least 32 characters")
)
