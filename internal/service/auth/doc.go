// Package auth issues and validates JWT access and refresh tokens, compares
// bcrypt password hashes and handles TOTP two-factor codes.
package auth
