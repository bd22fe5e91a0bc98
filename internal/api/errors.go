package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/greenleaf-study/greenleaf/internal/api/shared"
	"github.com/greenleaf-study/greenleaf/internal/domain"
	"github.com/greenleaf-study/greenleaf/internal/importer"
	"github.com/greenleaf-study/greenleaf/internal/service"
	"github.com/greenleaf-study/greenleaf/internal/service/auth"
	"github.com/greenleaf-study/greenleaf/internal/service/card_review"
	"github.com/greenleaf-study/greenleaf/internal/store"
)

const validationPrefix = "validation failed: "

// MapErrorToStatusCode maps internal errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Authentication
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrTOTPRequired),
		errors.Is(err, service.ErrInvalidTOTP):
		return http.StatusUnauthorized

	// Authorization
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	// Not found
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, card_review.ErrCardNotFound),
		errors.Is(err, card_review.ErrDeckNotFound):
		return http.StatusNotFound

	// Conflict
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, importer.ErrTooManyRows):
		return http.StatusRequestEntityTooLarge

	// Bad request
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrRequestNotPending),
		errors.Is(err, service.ErrTOTPNotSetUp),
		errors.Is(err, service.ErrTOTPAlreadyEnabled),
		errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrUnreadable):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Messages
// never include wrapped error text except the detail of validation errors,
// which is written for users.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, service.ErrTOTPRequired):
		return "Two-factor code required"
	case errors.Is(err, service.ErrInvalidTOTP):
		return "Invalid two-factor code"
	case errors.Is(err, service.ErrTOTPNotSetUp):
		return "Two-factor authentication has not been set up"
	case errors.Is(err, service.ErrTOTPAlreadyEnabled):
		return "Two-factor authentication is already enabled"

	case errors.Is(err, service.ErrOwnerOnly):
		return "Owner role required"
	case errors.Is(err, service.ErrNotFriends):
		return "You are not friends with this user"
	case errors.Is(err, card_review.ErrCardNotOwned):
		return "You do not own this card"
	case errors.Is(err, service.ErrNotOwned), errors.Is(err, domain.ErrForbidden):
		return "You do not have access to this resource"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrDeckNotFound), errors.Is(err, card_review.ErrDeckNotFound):
		return "Deck not found"
	case errors.Is(err, store.ErrCardNotFound), errors.Is(err, card_review.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrFriendshipNotFound):
		return "Friend request not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrFriendshipExists):
		return "Friend request already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	case errors.Is(err, service.ErrRequestNotPending):
		return "Friend request is not pending"

	case errors.Is(err, importer.ErrUnsupportedFormat):
		return "Unsupported file format: use .xlsx or .csv"
	case errors.Is(err, importer.ErrTooManyRows):
		return "File has too many rows"
	case errors.Is(err, importer.ErrUnreadable):
		return "File could not be read"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation):
		if detail := validationDetail(err); detail != "" {
			return "Invalid request: " + detail
		}
		return "Validation error"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// validationDetail finds the user-facing part of a domain validation
// error somewhere in err's chain.
func validationDetail(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if msg := e.Error(); strings.HasPrefix(msg, validationPrefix) {
			return strings.TrimPrefix(msg, validationPrefix)
		}
	}
	return ""
}

// SanitizeValidationError turns a request validation failure into a short
// message naming the first offending field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	if detail := validationDetail(err); detail != "" {
		return "Invalid request: " + detail
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "required_without":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too short or too small"
	case "max", "lte":
		return "too long or too large"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "must be a UUID"
	case "len", "numeric":
		return "invalid format"
	case "timezone":
		return "unknown timezone"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err and logs
// the full error. fallback replaces the generic message for 500s.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
