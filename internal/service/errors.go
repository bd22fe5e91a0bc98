package service

import (
	"errors"
	"fmt"

	"github.com/greenleaf-study/greenleaf/internal/domain"
)

// Sentinel errors shared by the services. The API layer maps them to
// status codes with errors.Is.
var (
	// ErrNotOwned is returned when a user acts on another user's resource.
	ErrNotOwned = fmt.Errorf("%w: resource is owned by another user", domain.ErrForbidden)

	// ErrOwnerOnly is returned when an action needs the owner role.
	ErrOwnerOnly = fmt.Errorf("%w: owner role required", domain.ErrForbidden)

	// ErrNotFriends is returned when an action needs an accepted friendship.
	ErrNotFriends = fmt.Errorf("%w: users are not friends", domain.ErrForbidden)

	// ErrRequestNotPending is returned when accepting a request that was
	// already accepted.
	ErrRequestNotPending = errors.New("friend request is not pending")

	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTOTPRequired is returned when login needs a two-factor code.
	ErrTOTPRequired = errors.New("two-factor code required")

	// ErrInvalidTOTP is returned for a wrong two-factor code.
	ErrInvalidTOTP = errors.New("invalid two-factor code")

	// ErrTOTPNotSetUp is returned when enabling two-factor before setup.
	ErrTOTPNotSetUp = errors.New("two-factor authentication has not been set up")

	// ErrTOTPAlreadyEnabled is returned when setting up two-factor twice.
	ErrTOTPAlreadyEnabled = errors.New("two-factor authentication is already enabled")
)

// ServiceError adds the failing service operation to an error.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap supports errors.Is and errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{Service: service, Operation: operation, Message: message, Err: err}
}

func requireDep(name string, missing bool) error {
	if missing {
		return domain.NewValidationError(name, "cannot be nil", domain.ErrValidation)
	}
	return nil
}
