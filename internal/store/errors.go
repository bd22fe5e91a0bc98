package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert would violate a uniqueness rule.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation or
	// references a row that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a transaction cannot commit.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrDeckNotFound       = fmt.Errorf("%w: deck", ErrNotFound)
	ErrCardNotFound       = fmt.Errorf("%w: card", ErrNotFound)
	ErrFriendshipNotFound = fmt.Errorf("%w: friendship", ErrNotFound)

	// ErrEmailExists is returned when registering an email already in use.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrFriendshipExists is returned when two users already have a
	// pending or accepted friendship.
	ErrFriendshipExists = fmt.Errorf("%w: friendship", ErrDuplicate)
)

// IsNotFoundError reports whether err is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError adds entity and operation context to a storage failure.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap supports errors.Is and errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
