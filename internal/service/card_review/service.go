// Package card_review runs flashcard reviews through the spaced repetition
// scheduler and persists the result.
package card_review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/domain"
)

// DefaultDueLimit and MaxDueLimit bound ListDue.
const (
	DefaultDueLimit = 50
	MaxDueLimit     = 500
)

// CardReviewService lists due cards and records review answers.
type CardReviewService interface {
	// ListDue returns the user's cards with next_review <= now, soonest
	// first. deckID narrows the result to one deck. limit <= 0 uses
	// DefaultDueLimit; larger values are capped at MaxDueLimit.
	//
	// Returns ErrCardNotOwned if deckID names another user's deck and
	// ErrDeckNotFound if it does not exist.
	ListDue(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, limit int) ([]*domain.Card, error)

	// SubmitReview applies one answer to a card and returns the card with
	// its new review state.
	//
	// The card row is locked for the read-modify-write, so two concurrent
	// reviews of the same card are applied one after the other.
	//
	// Returns ErrCardNotFound if the card does not exist and
	// ErrCardNotOwned if it belongs to another user.
	SubmitReview(ctx context.Context, userID, cardID uuid.UUID, correct bool) (*domain.Card, error)
}

var (
	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrDeckNotFound indicates that the deck filter names no deck.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrCardNotOwned indicates that the card or deck belongs to another user.
	ErrCardNotOwned = fmt.Errorf("%w: card not owned by user", domain.ErrForbidden)
)

// ServiceError wraps failures of the card review service with the
// operation that failed.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitReviewError returns a ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "submit_review", Message: message, Err: err}
}

// NewListDueError returns a ServiceError for the list_due operation.
func NewListDueError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "list_due", Message: message, Err: err}
}
