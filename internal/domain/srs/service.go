package srs

import (
	"time"

	"github.com/greenleaf-study/greenleaf/internal/domain"
)

// Service exposes the scheduler behind an interface for injection into
// the review services.
type Service interface {
	// ScheduleReview computes the next bucket and due date.
	ScheduleReview(currentDifficulty int, correct bool, now time.Time) Schedule

	// ApplyReview applies one review to a card's state, including counters.
	ApplyReview(state domain.ReviewState, correct bool, now time.Time) domain.ReviewState
}

type defaultService struct {
	params *Params
}

var _ Service = (*defaultService)(nil)

// NewDefaultService creates a scheduler using the default interval table.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a scheduler with a custom interval table.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{params: params}
}

func (s *defaultService) ScheduleReview(currentDifficulty int, correct bool, now time.Time) Schedule {
	return scheduleReview(s.params, currentDifficulty, correct, now)
}

func (s *defaultService) ApplyReview(state domain.ReviewState, correct bool, now time.Time) domain.ReviewState {
	return applyReview(s.params, state, correct, now)
}
