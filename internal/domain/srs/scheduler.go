package srs

import (
	"time"

	"github.com/greenleaf-study/greenleaf/internal/domain"
)

const day = 24 * time.Hour

// Schedule is the outcome of a single review.
type Schedule struct {
	Difficulty int
	NextReview time.Time
}

// ClampDifficulty forces d into the valid bucket range. A corrupt stored
// value must never leave a card unschedulable.
func ClampDifficulty(d int) int {
	if d < domain.MinDifficulty {
		return domain.MinDifficulty
	}
	if d > domain.MaxDifficulty {
		return domain.MaxDifficulty
	}
	return d
}

// NextDifficulty moves d one bucket up on a correct answer and one bucket
// down otherwise, staying inside [0,5].
func NextDifficulty(d int, correct bool) int {
	d = ClampDifficulty(d)
	if correct {
		return ClampDifficulty(d + 1)
	}
	return ClampDifficulty(d - 1)
}

// IntervalDays returns the review interval for bucket d using the default
// table.
func IntervalDays(d int) int {
	return intervalDays(NewDefaultParams(), d)
}

func intervalDays(params *Params, d int) int {
	return params.IntervalDays[ClampDifficulty(d)]
}

// ScheduleReview computes the new bucket and due date for a card currently
// in bucket current, answered at now.
func ScheduleReview(current int, correct bool, now time.Time) Schedule {
	return scheduleReview(NewDefaultParams(), current, correct, now)
}

func scheduleReview(params *Params, current int, correct bool, now time.Time) Schedule {
	d := NextDifficulty(current, correct)
	return Schedule{
		Difficulty: d,
		NextReview: now.Add(time.Duration(intervalDays(params, d)) * day),
	}
}

// ApplyReview returns state after one review at now. Counters and
// LastReviewed are updated here so every caller records a review the same
// way.
func ApplyReview(state domain.ReviewState, correct bool, now time.Time) domain.ReviewState {
	return applyReview(NewDefaultParams(), state, correct, now)
}

func applyReview(params *Params, state domain.ReviewState, correct bool, now time.Time) domain.ReviewState {
	sched := scheduleReview(params, state.Difficulty, correct, now)
	reviewed := now

	next := state
	next.Difficulty = sched.Difficulty
	next.NextReview = sched.NextReview
	next.LastReviewed = &reviewed
	next.TimesReviewed++
	if correct {
		next.TimesCorrect++
	}
	return next
}
