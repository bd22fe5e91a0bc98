package srs

import (
	"errors"
	"fmt"

	"github.com/greenleaf-study/greenleaf/internal/domain"
)

// BucketCount is the number of difficulty buckets.
const BucketCount = domain.MaxDifficulty - domain.MinDifficulty + 1

// ErrInvalidParams is returned by NewParams for a malformed interval table.
var ErrInvalidParams = errors.New("invalid scheduler parameters")

// Params holds the interval table, indexed by difficulty bucket.
type Params struct {
	IntervalDays [BucketCount]int
}

// NewDefaultParams returns the standard interval table.
func NewDefaultParams() *Params {
	return &Params{
		IntervalDays: [BucketCount]int{1, 3, 7, 14, 30, 60},
	}
}

// NewParams validates a custom interval table. Intervals must be at least
// one day and non-decreasing so a better-known card is never due sooner.
func NewParams(intervals [BucketCount]int) (*Params, error) {
	prev := 0
	for i, days := range intervals {
		if days < 1 {
			return nil, fmt.Errorf("%w: interval %d is %d days", ErrInvalidParams, i, days)
		}
		if days < prev {
			return nil, fmt.Errorf("%w: interval %d is shorter than interval %d", ErrInvalidParams, i, i-1)
		}
		prev = days
	}
	return &Params{IntervalDays: intervals}, nil
}
