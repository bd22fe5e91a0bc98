package streak

import (
	"sort"
	"time"
)

// DateLayout is the format of a day key.
const DateLayout = "2006-01-02"

// Status describes whether a streak is safe for today.
type Status string

const (
	// StatusActive means the user has already studied today.
	StatusActive Status = "active"
	// StatusAtRisk means yesterday's streak survives until midnight.
	StatusAtRisk Status = "at-risk"
	// StatusBroken means there is no live streak.
	StatusBroken Status = "broken"
)

// View is the computed streak state at a point in time.
type View struct {
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	StudiedToday   bool    `json:"studied_today"`
	Status         Status  `json:"status"`
	HoursRemaining float64 `json:"hours_remaining"`
}

// DateSet is a set of day keys.
type DateSet map[string]struct{}

// NewDateSet builds a set from keys. Duplicates collapse.
func NewDateSet(keys ...string) DateSet {
	set := make(DateSet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Has reports whether key is in the set.
func (s DateSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add inserts key and reports whether it was new.
func (s DateSet) Add(key string) bool {
	if s.Has(key) {
		return false
	}
	s[key] = struct{}{}
	return true
}

// DateKey formats t as a day key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// civilDay returns midnight UTC of t's calendar date in t's location.
// Walking days on this value is free of DST jumps.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute projects the day set onto a View as of now. It never fails:
// malformed keys are ignored.
func Compute(dates DateSet, now time.Time) View {
	today := civilDay(now)
	studiedToday := dates.Has(DateKey(today))

	current := currentStreak(dates, today, studiedToday)
	longest := max(longestStreak(dates), current)

	view := View{
		CurrentStreak: current,
		LongestStreak: longest,
		StudiedToday:  studiedToday,
	}

	switch {
	case studiedToday:
		view.Status = StatusActive
		view.HoursRemaining = hoursUntilMidnight(now)
	case current > 0:
		view.Status = StatusAtRisk
		view.HoursRemaining = hoursUntilMidnight(now)
	default:
		view.Status = StatusBroken
	}

	return view
}

// currentStreak counts consecutive studied days ending today, or ending
// yesterday when today is not studied yet.
func currentStreak(dates DateSet, today time.Time, studiedToday bool) int {
	cursor := today
	if !studiedToday {
		cursor = cursor.AddDate(0, 0, -1)
	}

	count := 0
	for dates.Has(DateKey(cursor)) {
		count++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return count
}

// longestStreak finds the longest run of consecutive days in the set.
func longestStreak(dates DateSet) int {
	days := make([]time.Time, 0, len(dates))
	for key := range dates {
		day, err := time.Parse(DateLayout, key)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// hoursUntilMidnight returns the hours left in now's calendar day.
func hoursUntilMidnight(now time.Time) float64 {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return midnight.Sub(now).Hours()
}
