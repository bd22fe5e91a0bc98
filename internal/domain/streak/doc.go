// Package streak derives a user's study streak and garden stage from the
// set of calendar days on which they studied.
//
// The day set is the only source of truth. Every function here is a pure
// projection of that set and a reference instant; the day boundary is taken
// from the location of the instant passed in, so callers choose UTC or a
// user's own timezone by converting "now" before calling.
package streak
