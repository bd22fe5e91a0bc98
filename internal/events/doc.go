// Package events lets services announce what happened without knowing who
// listens. Emission is synchronous; handlers run in registration order on
// the caller's goroutine.
package events
