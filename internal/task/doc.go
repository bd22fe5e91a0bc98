// Package task runs short background jobs on a bounded in-memory queue
// drained by a fixed pool of workers. Event handlers that do not need to
// finish before an HTTP response is written are dispatched through it.
package task
