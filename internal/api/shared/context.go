// Package shared holds request context keys and JSON helpers used by the
// handlers and the middleware.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ContextKey namespaces request context values.
type ContextKey string

const (
	// UserIDContextKey holds the authenticated user's ID.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID.
	TraceIDLength = 16
)

var fallbackCounter atomic.Uint64

// SetTraceID returns a copy of ctx carrying a new trace ID.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID in ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user's ID.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to read random trace ID, using fallback", slog.String("error", err.Error()))
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID builds a unique, non-random ID from the clock and a
// process-wide counter.
func fallbackTraceID() string {
	b := make([]byte, TraceIDLength)
	binary.BigEndian.PutUint64(b[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(b[8:], fallbackCounter.Add(1))
	return hex.EncodeToString(b)
}
