package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
)

// InMemoryEventEmitter dispatches events to handlers registered in
// process.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler adds handler to the dispatch list.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered event handler", slog.Int("handler_count", len(e.handlers)))
}

// EmitEvent delivers event to every handler, even after one fails, and
// returns the first error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	log := logger.FromContextOrDefault(ctx, e.logger)

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.Error("event handler failed",
				slog.String("error", err.Error()),
				slog.Int("handler_index", i),
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.Type))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// NewActivityLogHandler returns a handler that records every event as a
// structured log line.
func NewActivityLogHandler(l *slog.Logger) EventHandler {
	if l == nil {
		l = slog.Default()
	}
	l = l.With(slog.String("component", "activity_log"))

	return HandlerFunc(func(ctx context.Context, event *Event) error {
		logger.FromContextOrDefault(ctx, l).Info("activity",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type),
			slog.String("user_id", event.UserID.String()),
			slog.String("payload", string(event.Payload)))
		return nil
	})
}

// Emit builds and emits an event. A nil emitter is a no-op. Failures are
// logged, not returned, so a listener never fails the operation that
// triggered it.
func Emit(ctx context.Context, emitter EventEmitter, eventType string, userID uuid.UUID, payload any) {
	if emitter == nil {
		return
	}
	log := logger.FromContext(ctx)

	event, err := New(eventType, userID, payload)
	if err != nil {
		log.Error("failed to build event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
		return
	}
	if err := emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event delivery failed",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
	}
}
