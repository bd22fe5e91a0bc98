package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/greenleaf-study/greenleaf/internal/events"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
)

// TypeEventDelivery is the task type of deferred event handling.
const TypeEventDelivery = "event_delivery"

// AsyncEventHandler defers an events.EventHandler onto a task queue so
// emitting an event does not wait for the handler.
type AsyncEventHandler struct {
	queue   QueueWriter
	handler events.EventHandler
	logger  *slog.Logger
}

var _ events.EventHandler = (*AsyncEventHandler)(nil)

// NewAsyncEventHandler wraps handler so it runs on queue's workers.
func NewAsyncEventHandler(queue QueueWriter, handler events.EventHandler, logger *slog.Logger) *AsyncEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncEventHandler{
		queue:   queue,
		handler: handler,
		logger:  logger.With(slog.String("component", "async_event_handler")),
	}
}

// HandleEvent enqueues delivery of event. The request context is not
// carried over since it ends with the request; only its logger is.
func (h *AsyncEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	log := logger.FromContextOrDefault(ctx, h.logger)

	t := NewFunc(TypeEventDelivery, func(taskCtx context.Context) error {
		return h.handler.HandleEvent(logger.WithLogger(taskCtx, log), event)
	})

	if err := h.queue.Enqueue(t); err != nil {
		log.Warn("dropping event, task queue rejected it",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to enqueue event %s: %w", event.Type, err)
	}
	return nil
}
