package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Queue errors.
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a buffered queue that satisfies both QueueReader and
// QueueWriter. It is safe for concurrent use.
type TaskQueue struct {
	mu     sync.RWMutex
	tasks  chan Task
	closed bool
	logger *slog.Logger
}

var (
	_ QueueReader = (*TaskQueue)(nil)
	_ QueueWriter = (*TaskQueue)(nil)
)

// NewTaskQueue creates a queue holding up to size tasks.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{
		tasks:  make(chan Task, size),
		logger: logger.With(slog.String("component", "task_queue")),
	}
}

// Enqueue adds task to the queue without blocking.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.Int("queue_len", len(q.tasks)),
			slog.Int("queue_cap", cap(q.tasks)))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Close stops accepting tasks. It is safe to call more than once.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
		q.logger.Info("task queue closed")
	}
}

// GetChannel returns the channel workers consume from. It is closed by
// Close.
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.tasks
}
