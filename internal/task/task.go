package task

import (
	"context"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Task is a unit of background work.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type names the kind of work, for logs.
	Type() string

	// Execute runs the task.
	Execute(ctx context.Context) error
}

// QueueReader gives workers read access to queued tasks.
type QueueReader interface {
	GetChannel() <-chan Task
}

// QueueWriter lets producers submit tasks.
type QueueWriter interface {
	// Enqueue adds task without blocking. It fails when the queue is full
	// or closed.
	Enqueue(task Task) error

	// Close stops accepting tasks. Queued tasks are still delivered.
	Close()
}

// Func adapts a function to Task.
type Func struct {
	id       uuid.UUID
	taskType string
	fn       func(ctx context.Context) error
}

var _ Task = (*Func)(nil)

// NewFunc wraps fn as a Task of the given type.
func NewFunc(taskType string, fn func(ctx context.Context) error) *Func {
	return &Func{id: uuid.New(), taskType: taskType, fn: fn}
}

func (f *Func) ID() uuid.UUID { return f.id }

func (f *Func) Type() string { return f.taskType }

func (f *Func) Execute(ctx context.Context) error { return f.fn(ctx) }
