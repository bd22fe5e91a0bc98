package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	q := NewTaskQueue(1, setupTestLogger())

	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 5}, setupTestLogger())
	assert.Equal(t, 5, pool.workerCount)
	assert.Nil(t, pool.errorHandler)

	pool = NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 0}, setupTestLogger())
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(q, WorkerPoolConfig{WorkerCount: -5}, nil)
	assert.Equal(t, 1, pool.workerCount)
}

func TestDefaultWorkerPoolConfig(t *testing.T) {
	cfg := DefaultWorkerPoolConfig()
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, 30*time.Second, cfg.TaskTimeout)
}

func TestWorkerPool_ProcessesEveryTask(t *testing.T) {
	q := NewTaskQueue(50, setupTestLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 4}, setupTestLogger())
	pool.Start()

	var count atomic.Int32
	for i := 0; i < 50; i++ {
		require.NoError(t, q.Enqueue(NewFunc("count", func(context.Context) error {
			count.Add(1)
			return nil
		})))
	}

	q.Close()
	require.NoError(t, pool.Stop(context.Background()))
	assert.Equal(t, int32(50), count.Load())
}

func TestWorkerPool_ErrorHandler(t *testing.T) {
	q := NewTaskQueue(3, setupTestLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())

	var mu sync.Mutex
	var failed []string
	pool.SetErrorHandler(func(task Task, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, task.Type()+": "+err.Error())
	})
	pool.Start()

	require.NoError(t, q.Enqueue(NewFunc("ok", noop)))
	require.NoError(t, q.Enqueue(NewFunc("fails", func(context.Context) error {
		return errors.New("boom")
	})))
	require.NoError(t, q.Enqueue(NewFunc("panics", func(context.Context) error {
		panic("bad task")
	})))

	q.Close()
	require.NoError(t, pool.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"fails: boom", "panics: task panicked: bad task"}, failed)
}

func TestWorkerPool_TaskTimeout(t *testing.T) {
	q := NewTaskQueue(1, setupTestLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1, TaskTimeout: 10 * time.Millisecond}, setupTestLogger())

	errCh := make(chan error, 1)
	pool.SetErrorHandler(func(_ Task, err error) { errCh <- err })
	pool.Start()

	require.NoError(t, q.Enqueue(NewFunc("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("task was not timed out")
	}

	q.Close()
	require.NoError(t, pool.Stop(context.Background()))
}

func TestWorkerPool_StopCancelsWhenDeadlinePasses(t *testing.T) {
	q := NewTaskQueue(1, setupTestLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()

	started := make(chan struct{})
	require.NoError(t, q.Enqueue(NewFunc("blocking", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})))
	<-started
	q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := pool.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
