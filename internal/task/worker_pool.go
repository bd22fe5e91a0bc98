package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkerPool runs tasks from a queue on a fixed number of goroutines.
type WorkerPool struct {
	taskQueue   QueueReader
	workerCount int
	taskTimeout time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	// errorHandler is called when a task fails. Failures are always logged.
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig configures a WorkerPool.
type WorkerPoolConfig struct {
	// WorkerCount defaults to 1 when zero or negative.
	WorkerCount int

	// TaskTimeout bounds a single Execute call. Zero means no limit.
	TaskTimeout time.Duration
}

// DefaultWorkerPoolConfig returns the settings used when none are
// configured.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
		TaskTimeout: 30 * time.Second,
	}
}

// NewWorkerPool creates a pool over taskQueue. Call Start to run it.
func NewWorkerPool(taskQueue QueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "worker_pool"))

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		taskTimeout: config.TaskTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler installs a callback for failed tasks. Call it before
// Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the workers.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started", slog.Int("workers", p.workerCount))
}

// Stop waits for the workers to drain the queue, which must already be
// closed. If ctx expires first, running tasks are canceled and Stop
// returns ctx's error once the workers exit.
func (p *WorkerPool) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		p.logger.Warn("worker pool stopped before the queue drained")
		return ctx.Err()
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return
		case task, ok := <-p.taskQueue.GetChannel():
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", slog.Int("worker_id", id))
				return
			}
			p.process(task, id)
		}
	}
}

func (p *WorkerPool) process(task Task, workerID int) {
	log := p.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID))

	ctx := p.ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	start := time.Now()
	err := p.execute(ctx, task)
	if err != nil {
		log.Error("task execution failed", slog.String("error", err.Error()))
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
		return
	}
	log.Debug("task completed", slog.Duration("duration", time.Since(start)))
}

// execute runs task and turns a panic into an error so one bad task does
// not take the worker down.
func (p *WorkerPool) execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Execute(ctx)
}
