package task

import (
	"context"
	"log/slog"
	"sync"
)

// WorkerPool manages a pool of goroutines processing tasks from a queue. It
// handles graceful shutdown: closing the queue drains queued tasks, Stop
// additionally cancels in-flight task contexts.
type WorkerPool struct {
	queue       QueueReader
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger

	// errorHandler is called when a task execution fails. Nil means errors
	// are only logged.
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool.
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent workers to start. Zero or
	// negative defaults to 1.
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a config with reasonable defaults.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{WorkerCount: 2}
}

// NewWorkerPool creates a worker pool consuming from queue. Workers start
// only when Start is called.
func NewWorkerPool(queue QueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		queue:       queue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With(slog.String("component", "worker_pool")),
	}
}

// SetErrorHandler sets a custom handler for task execution failures. Must be
// called before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines. Each worker runs until the queue
// channel closes or the pool is stopped.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started", "worker_count", p.workerCount)
}

// Stop cancels in-flight task contexts and waits for all workers to exit.
// The queue should be closed before calling Stop so queued tasks drain.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Wait blocks until all workers have exited, without canceling in-flight
// work. Use after closing the queue for a drain-then-exit shutdown.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	logger := p.logger.With(slog.Int("worker", id))

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("worker shutting down")
			return
		case t, ok := <-p.queue.Chan():
			if !ok {
				logger.Debug("queue closed, worker exiting")
				return
			}
			p.runTask(logger, t)
		}
	}
}

func (p *WorkerPool) runTask(logger *slog.Logger, t Task) {
	logger.Info("processing task", "task_id", t.ID(), "task_type", t.Type())
	if err := t.Execute(p.ctx); err != nil {
		logger.Error("task failed",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err)
		if p.errorHandler != nil {
			p.errorHandler(t, err)
		}
		return
	}
	logger.Info("task completed", "task_id", t.ID(), "task_type", t.Type())
}
