// Package pool provides the bounded worker pool that serializes analysis
// work. Admission is non-blocking: when the queue is full the submission is
// rejected immediately so the transport layer can answer with backpressure
// instead of letting requests stack up.
package pool

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/skinsight/engine/pkg/logger"
	"github.com/skinsight/engine/pkg/metrics"
)

// Default pool configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	defaultQueueSize        = 256
	shutdownTimeout         = 30 * time.Second
)

// Job is one unit of analysis work. The context passed in is the
// submitter's; a job must return promptly once it is cancelled.
type Job func(ctx context.Context)

type submission struct {
	ctx      context.Context
	run      Job
	enqueued time.Time
}

// Pool runs submitted jobs on a fixed set of worker goroutines.
type Pool struct {
	workers   int
	queueSize int

	jobs chan submission

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	logger logger.Logger
}

// New creates a pool. Call Start before submitting.
func New(opts ...Option) *Pool {
	p := &Pool{
		workers:   runtime.NumCPU() * defaultWorkerMultiplier,
		queueSize: defaultQueueSize,
		logger:    logger.Get().Named("pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.jobs = make(chan submission, p.queueSize)
	return p
}

// Start launches the worker goroutines. They run until Stop is called.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx)
	}
	metrics.UpdatePoolWorkers(p.workers)
	p.logger.Info(ctx, "worker pool started",
		logger.Int("workers", p.workers),
		logger.Int("queue_size", p.queueSize))
}

func (p *Pool) runWorker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case sub, ok := <-p.jobs:
			if !ok {
				return
			}
			metrics.UpdatePoolQueueDepth(len(p.jobs))
			p.execute(sub)
		}
	}
}

func (p *Pool) execute(sub submission) {
	// The submitter may have walked away while the job sat in the queue.
	if err := sub.ctx.Err(); err != nil {
		p.logger.Debug(sub.ctx, "dropping job with dead context", logger.Error(err))
		return
	}
	start := time.Now()
	sub.run(sub.ctx)
	metrics.RecordPoolJobDuration(float64(time.Since(start).Milliseconds()))
}

// Submit enqueues a job without blocking. It returns ErrQueueFull when the
// queue is at capacity and ErrClosed after shutdown has begun.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	sub := submission{ctx: ctx, run: job, enqueued: time.Now()}
	select {
	case p.jobs <- sub:
		p.mu.Unlock()
		metrics.UpdatePoolQueueDepth(len(p.jobs))
		return nil
	default:
		p.mu.Unlock()
		metrics.RecordPoolRejection()
		return ErrQueueFull
	}
}

// QueueDepth returns how many jobs are waiting for a worker.
func (p *Pool) QueueDepth() int {
	return len(p.jobs)
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// Stop drains the queue and waits for in-flight jobs, bounded by the
// shutdown timeout.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	select {
	case <-done:
		metrics.UpdatePoolWorkers(0)
		return nil
	case <-shutdownCtx.Done():
		p.logger.Warn(ctx, "pool shutdown timed out with jobs in flight")
		return shutdownCtx.Err()
	}
}
