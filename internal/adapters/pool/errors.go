package pool

import "errors"

// Submission errors surfaced to the transport layer.
var (
	// ErrQueueFull signals backpressure: the caller should retry later.
	ErrQueueFull = errors.New("analysis queue is full")

	// ErrClosed is returned for submissions after shutdown began.
	ErrClosed = errors.New("pool is shut down")
)
