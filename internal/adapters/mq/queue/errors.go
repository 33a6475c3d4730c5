package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	// ErrBackpressure is returned when the queue is at capacity.
	ErrBackpressure = errors.New("mutation queue full")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("mutation queue closed")
)
