package loop

import "errors"

var (
	// ErrStopped is returned when posting to a loop that is no longer running.
	ErrStopped = errors.New("loop: stopped")

	// ErrQueueFull is returned by TryPost when the task queue has no room.
	ErrQueueFull = errors.New("loop: queue full")

	// ErrPanicked is returned by Call when the task panicked.
	ErrPanicked = errors.New("loop: task panicked")
)
