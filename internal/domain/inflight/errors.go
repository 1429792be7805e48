package inflight

import "errors"

// Sentinel errors returned by Guard.TryAcquire.
var (
	ErrHeld = errors.New("key already held")
	ErrFull = errors.New("too many actions in progress")
)
