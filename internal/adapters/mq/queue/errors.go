package queue

import "errors"

// Sentinel errors returned by Put.
var (
	ErrClosed = errors.New("queue closed")
	ErrFull   = errors.New("queue full")
)
