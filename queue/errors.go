package queue

import (
	"errors"
	"fmt"
)

// Validation errors. They are always returned wrapped in an *ArgumentError.
var (
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrInvalidPolicy   = errors.New("invalid overflow policy")
	ErrInvalidCount    = errors.New("invalid count")
	ErrInvalidTimeout  = errors.New("invalid timeout")
)

// Admission errors
var (
	ErrQueueClosed      = errors.New("queue is closed")
	ErrCapacityExceeded = errors.New("queue capacity exceeded")
)

// ArgumentError reports a rejected argument together with the operation that
// received it.
type ArgumentError struct {
	Op    string
	Arg   string
	Value any
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("queue: %s: %s=%v: %v", e.Op, e.Arg, e.Value, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }
