package syncx

import "errors"

// ErrTimeout is returned by waits that give up after a fixed duration.
var ErrTimeout = errors.New("operation timed out")
