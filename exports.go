package boundq

// Re-export the queue API so that most callers need a single import.
import (
	"github.com/a2y-d5l/boundq/queue"
)

// Core types
type (
	BoundedQueue[T any] = queue.BoundedQueue[T]
	Config              = queue.Config
	OverflowPolicy      = queue.OverflowPolicy
	ArgumentError       = queue.ArgumentError
	Cloner[T any]       = queue.Cloner[T]
)

// Overflow policies
const (
	TruncateSilent = queue.TruncateSilent
	TruncateWarn   = queue.TruncateWarn
	RejectSilent   = queue.RejectSilent
	RejectWarn     = queue.RejectWarn
	RejectHard     = queue.RejectHard

	Unbounded                = queue.Unbounded
	AbsoluteTimeoutThreshold = queue.AbsoluteTimeoutThreshold
)

// Errors
var (
	ErrInvalidCapacity  = queue.ErrInvalidCapacity
	ErrInvalidPolicy    = queue.ErrInvalidPolicy
	ErrInvalidCount     = queue.ErrInvalidCount
	ErrInvalidTimeout   = queue.ErrInvalidTimeout
	ErrQueueClosed      = queue.ErrQueueClosed
	ErrCapacityExceeded = queue.ErrCapacityExceeded
)

var ParsePolicy = queue.ParsePolicy

// New creates a queue; see queue.New.
func New[T any](cfg Config, items ...T) (*BoundedQueue[T], error) {
	return queue.New(cfg, items...)
}

// MustNew is New that panics on error.
func MustNew[T any](cfg Config, items ...T) *BoundedQueue[T] {
	return queue.MustNew(cfg, items...)
}
