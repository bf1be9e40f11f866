package syncx

import (
	"context"
	"sync"
	"time"
)

// Latch is a one-shot gate: it starts closed and, once released, stays open.
type Latch struct {
	done chan struct{}
	once sync.Once
}

// NewLatch creates a closed latch.
func NewLatch() *Latch {
	return &Latch{done: make(chan struct{})}
}

// Release opens the latch. Later calls do nothing.
func (l *Latch) Release() {
	l.once.Do(func() { close(l.done) })
}

// Done returns a channel that is closed once the latch is released.
func (l *Latch) Done() <-chan struct{} { return l.done }

// Wait blocks until the latch is released or ctx is done.
func (l *Latch) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitTimeout is Wait with a fixed budget; it returns ErrTimeout on expiry.
func (l *Latch) WaitTimeout(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-l.done:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}

// Released reports whether Release has been called.
func (l *Latch) Released() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
