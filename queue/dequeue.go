package queue

import (
	"context"
	"time"
)

// Dequeue removes and returns count items from the head, blocking until that
// many are queued. Once the queue has ended it stops waiting and returns
// whatever remains, which may be fewer than count or none at all.
func (q *BoundedQueue[T]) Dequeue(count int) ([]T, error) {
	if err := validateCount("Dequeue", count); err != nil {
		return nil, err
	}
	items, _ := q.dequeueWait(context.Background(), count)
	return items, nil
}

// DequeueNB removes and returns up to count items from the head without
// blocking. An empty queue yields an empty slice.
func (q *BoundedQueue[T]) DequeueNB(count int) ([]T, error) {
	if err := validateCount("DequeueNB", count); err != nil {
		return nil, err
	}

	q.mu.Lock()
	out := q.takeLocked(count)
	depth := len(q.items)
	q.mu.Unlock()

	q.reportDequeue(len(out), depth, false, 0)
	return out, nil
}

// DequeueTimed is Dequeue with a deadline. The timeout is relative to now,
// unless it is at least AbsoluteTimeoutThreshold, in which case it is read as
// a Unix-epoch time. When the deadline passes it returns whatever is queued
// at that moment; a timeout is never an error.
func (q *BoundedQueue[T]) DequeueTimed(timeout time.Duration, count int) ([]T, error) {
	if err := validateCount("DequeueTimed", count); err != nil {
		return nil, err
	}
	return q.dequeueBefore(deadlineFor(timeout, time.Now()), count), nil
}

// DequeueUntil is DequeueTimed with an absolute deadline. A zero deadline is
// rejected with ErrInvalidTimeout.
func (q *BoundedQueue[T]) DequeueUntil(deadline time.Time, count int) ([]T, error) {
	if err := validateDeadline("DequeueUntil", deadline); err != nil {
		return nil, err
	}
	if err := validateCount("DequeueUntil", count); err != nil {
		return nil, err
	}
	return q.dequeueBefore(deadline, count), nil
}

// DequeueContext is Dequeue bound to ctx. If ctx is done before count items
// are available it returns what is queued together with ctx.Err().
func (q *BoundedQueue[T]) DequeueContext(ctx context.Context, count int) ([]T, error) {
	if err := validateCount("DequeueContext", count); err != nil {
		return nil, err
	}
	return q.dequeueWait(ctx, count)
}

func (q *BoundedQueue[T]) dequeueBefore(deadline time.Time, count int) []T {
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	items, _ := q.dequeueWait(ctx, count)
	return items
}

// dequeueWait waits until count items are queued, the queue ends or ctx is
// done, then takes up to count items from the head.
func (q *BoundedQueue[T]) dequeueWait(ctx context.Context, count int) ([]T, error) {
	start := time.Now()
	blocked := false

	q.mu.Lock()
	if len(q.items) < count && !q.ended {
		blocked = true
		if ctx.Done() != nil {
			// The broadcast takes q.mu, so it cannot slip in between the
			// predicate check below and Wait.
			stop := context.AfterFunc(ctx, func() {
				q.mu.Lock()
				q.cond.Broadcast()
				q.mu.Unlock()
			})
			defer stop()
		}
		for len(q.items) < count && !q.ended && ctx.Err() == nil {
			q.cond.Wait()
		}
	}

	var err error
	if len(q.items) < count && !q.ended {
		err = ctx.Err()
	}
	out := q.takeLocked(count)
	if len(q.items) > 0 || q.ended {
		q.cond.Signal()
	}
	depth := len(q.items)
	q.mu.Unlock()

	q.reportDequeue(len(out), depth, blocked, time.Since(start))
	return out, err
}
