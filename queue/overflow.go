package queue

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/a2y-d5l/boundq/observability"
)

// admission is the outcome of fitting one batch into the queue.
type admission struct {
	op       string
	policy   OverflowPolicy
	capacity int
	pending  int // queue length before the batch
	incoming int
	evicted  int // existing items dropped from the head
	trimmed  int // incoming items dropped from the batch head
	depth    int // queue length afterwards
	overflow bool
	rejected bool
}

func (a admission) admitted() int { return a.incoming - a.trimmed }

func (a admission) err() error {
	if a.rejected && a.policy == RejectHard {
		return fmt.Errorf("queue: %s: %d pending + %d incoming > capacity %d: %w",
			a.op, a.pending, a.incoming, a.capacity, ErrCapacityExceeded)
	}
	return nil
}

// plan applies the overflow policy to a batch of incoming items. evictable is
// how many existing items, counted from the head, may be dropped to make room.
// q.mu must be held; plan does not mutate the queue.
func (q *BoundedQueue[T]) plan(op string, evictable, incoming int) admission {
	a := admission{
		op:       op,
		policy:   q.policy,
		capacity: q.capacity,
		pending:  len(q.items),
		incoming: incoming,
		depth:    len(q.items),
	}
	if q.capacity == Unbounded || a.pending+incoming <= q.capacity {
		return a
	}

	a.overflow = true
	if q.policy.Rejects() {
		a.rejected = true
		return a
	}

	excess := a.pending + incoming - q.capacity
	a.evicted = min(excess, evictable)
	a.trimmed = min(excess-a.evicted, incoming)
	return a
}

// report emits metrics and diagnostics for a. It must be called without q.mu held.
func (q *BoundedQueue[T]) report(a admission) {
	if a.incoming == 0 {
		return
	}

	if q.metrics != nil {
		if a.rejected {
			q.metrics.RecordRejected(a.policy.String())
		} else {
			q.metrics.RecordAdmission(a.admitted(), a.evicted, a.trimmed)
			q.metrics.RecordDepth(a.depth)
		}
	}

	if !a.overflow {
		return
	}

	fields := []slog.Attr{
		observability.Operation(a.op),
		observability.QueuePolicy(a.policy.String()),
		observability.QueueCapacity(a.capacity),
		observability.QueueDepth(a.pending),
		observability.IncomingCount(a.incoming),
	}
	switch {
	case a.rejected && a.policy.Warns():
		q.log.Warn("queue capacity exceeded, batch rejected", fields...)
	case a.rejected && a.policy == RejectHard:
		q.log.Debug("queue capacity exceeded, batch refused", fields...)
	case a.policy.Warns():
		fields = append(fields, observability.EvictedCount(a.evicted), observability.TrimmedCount(a.trimmed))
		q.log.Warn("queue capacity exceeded, truncating", fields...)
	}
}

// reportDequeue emits metrics for items leaving the queue. It must be called
// without q.mu held.
func (q *BoundedQueue[T]) reportDequeue(n, depth int, blocked bool, waited time.Duration) {
	if q.metrics == nil {
		return
	}
	q.metrics.RecordDequeued(n)
	q.metrics.RecordDepth(depth)
	if blocked {
		q.metrics.RecordWait(waited)
	}
}
