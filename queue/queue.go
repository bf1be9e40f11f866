package queue

import (
	"sync"

	"github.com/a2y-d5l/boundq/observability"
)

// Cloner is implemented by values that must be deep-copied when they enter a
// queue, so the producer's handle and the queued value never share mutable
// state.
type Cloner[T any] interface {
	Clone() T
}

// BoundedQueue is a FIFO queue safe for concurrent use that never holds more
// than its configured capacity. All state is guarded by a single mutex; blocked
// consumers wait on a condition variable tied to it.
//
// Values are deep-copied on admission only when T implements Cloner. Any other
// reference type, such as a slice, map or pointer, is queued as is and still
// shares memory with the producer, so such values must not be mutated after
// Enqueue or Insert.
type BoundedQueue[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []T
	capacity int
	policy   OverflowPolicy
	ended    bool

	name    string
	log     observability.Logger
	metrics *observability.QueueMetrics
}

// New builds a queue from cfg and admits items as if by a first Enqueue, so
// the initial batch is subject to the same overflow policy.
func New[T any](cfg Config, items ...T) (*BoundedQueue[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	q := &BoundedQueue[T]{
		capacity: cfg.Capacity,
		policy:   cfg.Policy,
		name:     cfg.Name,
		log:      cfg.Logger,
	}
	q.cond = sync.NewCond(&q.mu)
	if q.log == nil {
		q.log = observability.Default()
	}
	if q.name != "" {
		q.log = q.log.With(observability.QueueName(q.name))
	}
	if cfg.Metrics != nil {
		q.metrics = observability.NewQueueMetrics(cfg.Metrics, cfg.Name)
	}

	if err := q.enqueue("New", items); err != nil {
		return nil, err
	}
	return q, nil
}

// MustNew is like New but panics on error.
func MustNew[T any](cfg Config, items ...T) *BoundedQueue[T] {
	q, err := New(cfg, items...)
	if err != nil {
		panic(err)
	}
	return q
}

// Enqueue appends items to the tail. It fails with ErrQueueClosed once End
// has been called, and with ErrCapacityExceeded when the batch overflows a
// RejectHard queue. In both cases nothing is admitted.
func (q *BoundedQueue[T]) Enqueue(items ...T) error {
	return q.enqueue("Enqueue", items)
}

func (q *BoundedQueue[T]) enqueue(op string, items []T) error {
	a, err := q.enqueueLocked(op, items)
	if err != nil {
		return err
	}
	q.report(a)
	return a.err()
}

func (q *BoundedQueue[T]) enqueueLocked(op string, items []T) (admission, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ended {
		return admission{}, ErrQueueClosed
	}
	if len(items) == 0 {
		return admission{}, nil
	}

	a := q.plan(op, len(q.items), len(items))
	if a.rejected {
		return a, nil
	}

	q.removeHead(a.evicted)
	q.items = appendOwned(q.items, items[a.trimmed:])
	a.depth = len(q.items)
	q.cond.Broadcast()
	return a, nil
}

// Insert splices items in at index, keeping the order of everything around
// them. A negative index counts back from the tail; indexes past either end
// are clamped, so a large index appends and a very negative one prepends.
//
// On overflow the oldest items are evicted from the segment before index
// first, then from the head of the new batch. Items after index are never
// evicted.
func (q *BoundedQueue[T]) Insert(index int, items ...T) error {
	a, err := q.insertLocked(index, items)
	if err != nil {
		return err
	}
	q.report(a)
	return a.err()
}

func (q *BoundedQueue[T]) insertLocked(index int, items []T) (admission, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ended {
		return admission{}, ErrQueueClosed
	}
	if len(items) == 0 {
		return admission{}, nil
	}

	idx := normalizeIndex(index, len(q.items))
	a := q.plan("Insert", idx, len(items))
	if a.rejected {
		return a, nil
	}

	before := q.items[a.evicted:idx]
	after := q.items[idx:]
	merged := make([]T, 0, len(before)+len(items)-a.trimmed+len(after))
	merged = append(merged, before...)
	merged = appendOwned(merged, items[a.trimmed:])
	merged = append(merged, after...)
	q.items = merged
	a.depth = len(q.items)
	q.cond.Broadcast()
	return a, nil
}

// End closes the queue for admission. Items already queued can still be
// dequeued, and every blocked consumer is woken so it can drain what is left.
// Calling End more than once is harmless.
func (q *BoundedQueue[T]) End() {
	q.mu.Lock()
	already := q.ended
	q.ended = true
	depth := len(q.items)
	q.cond.Broadcast()
	q.mu.Unlock()

	if !already {
		q.log.Debug("queue ended", observability.QueueDepth(depth), observability.Operation("End"))
	}
}

// Ended reports whether End has been called.
func (q *BoundedQueue[T]) Ended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ended
}

// Len returns the number of queued items.
func (q *BoundedQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Capacity returns the configured capacity, or Unbounded.
func (q *BoundedQueue[T]) Capacity() int { return q.capacity }

// Policy returns the configured overflow policy.
func (q *BoundedQueue[T]) Policy() OverflowPolicy { return q.policy }

// Name returns the configured queue name.
func (q *BoundedQueue[T]) Name() string { return q.name }

// Snapshot returns a copy of the queued items, head first.
func (q *BoundedQueue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}

// removeHead drops n items from the head. q.mu must be held.
func (q *BoundedQueue[T]) removeHead(n int) {
	if n <= 0 {
		return
	}
	clear(q.items[:n])
	q.items = q.items[n:]
	if len(q.items) == 0 {
		q.items = nil
	}
}

// takeLocked removes and returns up to count items from the head. q.mu must be held.
func (q *BoundedQueue[T]) takeLocked(count int) []T {
	n := min(count, len(q.items))
	out := make([]T, n)
	copy(out, q.items[:n])
	q.removeHead(n)
	return out
}

// appendOwned appends src to dst, cloning values that implement Cloner.
func appendOwned[T any](dst, src []T) []T {
	for _, v := range src {
		if c, ok := any(v).(Cloner[T]); ok {
			v = c.Clone()
		}
		dst = append(dst, v)
	}
	return dst
}
