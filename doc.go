// Package boundq provides a thread-safe FIFO queue with an optional capacity
// limit and a configurable policy for batches that would overflow it.
//
// The implementation lives in focused subpackages:
//
//   - github.com/a2y-d5l/boundq/queue          - BoundedQueue, overflow policies and errors
//   - github.com/a2y-d5l/boundq/observability  - slog-based logging and in-memory metrics
//   - github.com/a2y-d5l/boundq/message        - message payloads for the NATS bridge
//   - github.com/a2y-d5l/boundq/bridge         - NATS subject to queue and queue to subject adapters
//
// The root package re-exports the queue API.
//
// Example usage:
//
//	q, err := boundq.New[string](boundq.Config{
//		Capacity: 100,
//		Policy:   boundq.TruncateWarn,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Producer
//	_ = q.Enqueue("a", "b", "c")
//	q.End()
//
//	// Consumer
//	for {
//		items, _ := q.Dequeue(2)
//		if len(items) == 0 {
//			break
//		}
//		fmt.Println(items)
//	}
package boundq
