// Package queue provides BoundedQueue, a FIFO queue for handing values between
// goroutines that never grows past a configured capacity.
//
// Every operation runs under one mutex. Dequeue, DequeueTimed, DequeueUntil
// and DequeueContext release it while they wait on a condition variable for
// enough items, the end of the queue, or their deadline. All other operations
// return without blocking.
//
// When an Enqueue or Insert would exceed the capacity, the queue's
// OverflowPolicy decides the outcome before anything is mutated:
//
//	TruncateSilent  evict the oldest items until the batch fits (default)
//	TruncateWarn    same, and log a warning
//	RejectSilent    admit nothing, report success
//	RejectWarn      admit nothing, report success, log a warning
//	RejectHard      admit nothing, return ErrCapacityExceeded
//
// A typical producer/consumer pair:
//
//	q, err := queue.New[Job](queue.Config{Name: "jobs", Capacity: 64})
//	if err != nil {
//		return err
//	}
//
//	go func() {
//		defer q.End()
//		for _, j := range jobs {
//			_ = q.Enqueue(j)
//		}
//	}()
//
//	for {
//		batch, _ := q.Dequeue(8)
//		if len(batch) == 0 {
//			return nil // ended and drained
//		}
//		process(batch)
//	}
//
// Admitted values are copied into the queue's own buffer. Values whose type
// implements Cloner are deep-copied as well, so reference-typed payloads
// cannot be mutated by the producer after admission.
package queue
