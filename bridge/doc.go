// Package bridge connects a BoundedQueue of messages to NATS subjects.
//
// A Source subscribes to a subject and enqueues every delivered message, so
// the queue's overflow policy decides what happens when consumers fall
// behind. A Sink dequeues in batches and republishes, stopping cleanly once
// the queue has been ended and drained.
//
//	q := queue.MustNew[*message.Message](queue.Config{Name: "ingest", Capacity: 1024, Policy: queue.TruncateWarn})
//	src, _ := bridge.NewSource(nc, "orders.>", q, bridge.WithEndOnDrain(true))
//	sink, _ := bridge.NewSink(nc, "orders.audit", q, bridge.WithBatchSize(32))
//	go sink.Run(ctx)
//	...
//	_ = src.Drain(ctx)
package bridge
