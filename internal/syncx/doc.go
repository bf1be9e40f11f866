// Package syncx holds the small concurrency helpers shared by the NATS bridge
// and the benchmark command: a thread-safe error collector, a one-shot latch
// and a WaitGroup that can be abandoned through a context.
package syncx
