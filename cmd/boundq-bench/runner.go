package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/a2y-d5l/boundq/bridge"
	"github.com/a2y-d5l/boundq/internal/syncx"
	"github.com/a2y-d5l/boundq/message"
	"github.com/a2y-d5l/boundq/observability"
	"github.com/a2y-d5l/boundq/queue"
)

// pollInterval bounds how long an idle consumer waits before rechecking
// whether the queue has ended.
const pollInterval = 50 * time.Millisecond

// drainTimeout bounds the wind-down after producers stop.
const drainTimeout = 30 * time.Second

// outboxBatches sizes the NATS-mode outbox in producer batches.
const outboxBatches = 64

// Bounds of the pause a producer takes after a hard reject.
const (
	minRejectBackoff = 100 * time.Microsecond
	maxRejectBackoff = 5 * time.Millisecond
)

// backoff is a doubling pause for producers facing a full RejectHard queue.
type backoff struct {
	next time.Duration
}

// Wait sleeps for the current delay, or until ctx is done, then doubles the
// delay up to maxRejectBackoff.
func (b *backoff) Wait(ctx context.Context) {
	if b.next < minRejectBackoff {
		b.next = minRejectBackoff
	}
	t := time.NewTimer(b.next)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	b.next = min(2*b.next, maxRejectBackoff)
}

// Reset returns the delay to its minimum after a successful put.
func (b *backoff) Reset() { b.next = minRejectBackoff }

// Result holds the counters of one scenario run.
type Result struct {
	Scenario      Scenario `json:"scenario"`
	Produced      int64    `json:"produced"`
	Admitted      int64    `json:"admitted"`
	Evicted       int64    `json:"evicted"`
	Trimmed       int64    `json:"trimmed"`
	Rejected      int64    `json:"rejected_batches"`
	Consumed      int64    `json:"consumed"`
	Duration      string   `json:"duration"`
	ActualElapsed string   `json:"actual_elapsed"`
	Throughput    float64  `json:"throughput_msgs_sec"`
	Timestamp     int64    `json:"timestamp"`
	GoVersion     string   `json:"go_version"`
}

// Runner executes scenarios. NATS is only needed for scenarios with NATS set.
type Runner struct {
	Logger observability.Logger
	NATS   *nats.Conn
}

// pipeline is where producers put items and where consumers take them from.
// For in-process runs both ends are the same queue.
type pipeline[T any] struct {
	put    func(items ...T) error
	out    *queue.BoundedQueue[T]
	finish func(ctx context.Context) error
}

// Run executes sc until its duration elapses or ctx is done, then drains.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Result, error) {
	if err := sc.Validate(); err != nil {
		return Result{}, err
	}

	collector := observability.NewInMemoryMetricsCollector()
	cfg := queue.Config{
		Name:     sc.Name,
		Capacity: sc.Capacity,
		Policy:   sc.Policy,
		Logger:   r.logger(),
		Metrics:  collector,
	}

	var (
		res Result
		err error
	)
	if sc.NATS {
		res, err = r.runNATS(ctx, sc, cfg)
	} else {
		res, err = r.runLocal(ctx, sc, cfg)
	}
	if err != nil {
		return Result{}, err
	}

	labels := observability.NewQueueMetrics(collector, sc.Name).Labels()
	res.Admitted = counter(collector, observability.MetricItemsAdmitted, labels)
	res.Evicted = counter(collector, observability.MetricItemsEvicted, labels)
	res.Trimmed = counter(collector, observability.MetricItemsTrimmed, labels)
	for _, m := range collector.GetMetrics() {
		if m.Name == observability.MetricBatchesRejected {
			res.Rejected += int64(m.Value)
		}
	}
	return res, nil
}

func (r *Runner) runLocal(ctx context.Context, sc Scenario, cfg queue.Config) (Result, error) {
	q, err := queue.New[int64](cfg)
	if err != nil {
		return Result{}, err
	}
	p := pipeline[int64]{
		put: q.Enqueue,
		out: q,
		finish: func(context.Context) error {
			q.End()
			return nil
		},
	}
	return drive(ctx, sc, p, func(i int64) int64 { return i })
}

func (r *Runner) runNATS(ctx context.Context, sc Scenario, cfg queue.Config) (Result, error) {
	if r.NATS == nil {
		return Result{}, fmt.Errorf("scenario %q: NATS mode needs a connection", sc.Name)
	}

	subject := "boundq.bench." + strconv.FormatInt(time.Now().UnixNano(), 36)
	// The outbox refuses rather than grows when NATS falls behind, so
	// producers are throttled to what the transport carries.
	outbox := queue.MustNew[*message.Message](queue.Config{
		Name:     sc.Name + ".outbox",
		Capacity: outboxBatches * sc.Batch,
		Policy:   queue.RejectHard,
		Logger:   observability.Discard(),
	})
	q, err := queue.New[*message.Message](cfg)
	if err != nil {
		return Result{}, err
	}

	src, err := bridge.NewSource(r.NATS, subject, q, bridge.WithEndOnDrain(true), bridge.WithLogger(r.logger()))
	if err != nil {
		return Result{}, err
	}
	sink, err := bridge.NewSink(r.NATS, subject, outbox, bridge.WithBatchSize(sc.Batch), bridge.WithLogger(r.logger()))
	if err != nil {
		_ = src.Stop()
		return Result{}, err
	}

	sinkDone := make(chan error, 1)
	go func() { sinkDone <- sink.Run(context.Background()) }()

	p := pipeline[*message.Message]{
		put: outbox.Enqueue,
		out: q,
		finish: func(ctx context.Context) error {
			outbox.End()
			if err := <-sinkDone; err != nil {
				_ = src.Stop()
				q.End()
				return err
			}
			return src.Drain(ctx)
		},
	}
	return drive(ctx, sc, p, func(i int64) *message.Message {
		return message.New(subject, strconv.AppendInt(nil, i, 10))
	})
}

// drive runs producers for sc.Duration, then finishes the pipeline and lets
// consumers drain whatever is left.
func drive[T any](ctx context.Context, sc Scenario, p pipeline[T], gen func(int64) T) (Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, sc.Duration)
	defer cancel()

	var (
		seq      atomic.Int64
		produced atomic.Int64
		consumed atomic.Int64
	)
	start := time.Now()

	producers := syncx.NewGroup(runCtx)
	for range sc.Producers {
		producers.Go(func(ctx context.Context) error {
			batch := make([]T, sc.Batch)
			var pause backoff
			for ctx.Err() == nil {
				first := seq.Add(int64(sc.Batch)) - int64(sc.Batch)
				for i := range batch {
					batch[i] = gen(first + int64(i))
				}
				err := p.put(batch...)
				switch {
				case err == nil:
					produced.Add(int64(sc.Batch))
					pause.Reset()
				case errors.Is(err, queue.ErrCapacityExceeded):
					// A hard reject leaves the queue full until consumers catch up.
					pause.Wait(ctx)
				case errors.Is(err, queue.ErrQueueClosed):
					return nil
				default:
					return err
				}
			}
			return nil
		})
	}

	consumers := syncx.NewGroup(context.Background())
	for range sc.Consumers {
		consumers.Go(func(context.Context) error {
			for {
				items, err := p.out.DequeueTimed(pollInterval, sc.Batch)
				if err != nil {
					return err
				}
				consumed.Add(int64(len(items)))
				if len(items) == 0 && p.out.Ended() {
					return nil
				}
			}
		})
	}

	errs := syncx.NewMultiError()
	errs.Add(producers.Wait())

	finishCtx, finishCancel := context.WithTimeout(context.Background(), drainTimeout)
	defer finishCancel()
	errs.Add(p.finish(finishCtx))
	errs.Add(consumers.WaitContext(finishCtx))

	elapsed := time.Since(start)
	if err := errs.ErrorOrNil(); err != nil {
		return Result{}, err
	}

	return Result{
		Scenario:      sc,
		Produced:      produced.Load(),
		Consumed:      consumed.Load(),
		Duration:      sc.Duration.String(),
		ActualElapsed: elapsed.String(),
		Throughput:    float64(consumed.Load()) / elapsed.Seconds(),
		Timestamp:     time.Now().Unix(),
		GoVersion:     runtime.Version(),
	}, nil
}

func (r *Runner) logger() observability.Logger {
	if r.Logger == nil {
		return observability.Discard()
	}
	return r.Logger
}

func counter(c observability.MetricsCollector, name string, labels map[string]string) int64 {
	if m, ok := c.GetMetric(name, labels); ok {
		return int64(m.Value)
	}
	return 0
}
