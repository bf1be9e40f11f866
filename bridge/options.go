package bridge

import (
	"time"

	"github.com/a2y-d5l/boundq/observability"
)

// Options configures a Source or a Sink.
type Options struct {
	// QueueGroup makes a Source join a NATS queue group so that several
	// sources share one subject.
	QueueGroup string
	// BatchSize is the number of messages a Sink waits for per dequeue.
	BatchSize int
	// FlushTimeout bounds the round trip used to confirm a subscription or
	// a published batch with the server.
	FlushTimeout time.Duration
	// EndOnDrain ends the queue once Source.Drain has stopped delivery.
	EndOnDrain bool
	Logger     observability.Logger
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		BatchSize:    1,
		FlushTimeout: 2 * time.Second,
	}
}

func buildOptions(opts []Option) Options {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.Default()
	}
	return cfg
}

func WithQueueGroup(name string) Option        { return func(o *Options) { o.QueueGroup = name } }
func WithBatchSize(n int) Option               { return func(o *Options) { o.BatchSize = n } }
func WithFlushTimeout(d time.Duration) Option  { return func(o *Options) { o.FlushTimeout = d } }
func WithEndOnDrain(on bool) Option            { return func(o *Options) { o.EndOnDrain = on } }
func WithLogger(l observability.Logger) Option { return func(o *Options) { o.Logger = l } }
