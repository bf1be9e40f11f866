package bridge

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/a2y-d5l/boundq/internal/syncx"
	"github.com/a2y-d5l/boundq/message"
	"github.com/a2y-d5l/boundq/observability"
	"github.com/a2y-d5l/boundq/queue"
)

// Sink drains a BoundedQueue and publishes each message to NATS.
type Sink struct {
	nc      *nats.Conn
	subject string
	q       *queue.BoundedQueue[*message.Message]
	opts    Options
	log     observability.Logger

	published atomic.Uint64
	failed    atomic.Uint64
}

// NewSink creates a sink that publishes the contents of q to subject.
func NewSink(nc *nats.Conn, subject string, q *queue.BoundedQueue[*message.Message], opts ...Option) (*Sink, error) {
	if err := validate(nc, subject, q); err != nil {
		return nil, err
	}
	cfg := buildOptions(opts)
	return &Sink{
		nc:      nc,
		subject: subject,
		q:       q,
		opts:    cfg,
		log: cfg.Logger.With(
			observability.NATSSubject(subject),
			observability.QueueName(q.Name()),
		),
	}, nil
}

// Run publishes messages until the queue is ended and empty, in which case it
// returns nil, or until ctx is done, in which case it returns ctx.Err().
// Messages are taken BatchSize at a time and each batch is flushed before the
// next dequeue. A publish failure stops Run and is returned.
func (s *Sink) Run(ctx context.Context) error {
	for {
		batch, err := s.q.DequeueContext(ctx, s.opts.BatchSize)
		if perr := s.publish(batch); perr != nil {
			return perr
		}
		if err != nil {
			return err
		}
		// A short batch without an error means the queue has ended and is
		// now drained.
		if len(batch) < s.opts.BatchSize {
			s.log.Debug("sink finished", observability.MessageCount(int64(s.published.Load())))
			return nil
		}
	}
}

func (s *Sink) publish(batch []*message.Message) error {
	if len(batch) == 0 {
		return nil
	}

	errs := syncx.NewMultiError()
	for _, msg := range batch {
		if msg == nil {
			continue
		}
		if err := s.nc.PublishMsg(toNATS(s.subject, msg)); err != nil {
			s.failed.Add(1)
			errs.Add(fmt.Errorf("bridge: publish %s: %w", s.subject, err))
			continue
		}
		s.published.Add(1)
	}
	if err := s.nc.FlushTimeout(s.opts.FlushTimeout); err != nil {
		errs.Add(fmt.Errorf("bridge: flush %s: %w", s.subject, err))
	}

	if err := errs.ErrorOrNil(); err != nil {
		s.log.Error("sink publish failed",
			observability.IncomingCount(len(batch)),
			observability.ErrorField(err),
		)
		return err
	}
	return nil
}

// Published returns the number of messages successfully handed to NATS.
func (s *Sink) Published() uint64 { return s.published.Load() }

// Failed returns the number of messages NATS refused.
func (s *Sink) Failed() uint64 { return s.failed.Load() }

func toNATS(subject string, msg *message.Message) *nats.Msg {
	nm := nats.NewMsg(subject)
	nm.Data = msg.Data
	for k, v := range msg.Headers {
		nm.Header.Set(k, v)
	}
	if msg.ID != "" {
		nm.Header.Set(nats.MsgIdHdr, msg.ID)
	}
	return nm
}
