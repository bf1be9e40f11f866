package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/a2y-d5l/boundq/internal/syncx"
	"github.com/a2y-d5l/boundq/message"
	"github.com/a2y-d5l/boundq/observability"
	"github.com/a2y-d5l/boundq/queue"
)

var (
	ErrNilConn      = errors.New("bridge: nil NATS connection")
	ErrNilQueue     = errors.New("bridge: nil queue")
	ErrEmptySubject = errors.New("bridge: empty subject")
)

// Stats counts what a Source has seen. Accepted counts messages whose
// Enqueue returned nil; under the silent policies that includes messages the
// queue discarded, which only the queue's own metrics can tell apart.
type Stats struct {
	Received uint64 `json:"received"`
	Accepted uint64 `json:"accepted"`
	Dropped  uint64 `json:"dropped"`
}

// Source subscribes to a NATS subject and enqueues every delivered message
// into a BoundedQueue. Delivery stops when the queue is ended, when Stop is
// called, or when Drain completes.
type Source struct {
	nc      *nats.Conn
	subject string
	q       *queue.BoundedQueue[*message.Message]
	opts    Options
	log     observability.Logger

	mu  sync.Mutex
	sub *nats.Subscription

	stopped *syncx.Latch

	received atomic.Uint64
	accepted atomic.Uint64
	dropped  atomic.Uint64
}

// NewSource subscribes to subject and starts feeding q.
func NewSource(nc *nats.Conn, subject string, q *queue.BoundedQueue[*message.Message], opts ...Option) (*Source, error) {
	if err := validate(nc, subject, q); err != nil {
		return nil, err
	}

	cfg := buildOptions(opts)
	s := &Source{
		nc:      nc,
		subject: subject,
		q:       q,
		opts:    cfg,
		log: cfg.Logger.With(
			observability.NATSSubject(subject),
			observability.QueueName(q.Name()),
		),
		stopped: syncx.NewLatch(),
	}

	// Hold mu so a callback that sees a closed queue cannot observe s.sub
	// before it is assigned.
	s.mu.Lock()
	var err error
	if cfg.QueueGroup != "" {
		s.sub, err = nc.QueueSubscribe(subject, cfg.QueueGroup, s.handle)
	} else {
		s.sub, err = nc.Subscribe(subject, s.handle)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("bridge: subscribe %s: %w", subject, err)
	}

	if err := nc.FlushTimeout(cfg.FlushTimeout); err != nil {
		_ = s.Stop()
		return nil, fmt.Errorf("bridge: flush subscription %s: %w", subject, err)
	}

	s.log.Debug("source subscribed", observability.NATSQueueGroup(cfg.QueueGroup))
	return s, nil
}

func (s *Source) handle(m *nats.Msg) {
	s.received.Add(1)

	// Drops are counted after their log record, and before Stop releases Wait.
	err := s.q.Enqueue(fromNATS(m))
	switch {
	case err == nil:
		s.accepted.Add(1)
	case errors.Is(err, queue.ErrCapacityExceeded):
		s.log.Warn("source dropped message", observability.ErrorField(err))
		s.dropped.Add(1)
	case errors.Is(err, queue.ErrQueueClosed):
		s.log.Info("queue ended, stopping source")
		s.dropped.Add(1)
		_ = s.Stop()
	default:
		s.log.Error("source enqueue failed", observability.ErrorField(err))
		s.dropped.Add(1)
	}
}

// Stop removes the subscription immediately. Messages already buffered by the
// client are discarded. Stop is idempotent.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped.Released() {
		return nil
	}
	defer s.stopped.Release()

	if s.sub == nil {
		return nil
	}
	if err := s.sub.Unsubscribe(); err != nil &&
		!errors.Is(err, nats.ErrConnectionClosed) &&
		!errors.Is(err, nats.ErrBadSubscription) {
		return err
	}
	return nil
}

// Drain stops interest in the subject, lets already delivered messages reach
// the queue, and then ends the queue if WithEndOnDrain was given. It returns
// ctx.Err() when the drain does not finish in time.
func (s *Source) Drain(ctx context.Context) error {
	s.mu.Lock()
	sub := s.sub
	s.mu.Unlock()

	if sub != nil && !s.stopped.Released() {
		if err := sub.Drain(); err != nil &&
			!errors.Is(err, nats.ErrConnectionClosed) &&
			!errors.Is(err, nats.ErrBadSubscription) {
			return err
		}

		t := time.NewTicker(20 * time.Millisecond)
		defer t.Stop()
		for sub.IsValid() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
		s.stopped.Release()
	}

	if s.opts.EndOnDrain {
		s.q.End()
	}
	s.log.Debug("source drained", observability.MessageCount(int64(s.received.Load())))
	return nil
}

// Wait blocks until the source stops delivering or ctx is done.
func (s *Source) Wait(ctx context.Context) error {
	return s.stopped.Wait(ctx)
}

// Stats returns a snapshot of the source counters.
func (s *Source) Stats() Stats {
	return Stats{
		Received: s.received.Load(),
		Accepted: s.accepted.Load(),
		Dropped:  s.dropped.Load(),
	}
}

// Subject returns the subscribed subject.
func (s *Source) Subject() string { return s.subject }

func fromNATS(m *nats.Msg) *message.Message {
	msg := message.New(m.Subject, m.Data)
	for k, vv := range m.Header {
		if len(vv) > 0 {
			msg.Headers[k] = vv[0]
		}
	}
	msg.ID = msg.Headers.GetMessageID()
	return msg
}

func validate(nc *nats.Conn, subject string, q *queue.BoundedQueue[*message.Message]) error {
	switch {
	case nc == nil:
		return ErrNilConn
	case q == nil:
		return ErrNilQueue
	case subject == "":
		return ErrEmptySubject
	}
	return nil
}
