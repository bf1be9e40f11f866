package syncx

import (
	"context"
	"sync"
)

// Group runs goroutines that share a context and collects their errors.
// Unlike errgroup, a failing goroutine does not cancel the others.
type Group struct {
	ctx  context.Context
	wg   sync.WaitGroup
	errs *MultiError
}

// NewGroup returns a group whose goroutines receive ctx.
func NewGroup(ctx context.Context) *Group {
	return &Group{ctx: ctx, errs: NewMultiError()}
}

// Go runs fn in a new goroutine. A non-nil error is kept for Wait.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.wg.Go(func() {
		g.errs.Add(fn(g.ctx))
	})
}

// Wait blocks until every goroutine has returned and reports their errors.
func (g *Group) Wait() error {
	g.wg.Wait()
	return g.errs.ErrorOrNil()
}

// WaitContext is Wait that gives up when ctx is done, returning ctx.Err()
// while goroutines may still be running.
func (g *Group) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return g.errs.ErrorOrNil()
	case <-ctx.Done():
		return ctx.Err()
	}
}
