package syncx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestMultiError(t *testing.T) {
	me := NewMultiError()
	require.NoError(t, me.ErrorOrNil())
	assert.Equal(t, "", me.Error())

	me.Add(nil)
	assert.Equal(t, 0, me.Len())

	me.Add(errBoom)
	assert.Equal(t, "boom", me.Error())

	me.Add(context.Canceled)
	err := me.ErrorOrNil()
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "2 errors occurred:\n[1] boom\n[2] context canceled", err.Error())

	errs := me.Errors()
	errs[0] = nil
	assert.Equal(t, errBoom, me.Errors()[0], "Errors returns a copy")
}

func TestMultiError_Concurrent(t *testing.T) {
	me := NewMultiError()
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			for range 50 {
				me.Add(errBoom)
			}
		})
	}
	wg.Wait()
	assert.Equal(t, 800, me.Len())
}

func TestLatch(t *testing.T) {
	l := NewLatch()
	assert.False(t, l.Released())
	assert.ErrorIs(t, l.WaitTimeout(10*time.Millisecond), ErrTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)

	go l.Release()
	require.NoError(t, l.Wait(context.Background()))
	l.Release()

	assert.True(t, l.Released())
	require.NoError(t, l.WaitTimeout(time.Millisecond))
	select {
	case <-l.Done():
	default:
		t.Fatal("Done channel should be closed")
	}
}

func TestGroup(t *testing.T) {
	t.Run("collects errors", func(t *testing.T) {
		g := NewGroup(context.Background())
		for i := range 4 {
			g.Go(func(context.Context) error {
				if i%2 == 0 {
					return errBoom
				}
				return nil
			})
		}
		err := g.Wait()
		require.ErrorIs(t, err, errBoom)

		var me *MultiError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, 2, me.Len())
	})

	t.Run("all succeed", func(t *testing.T) {
		g := NewGroup(context.Background())
		g.Go(func(context.Context) error { return nil })
		assert.NoError(t, g.Wait())
	})

	t.Run("WaitContext gives up", func(t *testing.T) {
		block := make(chan struct{})
		defer close(block)

		g := NewGroup(context.Background())
		g.Go(func(context.Context) error {
			<-block
			return nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, g.WaitContext(ctx), context.DeadlineExceeded)
	})

	t.Run("WaitContext returns errors", func(t *testing.T) {
		g := NewGroup(context.Background())
		g.Go(func(context.Context) error { return errBoom })
		assert.ErrorIs(t, g.WaitContext(context.Background()), errBoom)
	})

	t.Run("goroutines see the context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		g := NewGroup(ctx)
		started := make(chan struct{})
		var got error
		var wg sync.WaitGroup
		wg.Add(1)
		g.Go(func(ctx context.Context) error {
			defer wg.Done()
			close(started)
			<-ctx.Done()
			got = ctx.Err()
			return nil
		})
		<-started
		cancel()
		wg.Wait()
		assert.ErrorIs(t, got, context.Canceled)
	})
}
