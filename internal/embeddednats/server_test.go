package embeddednats

import (
	"context"
	"sync"
	"testing"
	"time"

	nserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runTestServer starts a default server and shuts it down with the test.
func runTestServer(t *testing.T) *Server {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv, err := Run(ctx, nil)
	require.NoError(t, err, "server should start")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.ShutdownAndWait(ctx, 5*time.Second); err != nil {
			t.Logf("Warning: error shutting down test server: %v", err)
		}
	})
	return srv
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "127.0.0.1", opts.Host)
	assert.Equal(t, nserver.RANDOM_PORT, opts.Port)
	assert.True(t, opts.NoSigs)
	assert.True(t, opts.NoLog)
	assert.False(t, opts.JetStream)
}

func TestServer_New(t *testing.T) {
	t.Run("nil options use defaults", func(t *testing.T) {
		srv, err := New(nil)
		require.NoError(t, err)
		require.NotNil(t, srv)
		assert.False(t, srv.Running(), "New must not start the server")
	})

	t.Run("explicit options", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ServerName = "boundq-test"
		srv, err := New(opts)
		require.NoError(t, err)
		require.NotNil(t, srv)
	})
}

func TestServer_Run(t *testing.T) {
	srv := runTestServer(t)

	assert.True(t, srv.Running())
	assert.Greater(t, srv.Port(), 0)
	assert.Contains(t, srv.ClientURL(), "nats://")

	nc, err := srv.Connect(nats.Timeout(2 * time.Second))
	require.NoError(t, err)
	defer nc.Close()
	assert.True(t, nc.IsConnected())
}

func TestServer_RunResolvesRandomPort(t *testing.T) {
	// Several servers on random ports, each read from its own goroutine as
	// soon as Run returns.
	const n = 4
	urls := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv, err := Run(ctx, nil)
			if !assert.NoError(t, err) {
				return
			}
			defer srv.ShutdownAndWait(ctx, 5*time.Second)

			assert.Greater(t, srv.Port(), 0)
			assert.NotContains(t, srv.ClientURL(), ":-1")

			nc, err := srv.Connect(nats.Timeout(2 * time.Second))
			if assert.NoError(t, err) {
				nc.Close()
			}
			urls <- srv.ClientURL()
		})
	}
	wg.Wait()
	close(urls)

	assert.Len(t, urls, n)
	for u := range urls {
		assert.Contains(t, u, "nats://127.0.0.1:")
	}
}

func TestServer_ReadyAfterStart(t *testing.T) {
	srv, err := New(nil)
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.ShutdownAndWait(ctx, 5*time.Second)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, srv.Ready(ctx))
	assert.True(t, srv.Running())
	assert.Greater(t, srv.Port(), 0)
}

func TestServer_PublishSubscribe(t *testing.T) {
	srv := runTestServer(t)

	nc, err := srv.Connect()
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync("queue.test")
	require.NoError(t, err)
	require.NoError(t, nc.Publish("queue.test", []byte("hello")))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), msg.Data)
}

func TestServer_ReadyHonoursContext(t *testing.T) {
	srv, err := New(nil)
	require.NoError(t, err)

	// Never started, so Ready can only give up.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, srv.Ready(ctx), context.DeadlineExceeded)
}

func TestServer_ShutdownAndWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv, err := Run(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, srv.ShutdownAndWait(ctx, 5*time.Second))
	assert.False(t, srv.Running())

	_, err = srv.Connect(nats.Timeout(200*time.Millisecond), nats.NoReconnect())
	assert.Error(t, err)

	// A second shutdown is harmless.
	assert.NoError(t, srv.ShutdownAndWait(ctx, 5*time.Second))
}
