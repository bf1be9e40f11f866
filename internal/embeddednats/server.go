package embeddednats

import (
	"context"
	"fmt"
	"net"
	"time"

	nserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// Server is a small facade around an in-process nats-server, used to run the
// queue bridge without external infrastructure.
type Server struct {
	s *nserver.Server
}

// DefaultOptions returns core-NATS options bound to a random loopback port
// with logging and signal handling disabled.
func DefaultOptions() *nserver.Options {
	return &nserver.Options{
		Host:   "127.0.0.1",
		Port:   nserver.RANDOM_PORT,
		NoSigs: true,
		NoLog:  true,
	}
}

// New creates a server without starting it. Nil opts means DefaultOptions.
func New(opts *nserver.Options) (*Server, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	ns, err := nserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("nats server create: %w", err)
	}
	return &Server{s: ns}, nil
}

// Run creates, starts and waits for a server to accept clients.
func Run(ctx context.Context, opts *nserver.Options) (*Server, error) {
	srv, err := New(opts)
	if err != nil {
		return nil, err
	}
	srv.Start()
	if err := srv.Ready(ctx); err != nil {
		srv.s.Shutdown()
		return nil, fmt.Errorf("nats server not ready: %w", err)
	}
	return srv, nil
}

// Start launches the server in its own goroutine.
func (e *Server) Start() { go e.s.Start() }

// ClientURL returns the nats:// URL clients should connect to.
func (e *Server) ClientURL() string { return e.s.ClientURL() }

// Connect dials the server with the given client options.
func (e *Server) Connect(opts ...nats.Option) (*nats.Conn, error) {
	return nats.Connect(e.s.ClientURL(), opts...)
}

// readyPoll bounds each ReadyForConnections call so Ready notices ctx.
const readyPoll = 25 * time.Millisecond

// Ready blocks until a client can connect or the context expires.
//
// The server resolves a random port in its accept loop, so ClientURL is only
// read after ReadyForConnections has reported the listener up.
func (e *Server) Ready(ctx context.Context) error {
	for !e.s.ReadyForConnections(readyPoll) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if e.canConnect() {
		return nil
	}

	t := time.NewTicker(readyPoll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if e.canConnect() {
				return nil
			}
		}
	}
}

func (e *Server) canConnect() bool {
	nc, err := nats.Connect(e.s.ClientURL(), nats.Timeout(100*time.Millisecond))
	if err != nil {
		return false
	}
	nc.Close()
	return true
}

// Running reports whether the server is accepting work.
func (e *Server) Running() bool { return e.s.Running() }

// ShutdownAndWait signals the server to stop and waits up to maxWait for it.
func (e *Server) ShutdownAndWait(ctx context.Context, maxWait time.Duration) error {
	e.s.Shutdown()
	wait := make(chan struct{})
	go func() { e.s.WaitForShutdown(); close(wait) }()
	select {
	case <-wait:
		return nil
	case <-time.After(maxWait):
		return fmt.Errorf("server wait timeout after %s", maxWait)
	case <-ctx.Done():
		return fmt.Errorf("server wait canceled: %w", ctx.Err())
	}
}

// Port returns the bound TCP port or 0 if unknown.
func (e *Server) Port() int {
	if a := e.s.Addr(); a != nil {
		if ta, ok := a.(*net.TCPAddr); ok {
			return ta.Port
		}
	}
	return 0
}
