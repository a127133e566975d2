package conduit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"conduit/pkg/transport"
)

// ServeOptions tunes a Serve call. The zero value is valid.
type ServeOptions struct {
	// Timeout bounds how long a channel server waits for its single peer.
	// Stream listen registration is immediate, so it has nothing to bound
	// there. Zero means wait indefinitely.
	Timeout time.Duration
	// Workers, when positive, dispatches accept handlers on a bounded
	// goroutine pool instead of one goroutine per connection.
	Workers int
	// BufferHint sizes the channel server's rings. Ignored for stream
	// servers.
	BufferHint transport.BufferHint
}

// Task represents a running server. Stop is cooperative: it ends the
// listen registration best-effort but never tears down flows already
// handed to handlers; those are closed by their own handlers.
type Task struct {
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	mu  sync.Mutex
	err error
}

func newTask() *Task {
	return &Task{stop: make(chan struct{}), done: make(chan struct{})}
}

// Stop requests cooperative shutdown. Safe to call more than once.
func (t *Task) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Done is closed once the server has wound down.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err reports why the server ended, nil for a clean stop.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) setErr(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

// Serve performs a passive open for the given descriptor and invokes
// onAccept once per accepted connection. Stream servers accept until
// stopped, each handler running concurrently with further accepts; channel
// servers accept exactly one peer per call. Serve returns immediately with
// a cancellable task; configuration problems fail before anything starts.
func (c *Context) Serve(ctx context.Context, d Server, onAccept func(*Flow), opts ServeOptions) (*Task, error) {
	switch d.kind {
	case transport.KindStream:
		return c.serveStream(ctx, d, onAccept, opts)
	case transport.KindChannel:
		return c.serveChannel(ctx, d, onAccept, opts)
	default:
		return nil, configErrorf("server descriptor has no transport kind")
	}
}

func (c *Context) serveStream(ctx context.Context, d Server, onAccept func(*Flow), opts ServeOptions) (*Task, error) {
	if c.stack == nil {
		return nil, errNoStack
	}

	var pool *ants.Pool
	if opts.Workers > 0 {
		p, err := ants.NewPool(opts.Workers)
		if err != nil {
			return nil, fmt.Errorf("conduit: serve %s: %w", d, err)
		}
		pool = p
	}

	t := newTask()
	err := c.stack.Listen(d.port, func(conn transport.StreamConn) {
		f := newStreamFlow(conn)
		c.log.Debug("stream flow accepted",
			zap.String("server", d.String()),
			zap.String("flow_id", uuid.NewString()))
		if pool != nil {
			if perr := pool.Submit(func() { onAccept(f) }); perr == nil {
				return
			}
			// pool released mid-stop: fall back so the flow is not dropped
		}
		go onAccept(f)
	})
	if err != nil {
		if pool != nil {
			pool.Release()
		}
		return nil, fmt.Errorf("conduit: serve %s: %w", d, err)
	}
	c.log.Info("stream server listening", zap.String("server", d.String()))

	go func() {
		defer close(t.done)
		select {
		case <-ctx.Done():
			t.setErr(ctx.Err())
		case <-t.stop:
		}
		if sl, ok := c.stack.(transport.StopListener); ok {
			sl.StopListen(d.port)
		}
		if pool != nil {
			pool.Release()
		}
		c.log.Info("stream server stopped", zap.String("server", d.String()))
	}()
	return t, nil
}

func (c *Context) serveChannel(ctx context.Context, d Server, onAccept func(*Flow), opts ServeOptions) (*Task, error) {
	if c.channel == nil {
		return nil, errChannelUnavailable
	}

	t := newTask()
	go func() {
		defer close(t.done)

		var octx context.Context
		var cancel context.CancelFunc
		if opts.Timeout > 0 {
			octx, cancel = context.WithTimeout(ctx, opts.Timeout)
		} else {
			octx, cancel = context.WithCancel(ctx)
		}
		defer cancel()
		go func() {
			select {
			case <-t.stop:
				cancel()
			case <-octx.Done():
			}
		}()

		conn, err := c.channel.OpenServer(octx, d.domain, d.channelPort, opts.BufferHint)
		if err != nil {
			t.setErr(fmt.Errorf("conduit: serve %s: %w", d, err))
			return
		}
		c.log.Debug("channel flow accepted",
			zap.String("server", d.String()),
			zap.String("flow_id", uuid.NewString()))
		onAccept(newChannelFlow(conn))
	}()
	return t, nil
}
