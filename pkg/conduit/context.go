package conduit

import (
	"go.uber.org/zap"

	"conduit/pkg/transport"
)

// Context is the process-scoped binding consumed by Connect and Serve. It
// holds an optional stream stack and an optional channel transport
// capability, both fixed at construction; no call mutates a Context, so it
// is freely shared across goroutines without locking.
type Context struct {
	stack   transport.Stack
	channel transport.Channel
	log     *zap.Logger
}

// Option adjusts a Context at construction time.
type Option func(*Context)

// WithChannel links a channel transport in. Without it every channel
// resolution and connect fails with "channel transport not available".
func WithChannel(ch transport.Channel) Option {
	return func(c *Context) { c.channel = ch }
}

// WithLogger overrides the global zap logger for this context.
func WithLogger(l *zap.Logger) Option {
	return func(c *Context) { c.log = l }
}

// Init binds a stream stack. No validation happens here; a nil stack
// surfaces as "no stack bound" at the first stream connect or listen.
func Init(stack transport.Stack, opts ...Option) *Context {
	c := &Context{stack: stack, log: zap.L()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Default returns a context with no stream stack bound.
func Default(opts ...Option) *Context {
	return Init(nil, opts...)
}
