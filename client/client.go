// Package client is the programming surface of the API: a Client that
// performs action and module function calls over a transport.Transport, a
// Module proxy that addresses one module by name, and a DebugClient that
// logs every call and can record it to dump files.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/apiwrapper/auth"
	"github.com/roach88/apiwrapper/transport"
)

// Configuration errors, raised before any I/O.
var (
	// ErrNoAuth is returned for a module call without any auth.
	ErrNoAuth = errors.New("auth cannot be empty for the call")

	// ErrNoTransport is returned for a call before a transport is set.
	ErrNoTransport = errors.New("transport has to be set before the call")
)

// ActionCaller performs action calls.
type ActionCaller interface {
	CallAction(ctx context.Context, action string, params []any) (any, error)
}

// Caller performs action and module function calls. A nil auth means the
// caller's own auth.
type Caller interface {
	ActionCaller
	CallFunction(ctx context.Context, module, function string, params []any, a *auth.Auth) (any, error)
}

// Client performs calls over a transport with a default auth.
type Client struct {
	transport transport.Transport
	auth      *auth.Auth
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client. Both t and a may be nil and set later.
func New(t transport.Transport, a *auth.Auth, opts ...Option) *Client {
	c := &Client{
		transport: t,
		auth:      a,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTransport replaces the transport.
func (c *Client) SetTransport(t transport.Transport) {
	c.transport = t
}

// Transport returns the transport.
func (c *Client) Transport() transport.Transport {
	return c.transport
}

// SetAuth replaces the default auth.
func (c *Client) SetAuth(a *auth.Auth) {
	c.auth = a
}

// Auth returns the default auth.
func (c *Client) Auth() *auth.Auth {
	return c.auth
}

// CallAction invokes a named action.
func (c *Client) CallAction(ctx context.Context, action string, params []any) (any, error) {
	if c.transport == nil {
		return nil, ErrNoTransport
	}
	return c.transport.CallAction(ctx, action, nonNil(params))
}

// CallFunction invokes module::function with a, or with the client's auth
// when a is nil. An auth with a revalidation callback that is not valid
// yet is revalidated first.
func (c *Client) CallFunction(ctx context.Context, module, function string, params []any, a *auth.Auth) (any, error) {
	if a == nil {
		a = c.auth
	}
	if a == nil {
		return nil, ErrNoAuth
	}
	if c.transport == nil {
		return nil, ErrNoTransport
	}

	if a.CanRevalidate() && !a.IsValid() {
		if _, err := a.Revalidate(); err != nil {
			return nil, fmt.Errorf("revalidate auth for %s::%s: %w", module, function, err)
		}
	}

	c.logger.Debug("callFunction",
		"module", module,
		"function", function,
	)
	return c.transport.Call(ctx, module, function, nonNil(params), a)
}

// Module returns a proxy for the named module using the client's auth.
func (c *Client) Module(name string) (*Module, error) {
	return NewModule(c, name, nil)
}

// nonNil makes an absent params list an empty one, so that it is sent and
// recorded as [] rather than null.
func nonNil(params []any) []any {
	if params == nil {
		return []any{}
	}
	return params
}
