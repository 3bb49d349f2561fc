// Package transport defines the capability that performs a single RPC call
// against the remote API, and provides the HTTP implementation of it.
//
// Two call kinds exist: module function calls, addressed by (module,
// function) and authenticated with an auth.Auth, and action calls,
// addressed by a single name. Both take positional parameters and return
// the decoded JSON response.
//
// Failures are reported as *Error carrying the remote error class, numeric
// code, message, reference and trace.
package transport

import (
	"context"

	"github.com/roach88/apiwrapper/auth"
)

// Transport performs one RPC call.
type Transport interface {
	// Call invokes module::function with positional params.
	Call(ctx context.Context, module, function string, params []any, a *auth.Auth) (any, error)

	// CallAction invokes a named action with positional params.
	CallAction(ctx context.Context, action string, params []any) (any, error)

	// Server returns the configured API server.
	Server() string

	// ResourceURL returns the base URL for static resources (images, exports).
	ResourceURL() string
}
