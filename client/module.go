package client

import (
	"context"
	"errors"
	"strings"

	"github.com/roach88/apiwrapper/auth"
	"github.com/roach88/apiwrapper/iterator"
)

// ErrEmptyModuleName is returned by NewModule for a blank name.
var ErrEmptyModuleName = errors.New("module name for wrapper cannot be empty")

// Module addresses the functions of one remote module.
//
//	orders, _ := c.Module("ShopModule")
//	res, err := orders.Call(ctx, "getOrder", 42)
type Module struct {
	caller Caller
	name   string
	auth   *auth.Auth
}

// NewModule creates a proxy for module name on c. The name is trimmed. A
// nil auth defers to the caller's auth.
func NewModule(c Caller, name string, a *auth.Auth) (*Module, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyModuleName
	}
	return &Module{caller: c, name: name, auth: a}, nil
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Auth returns the module's own auth, or nil.
func (m *Module) Auth() *auth.Auth {
	return m.auth
}

// SetAuth sets the module's own auth.
func (m *Module) SetAuth(a *auth.Auth) {
	m.auth = a
}

// Call invokes function with positional args.
func (m *Module) Call(ctx context.Context, function string, args ...any) (any, error) {
	return m.caller.CallFunction(ctx, m.name, function, args, m.auth)
}

// listFetcher calls a list function as function(start, limit, args...)
// and decodes its {data, count} result.
func (m *Module) listFetcher(ctx context.Context, function string, args []any) iterator.Fetcher {
	return iterator.CallFetcher(func(start, limit int) (any, error) {
		params := append([]any{start, limit}, args...)
		return m.Call(ctx, function, params...)
	})
}

// List iterates every page of a list function. The function receives the
// page window as its first two params, followed by args (typically order
// and filters).
func (m *Module) List(ctx context.Context, function string, args ...any) *iterator.PaginatedListCall {
	return iterator.NewPaginated(m.listFetcher(ctx, function, args))
}

// ListByKey is List with items keyed by keyField ("id" when empty).
func (m *Module) ListByKey(ctx context.Context, function, keyField string, args ...any) *iterator.PaginatedKeyedListCall {
	return iterator.NewKeyedPaginated(m.listFetcher(ctx, function, args), keyField)
}
