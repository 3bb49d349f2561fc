package mock

import (
	"context"

	"github.com/roach88/apiwrapper/auth"
)

// ActionFunc answers an action call.
type ActionFunc func(ctx context.Context, params []any) (any, error)

// FunctionFunc answers a module function call. a is the auth the call is
// made with.
type FunctionFunc func(ctx context.Context, params []any, a *auth.Auth) (any, error)

// Returns is an ActionFunc that always returns v.
func Returns(v any) ActionFunc {
	return func(context.Context, []any) (any, error) { return v, nil }
}

// FunctionReturns is a FunctionFunc that always returns v.
func FunctionReturns(v any) FunctionFunc {
	return func(context.Context, []any, *auth.Auth) (any, error) { return v, nil }
}

// Fails is a FunctionFunc that always fails with err.
func Fails(err error) FunctionFunc {
	return func(context.Context, []any, *auth.Auth) (any, error) { return nil, err }
}

// ReturnsInOrder is a FunctionFunc returning values one per call, then the
// last value for every further call.
func ReturnsInOrder(values ...any) FunctionFunc {
	i := 0
	return func(context.Context, []any, *auth.Auth) (any, error) {
		if len(values) == 0 {
			return nil, nil
		}
		v := values[min(i, len(values)-1)]
		i++
		return v, nil
	}
}

// Action is a stubbed action.
type Action struct {
	name string
	fn   ActionFunc
}

// NewAction creates a stub for action name. A nil fn returns nil.
func NewAction(name string, fn ActionFunc) *Action {
	return &Action{name: name, fn: fn}
}

// Name returns the action name.
func (a *Action) Name() string {
	return a.name
}

// Call runs the stub.
func (a *Action) Call(ctx context.Context, params []any) (any, error) {
	if a.fn == nil {
		return nil, nil
	}
	return a.fn(ctx, params)
}

// FunctionCaller performs real module function calls. *client.Client
// satisfies it.
type FunctionCaller interface {
	CallFunction(ctx context.Context, module, function string, params []any, a *auth.Auth) (any, error)
}

// Module is a stubbed module: a set of function stubs, optionally backed by
// a real caller for functions without a stub.
type Module struct {
	name      string
	auth      *auth.Auth
	functions map[string]FunctionFunc
	original  FunctionCaller
}

// NewModule creates an empty stubbed module.
func NewModule(name string) *Module {
	return &Module{name: name, functions: make(map[string]FunctionFunc)}
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Auth returns the module's own auth, or nil.
func (m *Module) Auth() *auth.Auth {
	return m.auth
}

// SetAuth sets the auth calls to this module are made with.
func (m *Module) SetAuth(a *auth.Auth) {
	m.auth = a
}

// On stubs function, replacing an earlier stub of it.
func (m *Module) On(function string, fn FunctionFunc) *Module {
	m.functions[function] = fn
	return m
}

// Handles reports whether function has a stub or falls through to a real
// caller.
func (m *Module) Handles(function string) bool {
	_, ok := m.functions[function]
	return ok || m.original != nil
}

func (m *Module) call(ctx context.Context, function string, params []any, a *auth.Auth) (any, error) {
	if fn, ok := m.functions[function]; ok {
		return fn(ctx, params, a)
	}
	if m.original != nil {
		return m.original.CallFunction(ctx, m.name, function, params, a)
	}
	return nil, notRegistered("function " + m.name + "::" + function)
}
