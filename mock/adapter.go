package mock

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/roach88/apiwrapper/auth"
	"github.com/roach88/apiwrapper/dump"
)

// Server is what Adapter reports as its server.
const Server = "MOCK"

// Adapter is a transport.Transport answering calls from stubs.
//
// It is not safe for concurrent use.
type Adapter struct {
	resourceURL string
	reader      *dump.Reader
	logger      *slog.Logger

	actions map[string]*Action
	modules map[string]*Module

	// returns maps match keys to the record that answers them. It is shared
	// by every dump-backed stub.
	returns map[string]*dump.Record
	used    []string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger for registrations.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithReader sets the reader for dump files, e.g. one with custom kinds.
func WithReader(r *dump.Reader) Option {
	return func(a *Adapter) { a.reader = r }
}

// WithResourceURL sets the resource URL.
func WithResourceURL(url string) Option {
	return func(a *Adapter) { a.resourceURL = url }
}

// New creates an Adapter without stubs.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		reader:  dump.NewReader(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		actions: make(map[string]*Action),
		modules: make(map[string]*Module),
		returns: make(map[string]*dump.Record),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Server returns "MOCK".
func (a *Adapter) Server() string {
	return Server
}

// ResourceURL returns the resource URL, or the server when none is set.
func (a *Adapter) ResourceURL() string {
	if a.resourceURL == "" {
		return a.Server()
	}
	return a.resourceURL
}

// SetResourceURL sets the resource URL.
func (a *Adapter) SetResourceURL(url string) {
	a.resourceURL = url
}

func (a *Adapter) String() string {
	return "MockAdapter"
}

// CallAction answers an action call from its stub.
func (a *Adapter) CallAction(ctx context.Context, action string, params []any) (any, error) {
	stub, ok := a.actions[action]
	if !ok {
		return nil, notRegistered("action " + action)
	}
	return stub.Call(ctx, params)
}

// Call answers a module function call from the module's stub. The module's
// own auth is used when it has one; otherwise it adopts the auth of the
// call.
func (a *Adapter) Call(ctx context.Context, module, function string, params []any, au *auth.Auth) (any, error) {
	m, ok := a.modules[module]
	if !ok {
		return nil, notRegistered("module " + module)
	}
	if m.Auth() == nil {
		m.SetAuth(au)
	}
	return m.call(ctx, function, params, m.Auth())
}

// RegisterAction adds an action stub.
func (a *Adapter) RegisterAction(stub *Action, overwrite bool) error {
	name := stub.Name()
	if _, exists := a.actions[name]; exists && !overwrite {
		return alreadyRegistered("action " + name)
	}
	a.actions[name] = stub
	a.logger.Debug("registered action", "name", name)
	return nil
}

// WithAction stubs action name with fn.
func (a *Adapter) WithAction(name string, fn ActionFunc, overwrite bool) error {
	return a.RegisterAction(NewAction(name, fn), overwrite)
}

// RegisterModule adds a module stub.
func (a *Adapter) RegisterModule(m *Module, overwrite bool) error {
	name := m.Name()
	if _, exists := a.modules[name]; exists && !overwrite {
		return alreadyRegistered("module " + name)
	}
	a.modules[name] = m
	a.logger.Debug("registered module", "name", name)
	return nil
}

// WithModule passes the stub of module name to configure, creating and
// registering it first if needed.
func (a *Adapter) WithModule(name string, configure func(m *Module)) error {
	m, ok := a.modules[name]
	if !ok {
		m = NewModule(name)
		if err := a.RegisterModule(m, false); err != nil {
			return err
		}
	}
	if configure != nil {
		configure(m)
	}
	return nil
}

// WithOriginalModule registers module name backed by a real caller:
// functions stubbed by configure are answered locally, all others are
// passed to original. If original has an Auth method, its auth is used
// for the module.
func (a *Adapter) WithOriginalModule(original FunctionCaller, name string, configure func(m *Module)) error {
	m := NewModule(name)
	m.original = original
	if withAuth, ok := original.(interface{ Auth() *auth.Auth }); ok {
		m.SetAuth(withAuth.Auth())
	}
	if err := a.RegisterModule(m, false); err != nil {
		return err
	}
	if configure != nil {
		configure(m)
	}
	return nil
}

// RegisterDumpFile reads a dump file and registers it; see RegisterRecord.
func (a *Adapter) RegisterDumpFile(path string, matchParams bool) error {
	rec, err := a.reader.Read(path)
	if err != nil {
		return err
	}
	if err := a.RegisterRecord(rec, matchParams); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// RegisterDumpFiles registers each path, joined to prefix when prefix is
// not empty.
func (a *Adapter) RegisterDumpFiles(paths []string, prefix string, matchParams bool) error {
	for _, path := range paths {
		if prefix != "" {
			path = filepath.Join(prefix, path)
		}
		if err := a.RegisterDumpFile(path, matchParams); err != nil {
			return err
		}
	}
	return nil
}

// RegisterRecord makes rec answer calls to its subject. With matchParams
// it only answers calls whose params hash like the recorded ones;
// otherwise it answers any call. A later record for the same key replaces
// an earlier one.
func (a *Adapter) RegisterRecord(rec *dump.Record, matchParams bool) error {
	key := rec.MatchKey()
	if matchParams {
		var err error
		if key, err = rec.MatchKeyForRecordedParams(); err != nil {
			return err
		}
	}

	switch rec.Type() {
	case dump.KindAction:
		replay := func(_ context.Context, params []any) (any, error) {
			return a.resolve(rec, params)
		}
		if err := a.WithAction(rec.ActionName(), replay, true); err != nil {
			return err
		}
	case dump.KindModuleFunction:
		replay := func(_ context.Context, params []any, _ *auth.Auth) (any, error) {
			return a.resolve(rec, params)
		}
		if err := a.WithModule(rec.ModuleName(), func(m *Module) { m.On(rec.Function(), replay) }); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown type %s for %s", rec.Type(), rec.Filename())
	}

	a.returns[key] = rec
	a.logger.Debug("registered dump", "key", key, "file", rec.Filename())
	return nil
}

// resolve finds the record answering a call to the subject of rec.
func (a *Adapter) resolve(rec *dump.Record, params []any) (any, error) {
	key, err := rec.MatchKeyWithParams(params)
	if err != nil {
		return nil, err
	}
	hit, ok := a.returns[key]
	if !ok {
		key = rec.MatchKey()
		if hit, ok = a.returns[key]; !ok {
			return nil, &MissError{Key: key, Args: params}
		}
	}
	a.used = append(a.used, key)
	return hit.Outcome()
}

// UsedReturns returns the match keys that answered calls, in call order.
func (a *Adapter) UsedReturns() []string {
	return slices.Clone(a.used)
}

// Registered returns the registered action and module names, sorted.
func (a *Adapter) Registered() (actions, modules []string) {
	for name := range a.actions {
		actions = append(actions, name)
	}
	for name := range a.modules {
		modules = append(modules, name)
	}
	slices.Sort(actions)
	slices.Sort(modules)
	return actions, modules
}
