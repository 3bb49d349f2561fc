package client

import (
	"context"
	"errors"
	"slices"

	"github.com/roach88/apiwrapper/auth"
	"github.com/roach88/apiwrapper/dump"
	"github.com/roach88/apiwrapper/transport"
)

// DebugClient is a Client that logs every call with its duration and call
// id, and optionally records it as a dump file.
//
// Successful calls log at Info and failed ones at Error, under the message
// "debug.<kind>". Params are only logged after SetLogParams(true), and
// then with secrets redacted. Traces are never logged.
type DebugClient struct {
	*Client
	writer    *dump.Writer
	redactor  *dump.Redactor
	dumping   bool
	logParams bool
}

// NewDebug creates a DebugClient.
func NewDebug(t transport.Transport, a *auth.Auth, opts ...Option) *DebugClient {
	return &DebugClient{Client: New(t, a, opts...), redactor: dump.NewRedactor()}
}

// EnableDumping records every following call to dir.
func (d *DebugClient) EnableDumping(dir string, opts ...dump.Option) error {
	w, err := dump.NewWriter(dir, opts...)
	if err != nil {
		return err
	}
	d.writer = w
	d.redactor = w.Redactor()
	d.dumping = true
	return nil
}

// SetDumping pauses or resumes recording. Resuming needs a prior
// EnableDumping.
func (d *DebugClient) SetDumping(on bool) {
	d.dumping = on && d.writer != nil
}

// IsDumping reports whether calls are being recorded.
func (d *DebugClient) IsDumping() bool {
	return d.dumping
}

// DumpWriter returns the dump writer, or nil before EnableDumping.
func (d *DebugClient) DumpWriter() *dump.Writer {
	return d.writer
}

// SetSecretKeys replaces the keys redacted from logged params. EnableDumping
// resets them to the writer's secret keys.
func (d *DebugClient) SetSecretKeys(keys ...string) {
	d.redactor = dump.NewRedactor(keys...)
}

// SetLogParams controls whether params are included in log records.
func (d *DebugClient) SetLogParams(on bool) {
	d.logParams = on
}

// CallAction invokes a named action.
func (d *DebugClient) CallAction(ctx context.Context, action string, params []any) (any, error) {
	params = nonNil(params)
	return d.withDebug(dump.KindAction, func(c *dump.Context) (any, error) {
		c.Set("action", action)
		c.Set(dump.KeyParams, params)
		return d.Client.CallAction(ctx, action, params)
	})
}

// CallFunction invokes module::function.
func (d *DebugClient) CallFunction(ctx context.Context, module, function string, params []any, a *auth.Auth) (any, error) {
	params = nonNil(params)
	return d.withDebug(dump.KindModuleFunction, func(c *dump.Context) (any, error) {
		c.Set("module_name", module)
		c.Set("function", function)
		c.Set(dump.KeyParams, params)
		return d.Client.CallFunction(ctx, module, function, params, a)
	})
}

// Module returns a proxy for the named module whose calls go through the
// DebugClient.
func (d *DebugClient) Module(name string) (*Module, error) {
	return NewModule(d, name, nil)
}

func (d *DebugClient) newContext() *dump.Context {
	if d.writer != nil {
		return d.writer.NewContext()
	}
	c := dump.NewContext()
	c.SetCallID(dump.UUIDv7{}.Generate())
	return c
}

func (d *DebugClient) withDebug(kind string, call func(c *dump.Context) (any, error)) (any, error) {
	c := d.newContext()
	c.StartTimer()

	ret, err := call(c)
	if err != nil {
		if d.dumping {
			if _, werr := d.writer.WriteError(kind, err, c); werr != nil {
				err = errors.Join(err, werr)
			}
		} else {
			c.SetError(err, true)
		}
		d.logger.Error("debug."+kind, d.logAttrs(c)...)
		return nil, err
	}

	if d.dumping {
		if _, werr := d.writer.WriteSuccess(kind, ret, c); werr != nil {
			d.logger.Error("debug."+kind, d.logAttrs(c)...)
			return ret, werr
		}
	}
	d.logger.Info("debug."+kind, d.logAttrs(c)...)
	return ret, nil
}

// logAttrs turns the context into sorted key/value log attributes.
func (d *DebugClient) logAttrs(c *dump.Context) []any {
	c.StopTimer()
	fields := c.Map()
	delete(fields, dump.KeyExceptionTrace)
	if !d.logParams {
		delete(fields, dump.KeyParams)
	} else if p, ok := fields[dump.KeyParams]; ok {
		fields[dump.KeyParams] = d.redactor.Redact(p)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		attrs = append(attrs, k, fields[k])
	}
	return attrs
}
