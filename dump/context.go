package dump

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"runtime/debug"
	"time"

	"github.com/roach88/apiwrapper/transport"
)

// Context keys written by every dump.
const (
	KeySuccess        = "success"
	KeyCallID         = "call_id"
	KeyTimeMs         = "time_ms"
	KeyParams         = "params"
	KeyExtra          = "extra"
	KeyReturn         = "return"
	KeyExceptionClass = "exception_class"
	KeyException      = "exception"
	KeyExceptionRef   = "exception_ref"
	KeyExceptionTrace = "exception_trace"
)

// Context collects the fields of one call while it runs. It becomes the
// body of the dump file.
type Context struct {
	data    map[string]any
	now     func() time.Time
	started time.Time
	running bool
}

// NewContext creates a context with success set to true.
func NewContext() *Context {
	return newContext(time.Now)
}

func newContext(now func() time.Time) *Context {
	return &Context{
		data: map[string]any{KeySuccess: true},
		now:  now,
	}
}

// SetCallID stores the call id and returns it.
func (c *Context) SetCallID(id string) string {
	c.data[KeyCallID] = id
	return id
}

// CallID returns the stored call id.
func (c *Context) CallID() string {
	id, _ := c.data[KeyCallID].(string)
	return id
}

// StartTimer starts measuring the call duration.
func (c *Context) StartTimer() {
	c.started = c.now()
	c.running = true
}

// StopTimer stores time_ms if the timer runs, and returns the stored value.
// Calling it again keeps the first measurement.
func (c *Context) StopTimer() int64 {
	if c.running {
		elapsed := c.now().Sub(c.started)
		c.data[KeyTimeMs] = int64(math.Round(float64(elapsed) / float64(time.Millisecond)))
		c.running = false
	}
	ms, _ := c.data[KeyTimeMs].(int64)
	return ms
}

// SetError marks the call failed and records err. The server reference is
// stored for remote errors. withTrace adds the server trace when the error
// carries one, else the current goroutine's stack.
func (c *Context) SetError(err error, withTrace bool) {
	c.data[KeySuccess] = false
	c.data[KeyExceptionClass] = errorClass(err)
	c.data[KeyException] = err.Error()

	var te *transport.Error
	var re *RecordedError
	switch {
	case errors.As(err, &te):
		c.data[KeyExceptionRef] = te.Ref
	case errors.As(err, &re) && re.Ref != "":
		c.data[KeyExceptionRef] = re.Ref
	}

	if withTrace {
		if te != nil && te.Trace != "" {
			c.data[KeyExceptionTrace] = te.Trace
		} else {
			c.data[KeyExceptionTrace] = string(debug.Stack())
		}
	}
}

func errorClass(err error) string {
	var named interface{ ClassName() string }
	if errors.As(err, &named) && named.ClassName() != "" {
		return named.ClassName()
	}
	return fmt.Sprintf("%T", err)
}

// Set stores a field.
func (c *Context) Set(key string, value any) {
	c.data[key] = value
}

// Get returns a field.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.data[key]
	return v, ok
}

// Delete removes a field.
func (c *Context) Delete(key string) {
	delete(c.data, key)
}

// Success reports whether the call has not been marked failed.
func (c *Context) Success() bool {
	ok, _ := c.data[KeySuccess].(bool)
	return ok
}

// Map returns a shallow copy of the fields.
func (c *Context) Map() map[string]any {
	return maps.Clone(c.data)
}
