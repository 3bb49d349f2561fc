package dump

import (
	"encoding/json"
	"time"

	"github.com/roach88/apiwrapper/internal/ir"
)

// File metadata keys.
const (
	TypeKey      = "_type"
	VersionKey   = "_version"
	TimestampKey = "_timestamp"
)

// Version is the dump format version written by Writer.
const Version = ir.DumpVersion

// DataHash returns the hex SHA-256 of the canonical JSON of v. Object keys
// are sorted in natural order at every level; lists keep their order.
func DataHash(v any) (string, error) {
	return ir.Hash(v)
}

// MatchKey builds the params-insensitive match key of a call.
func MatchKey(kind, subject string) string {
	return kind + "." + subject
}

// ActionMatchKey is the match key of calls to action.
func ActionMatchKey(action string) string {
	return MatchKey(KindAction, action)
}

// ModuleFunctionMatchKey is the match key of calls to module::function.
func ModuleFunctionMatchKey(module, function string) string {
	return MatchKey(KindModuleFunction, module+"::"+function)
}

// WithParams qualifies a match key by the hash of params.
func WithParams(key string, params any) (string, error) {
	h, err := DataHash(params)
	if err != nil {
		return "", err
	}
	return key + "." + h, nil
}

// Record is one dump file as read back. It is immutable.
type Record struct {
	kind     string
	subject  string
	data     map[string]any
	filename string
}

// NewRecord builds a Record from the fields of a dump, using registry to
// resolve its _type. It does not validate the file format; use Reader for
// files.
func NewRecord(registry *Registry, data map[string]any) (*Record, error) {
	kindName, _ := data[TypeKey].(string)
	k, err := registry.mustLookup(kindName, "")
	if err != nil {
		return nil, err
	}
	return newRecord(k, data, "")
}

func newRecord(k Kind, data map[string]any, filename string) (*Record, error) {
	subject, err := k.Describe(data)
	if err != nil {
		return nil, &Error{
			Code:    ErrCodeInvalidRecord,
			Path:    filename,
			Message: "invalid " + k.Name + " dump",
			Err:     err,
		}
	}
	return &Record{
		kind:     k.Name,
		subject:  subject,
		data:     ir.Clone(data).(map[string]any),
		filename: filename,
	}, nil
}

// Type returns the _type of the record.
func (r *Record) Type() string {
	return r.kind
}

// Subject returns the call subject, e.g. "ShopModule::listOrders".
func (r *Record) Subject() string {
	return r.subject
}

// Filename returns the base name of the file the record was read from.
func (r *Record) Filename() string {
	return r.filename
}

// Field returns a copy of a raw field of the dump.
func (r *Record) Field(name string) (any, bool) {
	v, ok := r.data[name]
	return ir.Clone(v), ok
}

func (r *Record) stringField(name string) string {
	s, _ := r.data[name].(string)
	return s
}

// ActionName returns the action of an action record.
func (r *Record) ActionName() string {
	return r.stringField("action")
}

// ModuleName returns the module of a module function record.
func (r *Record) ModuleName() string {
	return r.stringField("module_name")
}

// Function returns the function of a module function record.
func (r *Record) Function() string {
	return r.stringField("function")
}

// Params returns a copy of the recorded (redacted) params.
func (r *Record) Params() any {
	return ir.Clone(r.data[KeyParams])
}

// Return returns a copy of the recorded return value; ok is false for
// failures. Callers may modify it freely.
func (r *Record) Return() (any, bool) {
	v, ok := r.data[KeyReturn]
	return ir.Clone(v), ok
}

// Success reports whether the recorded call succeeded.
func (r *Record) Success() bool {
	if ok, isBool := r.data[KeySuccess].(bool); isBool {
		return ok
	}
	_, hasReturn := r.data[KeyReturn]
	return hasReturn
}

// Failure returns the recorded error, or nil for a success record.
func (r *Record) Failure() *RecordedError {
	if r.Success() {
		return nil
	}
	return &RecordedError{
		Class:    r.stringField(KeyExceptionClass),
		Message:  r.stringField(KeyException),
		Ref:      r.stringField(KeyExceptionRef),
		Trace:    r.stringField(KeyExceptionTrace),
		MatchKey: r.MatchKey(),
	}
}

// Outcome returns the recorded return value, or the recorded error.
func (r *Record) Outcome() (any, error) {
	if failure := r.Failure(); failure != nil {
		return nil, failure
	}
	v, _ := r.Return()
	return v, nil
}

// CallID returns the call id.
func (r *Record) CallID() string {
	return r.stringField(KeyCallID)
}

// TimeMs returns the recorded call duration in milliseconds.
func (r *Record) TimeMs() int64 {
	switch v := r.data[KeyTimeMs].(type) {
	case json.Number:
		n, _ := v.Int64()
		return n
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Timestamp returns the time the file was written; ok is false when the
// _timestamp field is missing or not RFC 3339.
func (r *Record) Timestamp() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, r.stringField(TimestampKey))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Version returns the _version of the file.
func (r *Record) Version() string {
	return r.stringField(VersionKey)
}

// Data returns a deep copy of all fields.
func (r *Record) Data() map[string]any {
	return ir.Clone(r.data).(map[string]any)
}

// MatchKey returns the params-insensitive match key.
func (r *Record) MatchKey() string {
	return MatchKey(r.kind, r.subject)
}

// MatchKeyWithParams returns the match key qualified by the hash of params.
func (r *Record) MatchKeyWithParams(params any) (string, error) {
	return WithParams(r.MatchKey(), params)
}

// MatchKeyForRecordedParams returns the match key qualified by the hash of
// the recorded params.
func (r *Record) MatchKeyForRecordedParams() (string, error) {
	return r.MatchKeyWithParams(r.Params())
}
