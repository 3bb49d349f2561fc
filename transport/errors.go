package transport

import (
	"errors"
	"fmt"
)

// Configuration errors, raised before any I/O.
var (
	// ErrServerNotSet is returned when a call is made before a server is configured.
	ErrServerNotSet = errors.New("server is not set")

	// ErrInvalidAuth is returned when a module call has no account or login mode.
	ErrInvalidAuth = errors.New("auth is not properly set up")
)

// Error classes. The remote API reports its own class names; these are the
// two the client distinguishes.
const (
	ClassGeneral    = "General"
	ClassConnection = "Connection"
)

// Connection error codes.
const (
	CodeReadBodyError       = 400
	CodeReadHeadersError    = 401
	CodeConnectionOpenError = 500
	CodeRequestSendError    = 501
)

// codeNames maps connection codes to their symbolic names.
var codeNames = map[int]string{
	CodeReadBodyError:       "READ_BODY_ERROR",
	CodeReadHeadersError:    "READ_HEADERS_ERROR",
	CodeConnectionOpenError: "CONNECTION_OPEN_ERROR",
	CodeRequestSendError:    "REQUEST_SEND_ERROR",
}

// codeNotFound is returned by CodeName for codes without a symbolic name.
const codeNotFound = "GENERAL_ERROR"

// Error is a remote or transport-level failure of one call.
//
// Error carries:
//   - Class: "Connection" for transport failures, otherwise "General"
//   - APIClass: the exception class reported by the server, if any
//   - Code, Message: numeric code and human-readable text
//   - Ref: opaque reference to a detailed error report on the server
//   - Trace: server-side trace, if the server runs in development mode
//   - Prev: the nested development error, if any
type Error struct {
	Class    string
	APIClass string
	Message  string
	Code     int
	Ref      string
	Trace    string
	Prev     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s error %d: %s (ref=%s)", e.Class, e.Code, e.Message, e.Ref)
	}
	return fmt.Sprintf("%s error %d: %s", e.Class, e.Code, e.Message)
}

// Unwrap returns the nested development error.
func (e *Error) Unwrap() error {
	return e.Prev
}

// IsConnection reports whether e is a connection failure.
func (e *Error) IsConnection() bool {
	return e.Class == ClassConnection
}

// ClassName returns the exception class reported by the server, or Class
// when the server reported none.
func (e *Error) ClassName() string {
	if e.APIClass != "" {
		return e.APIClass
	}
	return e.Class
}

// CodeName returns the symbolic name of a connection code, or GENERAL_ERROR.
func (e *Error) CodeName() string {
	if e.IsConnection() {
		if name, ok := codeNames[e.Code]; ok {
			return name
		}
	}
	return codeNotFound
}

// NewConnectionError creates a connection Error wrapping cause.
func NewConnectionError(code int, message string, cause error) *Error {
	return &Error{
		Class:   ClassConnection,
		Message: message,
		Code:    code,
		Prev:    cause,
	}
}

// NewErrorFromBody builds an Error from a failed response body:
//
//	{"class": "...", "error": "...", "errno": 0, "ref": "...", "trace": "...", "devel_error": {...}}
//
// A non-empty devel_error object becomes the Prev chain.
func NewErrorFromBody(body map[string]any) *Error {
	apiClass := stringField(body, "class")
	e := &Error{
		Class:    ClassGeneral,
		APIClass: apiClass,
		Message:  stringField(body, "error"),
		Code:     intField(body, "errno"),
		Ref:      stringField(body, "ref"),
		Trace:    stringField(body, "trace"),
	}
	if apiClass == ClassConnection {
		e.Class = ClassConnection
	}
	if devel, ok := body["devel_error"].(map[string]any); ok && len(devel) > 0 {
		e.Prev = NewErrorFromBody(devel)
	}
	return e
}

// IsConnectionError returns true if err is or wraps a connection Error.
// Uses errors.As to handle wrapped errors.
func IsConnectionError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.IsConnection()
	}
	return false
}

// Reference returns the server error reference carried by err, if any.
func Reference(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) && e.Ref != "" {
		return e.Ref, true
	}
	return "", false
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case interface{ Int64() (int64, error) }:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}
