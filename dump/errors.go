package dump

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes dump file errors.
type ErrorCode string

const (
	// ErrCodeUnreadable indicates a missing, non-regular or unreadable file.
	ErrCodeUnreadable ErrorCode = "UNREADABLE"

	// ErrCodeEmpty indicates a zero-length file.
	ErrCodeEmpty ErrorCode = "EMPTY"

	// ErrCodeBadJSON indicates content that is not valid JSON.
	ErrCodeBadJSON ErrorCode = "BAD_JSON"

	// ErrCodeNotObject indicates JSON whose top level is not an object.
	ErrCodeNotObject ErrorCode = "NOT_OBJECT"

	// ErrCodeUnsupportedVersion indicates a missing or unsupported _version.
	ErrCodeUnsupportedVersion ErrorCode = "UNSUPPORTED_VERSION"

	// ErrCodeUnknownType indicates a _type without a registered Kind.
	ErrCodeUnknownType ErrorCode = "UNKNOWN_TYPE"

	// ErrCodeInvalidRecord indicates a file that violates the dump schema.
	ErrCodeInvalidRecord ErrorCode = "INVALID_RECORD"

	// ErrCodeWriteFailed indicates a dump file could not be saved.
	ErrCodeWriteFailed ErrorCode = "WRITE_FAILED"

	// ErrCodeBadDirectory indicates a dump directory that cannot be created
	// or written to.
	ErrCodeBadDirectory ErrorCode = "BAD_DIRECTORY"
)

// Error is a fatal problem with a dump file or dump directory.
type Error struct {
	Code    ErrorCode
	Path    string // file or directory concerned
	Message string
	Err     error // underlying cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsDumpError returns true if err is a dump Error with the given code.
// Uses errors.As to handle wrapped errors.
func IsDumpError(err error, code ErrorCode) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// RecordedError is the error replayed from a failure record.
type RecordedError struct {
	Class    string // exception_class of the record
	Message  string // exception of the record
	Ref      string // exception_ref of the record, if any
	Trace    string // exception_trace of the record, if any
	MatchKey string // match key of the record that produced the error
}

// Error implements the error interface.
func (e *RecordedError) Error() string {
	if e.Class == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (recorded %s)", e.Message, e.Class)
}

// ClassName returns the class of the originally recorded error, so that a
// replayed failure records with the class of the live one.
func (e *RecordedError) ClassName() string {
	return e.Class
}

// Reference returns the recorded server reference.
func (e *RecordedError) Reference() string {
	return e.Ref
}

// IsRecordedError returns true if err is a replayed RecordedError.
func IsRecordedError(err error) bool {
	var re *RecordedError
	return errors.As(err, &re)
}
