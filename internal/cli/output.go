package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/apiwrapper/client"
	"github.com/roach88/apiwrapper/transport"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The call failed, a scenario failed or a dump is invalid
	ExitCommandError = 2 // Command error (bad arguments, missing configuration, unusable paths)
)

// ErrorCode classifies a failure in command output.
type ErrorCode string

const (
	CodeAPI          ErrorCode = "E_API"        // the server answered with an error
	CodeConnection   ErrorCode = "E_CONNECTION" // the request never got an answer
	CodeConfig       ErrorCode = "E_CONFIG"     // server, auth or transport not set up
	CodeCall         ErrorCode = "E_CALL"       // anything else, e.g. an unregistered stub
	CodeReplayFailed ErrorCode = "E_REPLAY_FAILED"
)

// ClassifyError maps a call error onto an ErrorCode.
func ClassifyError(err error) ErrorCode {
	var te *transport.Error
	switch {
	case transport.IsConnectionError(err):
		return CodeConnection
	case errors.As(err, &te):
		return CodeAPI
	case errors.Is(err, transport.ErrServerNotSet), errors.Is(err, transport.ErrInvalidAuth),
		errors.Is(err, client.ErrNoAuth), errors.Is(err, client.ErrNoTransport):
		return CodeConfig
	default:
		return CodeCall
	}
}

// ErrorDetails is what the server said about a failed call.
type ErrorDetails struct {
	Class string `json:"class"`
	Ref   string `json:"ref,omitempty"`
}

func (d ErrorDetails) String() string {
	if d.Ref == "" {
		return "class=" + d.Class
	}
	return "class=" + d.Class + " ref=" + d.Ref
}

// DetailsOf returns the server class and reference carried by err; ok is
// false when err did not come from the server.
func DetailsOf(err error) (ErrorDetails, bool) {
	var te *transport.Error
	if !errors.As(err, &te) {
		return ErrorDetails{}, false
	}
	d := ErrorDetails{Class: te.ClassName()}
	if ref, ok := transport.Reference(err); ok {
		d.Ref = ref
	}
	return d, true
}

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as JSON envelopes or as text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; Writer when nil
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (f *OutputFormatter) isJSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.isJSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Value outputs a decoded API value: inside the envelope for JSON, as
// indented JSON for text.
func (f *OutputFormatter) Value(v any) error {
	if f.isJSON() {
		return f.Success(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	fmt.Fprintln(f.Writer, string(data))
	return nil
}

// Error outputs an error in the configured format. Text output shows
// details only in verbose mode.
func (f *OutputFormatter) Error(code ErrorCode, message string, details any) error {
	if f.isJSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// CallFailed reports the failed call name and returns the ExitFailure
// error the command should return.
func (f *OutputFormatter) CallFailed(name string, err error) error {
	var details any
	if d, ok := DetailsOf(err); ok {
		details = d
	}
	if ferr := f.Error(ClassifyError(err), err.Error(), details); ferr != nil {
		return ferr
	}
	return WrapExitError(ExitFailure, name+" failed", err)
}

// VerboseLog writes a diagnostic line in verbose mode. It goes to
// ErrWriter so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
