package mock

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotRegistered is returned for calls to an action, module or module
	// function that has no stub.
	ErrNotRegistered = errors.New("is not registered")

	// ErrAlreadyRegistered is returned when registering over an existing
	// stub without overwrite.
	ErrAlreadyRegistered = errors.New("is already set up")
)

// MissError is returned when a dump-backed stub has no record for the
// arguments of a call.
type MissError struct {
	Key  string // the last match key tried
	Args []any  // the call params
}

// Error implements the error interface.
func (e *MissError) Error() string {
	args, err := json.Marshal(e.Args)
	if err != nil {
		args = []byte(fmt.Sprintf("%v", e.Args))
	}
	return fmt.Sprintf("no return registered for key %s. Args: %s", e.Key, args)
}

// IsMiss returns true if err is a MissError.
func IsMiss(err error) bool {
	var me *MissError
	return errors.As(err, &me)
}

func notRegistered(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotRegistered)
}

func alreadyRegistered(what string) error {
	return fmt.Errorf("%s %w", what, ErrAlreadyRegistered)
}
