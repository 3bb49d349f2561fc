package iterator

import (
	"errors"
	"fmt"
)

// IntegrityErrorCode categorizes keyed page contract violations.
type IntegrityErrorCode string

const (
	// ErrCodeMissingKey indicates an item without the key field.
	ErrCodeMissingKey IntegrityErrorCode = "MISSING_KEY"

	// ErrCodeDuplicateKey indicates two items of one page share a key value.
	ErrCodeDuplicateKey IntegrityErrorCode = "DUPLICATE_KEY"

	// ErrCodeInvalidKey indicates a key value that is not a scalar.
	ErrCodeInvalidKey IntegrityErrorCode = "INVALID_KEY"
)

// IntegrityError reports a keyed page that breaks the API contract.
// It is not recoverable by retrying.
type IntegrityError struct {
	Code     IntegrityErrorCode
	Index    int    // position of the offending item in the page
	KeyField string // name of the key field
	Value    any    // offending key value, for duplicates and invalid keys
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	switch e.Code {
	case ErrCodeMissingKey:
		return fmt.Sprintf("no 'data.%s' key in result[%d]", e.KeyField, e.Index)
	case ErrCodeDuplicateKey:
		return fmt.Sprintf("duplicate key '%s' for result[%d]", e.KeyField, e.Index)
	default:
		return fmt.Sprintf("invalid key '%s' for result[%d]: %T", e.KeyField, e.Index, e.Value)
	}
}

// IsIntegrityError returns true if err is an IntegrityError.
// Uses errors.As to handle wrapped errors.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
