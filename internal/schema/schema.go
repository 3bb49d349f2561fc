package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed dump.cue
var dumpSchema string

// kindDefinitions maps dump kinds to their stricter definition.
var kindDefinitions = map[string]string{
	"action":         "#Action",
	"moduleFunction": "#ModuleFunction",
}

// ValidationError describes the first schema violation of a dump file.
type ValidationError struct {
	Path    string    // CUE path of the offending field, empty for the root
	Message string    // CUE's description of the violation
	Pos     token.Pos // position in the dump file, if known
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// Validator holds the compiled dump schema. A cue.Context is not safe for
// concurrent use, so Validate serializes access.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(dumpSchema, cue.Filename("dump.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile dump schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: v}, nil
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
	defaultErr       error
)

// Default returns a process-wide Validator, compiling the schema on first use.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = NewValidator()
	})
	return defaultValidator, defaultErr
}

// Validate checks the JSON bytes of a dump file of the given kind.
// filename is only used in positions of reported errors.
func (v *Validator) Validate(data []byte, kind, filename string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	doc := v.ctx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return firstError(err)
	}

	unified := v.schema.LookupPath(cue.ParsePath("#Dump")).Unify(doc)
	if def, ok := kindDefinitions[kind]; ok {
		unified = unified.Unify(v.schema.LookupPath(cue.ParsePath(def)))
	}

	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return firstError(err)
	}
	return nil
}

// HasDefinition reports whether kind has a definition beyond #Dump.
func HasDefinition(kind string) bool {
	_, ok := kindDefinitions[kind]
	return ok
}

// firstError reduces a CUE error list to its first entry.
func firstError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	first := errs[0]
	ve := &ValidationError{Message: first.Error()}
	if path := first.Path(); len(path) > 0 {
		ve.Path = strings.Join(path, ".")
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		ve.Pos = positions[0]
	}
	return ve
}
