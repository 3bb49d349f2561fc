package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/apiwrapper/internal/schema"
)

// SupportedVersions is the range of _version values Reader accepts.
const SupportedVersions = ">= 1.0, < 1.1"

var supportedVersions = mustConstraint(SupportedVersions)

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// Reader loads dump files.
type Reader struct {
	opts options
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Reader{opts: o}
}

// Registry returns the kind registry of the reader.
func (r *Reader) Registry() *Registry {
	return r.opts.registry
}

// Read loads the dump file at path.
func (r *Reader) Read(path string) (*Record, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, &Error{Code: ErrCodeUnreadable, Path: path, Message: "file " + path + " is not a readable file", Err: err}
	}
	if info.Size() == 0 {
		return nil, &Error{Code: ErrCodeEmpty, Path: path, Message: "file " + path + " is empty"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: ErrCodeUnreadable, Path: path, Message: "file " + path + " is not a readable file", Err: err}
	}

	rec, err := r.Decode(data, path)
	if err != nil {
		return nil, err
	}

	r.opts.logger.Debug("dump read", "file", path, "match_key", rec.MatchKey())
	return rec, nil
}

// Decode builds a Record from the bytes of a dump file. path is only used
// in error messages.
func (r *Reader) Decode(data []byte, path string) (*Record, error) {
	return decodeRecord(r.opts.registry, data, path)
}

func decodeRecord(registry *Registry, data []byte, path string) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &Error{Code: ErrCodeBadJSON, Path: path, Message: "failed decoding json from " + path, Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &Error{Code: ErrCodeBadJSON, Path: path, Message: "trailing data after json in " + path}
	}

	fields, ok := v.(map[string]any)
	if !ok {
		return nil, &Error{Code: ErrCodeNotObject, Path: path, Message: fmt.Sprintf("decoded data from %s is not an object, got %s", path, jsonType(v))}
	}

	if err := checkVersion(fields, path); err != nil {
		return nil, err
	}

	kindName, _ := fields[TypeKey].(string)
	k, err := registry.mustLookup(kindName, path)
	if err != nil {
		return nil, err
	}

	validator, err := schema.Default()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(data, kindName, path); err != nil {
		return nil, &Error{Code: ErrCodeInvalidRecord, Path: path, Message: "invalid dump file " + path, Err: err}
	}

	if ok, _ := fields[KeySuccess].(bool); !ok {
		if _, has := fields[KeyException].(string); !has {
			return nil, &Error{Code: ErrCodeInvalidRecord, Path: path, Message: "failure dump " + path + " has no exception"}
		}
	}

	return newRecord(k, fields, baseName(path))
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

func checkVersion(fields map[string]any, path string) error {
	raw, _ := fields[VersionKey].(string)
	v, err := semver.NewVersion(raw)
	if err != nil || !supportedVersions.Check(v) {
		return &Error{
			Code:    ErrCodeUnsupportedVersion,
			Path:    path,
			Message: fmt.Sprintf("unsupported version: '%s'", raw),
			Err:     err,
		}
	}
	return nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
