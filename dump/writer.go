package dump

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// filenameTime is the timestamp layout of dump filenames.
const filenameTime = "20060102_150405"

// Writer saves dump files to one directory.
type Writer struct {
	dir    string
	opts   options
	dumped []string
}

// NewWriter creates a Writer for dir, creating the directory if needed.
// It fails if dir cannot be created or is not writable.
func NewWriter(dir string, opts ...Option) (*Writer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &Error{Code: ErrCodeBadDirectory, Path: dir, Message: dir + " cannot be created", Err: err}
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, &Error{Code: ErrCodeBadDirectory, Path: dir, Message: dir + " is not a directory", Err: err}
	}
	probe, err := os.CreateTemp(dir, ".write-probe-*")
	if err != nil {
		return nil, &Error{Code: ErrCodeBadDirectory, Path: dir, Message: dir + " is not a writable directory", Err: err}
	}
	probe.Close()
	os.Remove(probe.Name())

	return &Writer{dir: dir, opts: o}, nil
}

// Dir returns the dump directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Registry returns the kind registry of the writer.
func (w *Writer) Registry() *Registry {
	return w.opts.registry
}

// Redactor returns the redactor applied to params and extra fields.
func (w *Writer) Redactor() *Redactor {
	return w.opts.redactor
}

// DumpedFiles returns the names of all files written so far, in order.
func (w *Writer) DumpedFiles() []string {
	return slices.Clone(w.dumped)
}

// DumpedPaths returns the full paths of all files written so far.
func (w *Writer) DumpedPaths() []string {
	paths := make([]string, len(w.dumped))
	for i, name := range w.dumped {
		paths[i] = filepath.Join(w.dir, name)
	}
	return paths
}

// NewContext creates a context using the writer's clock and a fresh call id.
func (w *Writer) NewContext() *Context {
	c := newContext(w.opts.now)
	c.SetCallID(w.opts.ids.Generate())
	return c
}

// WithDump runs fn with a fresh timed context and writes the outcome as a
// dump of the given kind. The error of fn is returned unchanged; if writing
// its dump fails as well, both are joined.
func (w *Writer) WithDump(kind string, fn func(c *Context) (any, error)) (any, error) {
	if _, err := w.opts.registry.mustLookup(kind, ""); err != nil {
		return nil, err
	}

	c := w.NewContext()
	c.StartTimer()

	ret, err := fn(c)
	if err != nil {
		if _, werr := w.WriteError(kind, err, c); werr != nil {
			return nil, errors.Join(err, werr)
		}
		return nil, err
	}

	if _, werr := w.WriteSuccess(kind, ret, c); werr != nil {
		return ret, werr
	}
	return ret, nil
}

// WriteSuccess writes a success dump of c with return value ret and
// returns the filename.
func (w *Writer) WriteSuccess(kind string, ret any, c *Context) (string, error) {
	k, err := w.opts.registry.mustLookup(kind, "")
	if err != nil {
		return "", err
	}
	k.redact(w.opts.redactor, c)

	c.Set(KeyReturn, ret)
	c.Set(TypeKey, kind)
	return w.write(k, true, c)
}

// WriteError writes a failure dump of c for callErr and returns the filename.
func (w *Writer) WriteError(kind string, callErr error, c *Context) (string, error) {
	k, err := w.opts.registry.mustLookup(kind, "")
	if err != nil {
		return "", err
	}
	k.redact(w.opts.redactor, c)

	c.SetError(callErr, true)
	c.Set(TypeKey, kind)
	return w.write(k, false, c)
}

func (w *Writer) write(k Kind, success bool, c *Context) (string, error) {
	c.StopTimer()
	now := w.opts.now()
	filename := w.filename(k, success, c, now)

	data := c.Map()
	data[VersionKey] = Version
	data[TimestampKey] = now.Format(time.RFC3339)

	body, err := encode(data)
	if err != nil {
		return "", &Error{Code: ErrCodeWriteFailed, Path: filename, Message: "failed to encode " + filename, Err: err}
	}

	path := filepath.Join(w.dir, filename)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", &Error{Code: ErrCodeWriteFailed, Path: filename, Message: "failed to save to " + filename, Err: err}
	}
	w.dumped = append(w.dumped, filename)

	w.opts.logger.Debug("dump written",
		"file", filename,
		"type", k.Name,
		"success", success,
	)

	if w.opts.index != nil {
		rec, err := decodeRecord(w.opts.registry, body, filename)
		if err != nil {
			return filename, err
		}
		if err := w.opts.index.IndexRecord(context.Background(), w.dir, rec); err != nil {
			return filename, fmt.Errorf("index %s: %w", filename, err)
		}
	}
	return filename, nil
}

// filename builds {time}.{type}.{fragment}{success|error}.{call id}.json.
func (w *Writer) filename(k Kind, success bool, c *Context, now time.Time) string {
	var b strings.Builder
	b.WriteString(now.Format(filenameTime))
	b.WriteString("." + k.Name + ".")
	b.WriteString(sanitizeFilenamePart(k.filenamePart(c)))
	if success {
		b.WriteString("success.")
	} else {
		b.WriteString("error.")
	}
	b.WriteString(c.CallID())
	b.WriteString(".json")
	return b.String()
}

// sanitizeFilenamePart keeps a fragment inside the dump directory.
func sanitizeFilenamePart(part string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(part)
}

// encode renders a dump as indented JSON without HTML escaping.
func encode(data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
