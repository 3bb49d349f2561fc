package dump

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces call ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7 generates time-sortable UUIDv7 call ids.
type UUIDv7 struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Indexer is told about every file a Writer saves.
type Indexer interface {
	IndexRecord(ctx context.Context, dir string, rec *Record) error
}

type options struct {
	registry *Registry
	redactor *Redactor
	now      func() time.Time
	ids      IDGenerator
	index    Indexer
	logger   *slog.Logger
}

func defaultOptions() options {
	return options{
		registry: NewRegistry(),
		redactor: NewRedactor(),
		now:      time.Now,
		ids:      UUIDv7{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures a Writer or Reader.
type Option func(*options)

// WithRegistry sets the kind registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithSecretKeys replaces the default secret keys.
func WithSecretKeys(keys ...string) Option {
	return func(o *options) { o.redactor = NewRedactor(keys...) }
}

// WithClock sets the time source for timestamps, filenames and durations.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator sets the call id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithIndex records every written file in idx.
func WithIndex(idx Indexer) Option {
	return func(o *options) { o.index = idx }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
