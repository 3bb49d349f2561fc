package store

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/roach88/apiwrapper/dump"
	"github.com/roach88/apiwrapper/internal/ir"
)

// Entry is one catalogued dump file.
type Entry struct {
	Seq            int64
	Dir            string
	Filename       string
	Type           string
	Subject        string
	MatchKey       string
	ParamsHash     string
	Params         string // canonical JSON
	Success        bool
	ExceptionClass string
	CallID         string
	TimeMs         int64
	Timestamp      string // RFC 3339, as written in the file
}

// MatchKeyWithParams returns the params-sensitive match key of the entry.
func (e Entry) MatchKeyWithParams() string {
	return e.MatchKey + "." + e.ParamsHash
}

// Path returns the location of the file.
func (e Entry) Path() string {
	return filepath.Join(e.Dir, e.Filename)
}

// EntryFromRecord builds the catalog entry of rec, stored in dir.
func EntryFromRecord(dir string, rec *dump.Record) (Entry, error) {
	params := rec.Params()
	if params == nil {
		params = []any{}
	}
	canonical, err := ir.MarshalCanonical(params)
	if err != nil {
		return Entry{}, fmt.Errorf("entry for %s: %w", rec.Filename(), err)
	}

	e := Entry{
		Dir:        dir,
		Filename:   rec.Filename(),
		Type:       rec.Type(),
		Subject:    rec.Subject(),
		MatchKey:   rec.MatchKey(),
		ParamsHash: ir.HashBytes(canonical),
		Params:     string(canonical),
		Success:    rec.Success(),
		CallID:     rec.CallID(),
		TimeMs:     rec.TimeMs(),
	}
	if failure := rec.Failure(); failure != nil {
		e.ExceptionClass = failure.Class
	}
	if ts, ok := rec.Timestamp(); ok {
		e.Timestamp = ts.UTC().Format(time.RFC3339)
	}
	return e, nil
}
