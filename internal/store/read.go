package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get for an unknown file.
var ErrNotFound = errors.New("dump not catalogued")

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Dir      string
	Type     string
	Subject  string
	MatchKey string // params-insensitive or params-sensitive key
	Success  *bool
	Limit    int
}

const entryColumns = `seq, dir, filename, type, subject, match_key, params_hash, params,
	success, exception_class, call_id, time_ms, timestamp`

// List returns the entries matching f, ordered by timestamp then filename.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Dir != "" {
		where = append(where, "dir = ?")
		args = append(args, f.Dir)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if f.Subject != "" {
		where = append(where, "subject = ?")
		args = append(args, f.Subject)
	}
	if f.MatchKey != "" {
		where = append(where, "(match_key = ? OR match_key || '.' || params_hash = ?)")
		args = append(args, f.MatchKey, f.MatchKey)
	}
	if f.Success != nil {
		where = append(where, "success = ?")
		args = append(args, boolToInt(*f.Success))
	}

	query := "SELECT " + entryColumns + " FROM dumps"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp ASC, filename COLLATE BINARY ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dumps: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dumps: %w", err)
	}
	return entries, nil
}

// ByMatchKey returns the entries a mock lookup of key could resolve to:
// the key may be params-insensitive or carry a params hash.
func (s *Store) ByMatchKey(ctx context.Context, key string) ([]Entry, error) {
	return s.List(ctx, Filter{MatchKey: key})
}

// Get returns the entry of dir/filename, or ErrNotFound.
func (s *Store) Get(ctx context.Context, dir, filename string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM dumps WHERE dir = ? AND filename = ?", dir, filename)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s: %w", filename, ErrNotFound)
	}
	return e, err
}

// Count returns the number of catalogued files.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dumps").Scan(&n); err != nil {
		return 0, fmt.Errorf("count dumps: %w", err)
	}
	return n, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e       Entry
		success int
	)
	err := sc.Scan(
		&e.Seq,
		&e.Dir,
		&e.Filename,
		&e.Type,
		&e.Subject,
		&e.MatchKey,
		&e.ParamsHash,
		&e.Params,
		&success,
		&e.ExceptionClass,
		&e.CallID,
		&e.TimeMs,
		&e.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, err
	}
	if err != nil {
		return Entry{}, fmt.Errorf("scan dump entry: %w", err)
	}
	e.Success = success != 0
	return e, nil
}
