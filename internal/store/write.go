package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/apiwrapper/dump"
)

var _ dump.Indexer = (*Store)(nil)

// Index inserts or replaces the entry for e.Dir/e.Filename.
// Re-indexing a file keeps its original seq.
func (s *Store) Index(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dumps
		(dir, filename, type, subject, match_key, params_hash, params, success, exception_class, call_id, time_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dir, filename) DO UPDATE SET
			type = excluded.type,
			subject = excluded.subject,
			match_key = excluded.match_key,
			params_hash = excluded.params_hash,
			params = excluded.params,
			success = excluded.success,
			exception_class = excluded.exception_class,
			call_id = excluded.call_id,
			time_ms = excluded.time_ms,
			timestamp = excluded.timestamp
	`,
		e.Dir,
		e.Filename,
		e.Type,
		e.Subject,
		e.MatchKey,
		e.ParamsHash,
		e.Params,
		boolToInt(e.Success),
		e.ExceptionClass,
		e.CallID,
		e.TimeMs,
		e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("index %s: %w", e.Filename, err)
	}
	return nil
}

// IndexRecord catalogs a dump record stored in dir. It lets a Store be
// passed to dump.WithIndex.
func (s *Store) IndexRecord(ctx context.Context, dir string, rec *dump.Record) error {
	e, err := EntryFromRecord(dir, rec)
	if err != nil {
		return err
	}
	return s.Index(ctx, e)
}

// IndexResult reports the outcome of IndexDir.
type IndexResult struct {
	Indexed int
	Skipped map[string]error // filename -> read error
}

// IndexDir catalogs every *.json file directly in dir. Files that are not
// valid dumps are skipped and reported; other errors abort.
func (s *Store) IndexDir(ctx context.Context, dir string, reader *dump.Reader) (IndexResult, error) {
	result := IndexResult{Skipped: make(map[string]error)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return result, fmt.Errorf("index dir: %w", err)
	}

	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		rec, err := reader.Read(filepath.Join(dir, de.Name()))
		if err != nil {
			result.Skipped[de.Name()] = err
			continue
		}
		if err := s.IndexRecord(ctx, dir, rec); err != nil {
			return result, err
		}
		result.Indexed++
	}
	return result, nil
}

// Remove deletes the entry of dir/filename. Removing an unknown entry is
// not an error.
func (s *Store) Remove(ctx context.Context, dir, filename string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM dumps WHERE dir = ? AND filename = ?`, dir, filename); err != nil {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
