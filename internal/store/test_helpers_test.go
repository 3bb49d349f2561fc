package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/apiwrapper/dump"
	"github.com/roach88/apiwrapper/internal/testutil"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestWriter creates a dump writer indexing into s, with a frozen
// clock and sequential call ids.
func createTestWriter(t *testing.T, s *Store) (*dump.Writer, *testutil.FixedClock) {
	t.Helper()
	clock := testutil.NewFixedClock(testutil.DefaultTime)
	w, err := dump.NewWriter(t.TempDir(),
		dump.WithClock(clock.Now),
		dump.WithIDGenerator(testutil.NewSequenceIDs("call")),
		dump.WithIndex(s),
	)
	if err != nil {
		t.Fatalf("NewWriter() failed: %v", err)
	}
	return w, clock
}

// writeAction records a successful call to action with params.
func writeAction(t *testing.T, w *dump.Writer, action string, params []any, ret any) string {
	t.Helper()
	c := w.NewContext()
	c.Set("action", action)
	c.Set(dump.KeyParams, params)
	name, err := w.WriteSuccess(dump.KindAction, ret, c)
	if err != nil {
		t.Fatalf("WriteSuccess() failed: %v", err)
	}
	return name
}
