package iterator

import "iter"

// lazy is the fetch-once state machine shared by all cursors.
//
// Before executed is true no fetch has happened. count and items are set
// together, exactly once per successful fetch.
type lazy struct {
	fetch    Fetcher
	window   Window
	executed bool
	count    int
	items    []Record
	keys     []any // per-item keys; nil for positional cursors
	pos      int
	err      error

	// materialize indexes a fetched page; it may reject the page.
	materialize func(items []Record) error
}

func newLazy(fetch Fetcher) lazy {
	return lazy{fetch: fetch, window: unpaged{}}
}

// ensure performs the fetch if the cursor is not executed yet.
// On error nothing is committed and executed stays false.
func (l *lazy) ensure() error {
	if l.executed {
		return nil
	}

	page, err := l.fetch(l.window)
	if err != nil {
		return err
	}

	var items []Record
	count := 0
	if page != nil && len(page.Items) > 0 {
		items = page.Items
		count = len(items)
		if page.TotalCount != nil {
			count = *page.TotalCount
		}
	}

	if l.materialize != nil {
		if err := l.materialize(items); err != nil {
			return err
		}
	}

	l.items = items
	l.count = count
	l.pos = 0
	l.executed = true
	return nil
}

// invalidate forces a re-fetch on the next access.
func (l *lazy) invalidate() {
	l.executed = false
}

// IsExecuted reports whether a page has been fetched.
func (l *lazy) IsExecuted() bool {
	return l.executed
}

// MaterializedCount returns the count of the last fetched page without
// fetching. Zero before the first fetch.
func (l *lazy) MaterializedCount() int {
	return l.count
}

// Count fetches if needed and returns the count of the current page: the
// page's total count if the server sent one, else its number of items.
// Once pagination has advanced this is the count of the latest page only.
func (l *lazy) Count() (int, error) {
	if err := l.ensure(); err != nil {
		return 0, err
	}
	return l.count, nil
}

// Valid reports whether the cursor points at an item.
func (l *lazy) Valid() (bool, error) {
	if err := l.ensure(); err != nil {
		return false, err
	}
	return l.pos < len(l.items), nil
}

// Current returns the item under the cursor; ok is false past the end.
func (l *lazy) Current() (Record, bool, error) {
	if err := l.ensure(); err != nil {
		return nil, false, err
	}
	if l.pos >= len(l.items) {
		return nil, false, nil
	}
	return l.items[l.pos], true, nil
}

// Key returns the key of the item under the cursor: its position for
// positional cursors, its key value for keyed ones. ok is false past the end.
func (l *lazy) Key() (any, bool, error) {
	if err := l.ensure(); err != nil {
		return nil, false, err
	}
	if l.pos >= len(l.items) {
		return nil, false, nil
	}
	if l.keys != nil {
		return l.keys[l.pos], true, nil
	}
	return l.pos, true, nil
}

// Next advances the cursor.
func (l *lazy) Next() error {
	if err := l.ensure(); err != nil {
		return err
	}
	if l.pos < len(l.items) {
		l.pos++
	}
	return nil
}

// Rewind moves the cursor to the first item of the current page.
// It neither re-fetches nor resets a paginator's offset.
func (l *lazy) Rewind() error {
	if err := l.ensure(); err != nil {
		return err
	}
	l.pos = 0
	return nil
}

// Err returns the error that stopped the last All iteration.
func (l *lazy) Err() error {
	return l.err
}

// cursor is the protocol All drives. Paginated cursors override Next, so
// iteration must go through the outermost value.
type cursor interface {
	Rewind() error
	Valid() (bool, error)
	Current() (Record, bool, error)
	Key() (any, bool, error)
	Next() error
}

// each iterates c from a rewind, storing the first error in *errp.
func each(c cursor, errp *error) iter.Seq2[any, Record] {
	return func(yield func(any, Record) bool) {
		*errp = nil
		fail := func(err error) { *errp = err }

		if err := c.Rewind(); err != nil {
			fail(err)
			return
		}
		for {
			ok, err := c.Valid()
			if err != nil {
				fail(err)
				return
			}
			if !ok {
				return
			}
			rec, _, err := c.Current()
			if err != nil {
				fail(err)
				return
			}
			key, _, err := c.Key()
			if err != nil {
				fail(err)
				return
			}
			if !yield(key, rec) {
				return
			}
			if err := c.Next(); err != nil {
				fail(err)
				return
			}
		}
	}
}

// ListCall is a lazy positional cursor over one page.
type ListCall struct {
	lazy
}

// New creates a ListCall. No fetch happens until first observation.
func New(fetch Fetcher) *ListCall {
	return &ListCall{lazy: newLazy(fetch)}
}

// At returns the item at index i of the current page; ok is false when i is
// out of range.
func (c *ListCall) At(i int) (Record, bool, error) {
	if err := c.ensure(); err != nil {
		return nil, false, err
	}
	if i < 0 || i >= len(c.items) {
		return nil, false, nil
	}
	return c.items[i], true, nil
}

// Items returns a copy of the current page's items.
func (c *ListCall) Items() ([]Record, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return append([]Record(nil), c.items...), nil
}

// All iterates the current page as (position, item) pairs, starting with a
// rewind. Check Err after the loop.
func (c *ListCall) All() iter.Seq2[any, Record] {
	return each(c, &c.err)
}
