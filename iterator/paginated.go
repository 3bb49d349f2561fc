package iterator

import "iter"

// DefaultPerPage is the page size of a new Paginator.
const DefaultPerPage = 100

// pageSource is the cursor state a Paginator drives.
type pageSource interface {
	Count() (int, error)
	invalidate()
}

// Paginator turns a single-page cursor into a stream over consecutive pages.
//
// It is the Window handed to the Fetcher, so the fetcher reads Start and
// PerPage to build its request. The offset only advances after a page is used
// up AND that page may not be the last one.
type Paginator struct {
	start   int
	perPage int
	source  pageSource
}

func newPaginator(source pageSource) *Paginator {
	return &Paginator{perPage: DefaultPerPage, source: source}
}

// Start returns the offset of the current page.
func (p *Paginator) Start() int {
	return p.start
}

// SetStart sets the offset of the next fetch. Negative values become 0.
func (p *Paginator) SetStart(start int) {
	p.start = max(start, 0)
}

// PerPage returns the page size.
func (p *Paginator) PerPage() int {
	return p.perPage
}

// SetPerPage sets the page size. Values below 1 restore DefaultPerPage.
func (p *Paginator) SetPerPage(n int) {
	if n < 1 {
		n = DefaultPerPage
	}
	p.perPage = n
}

// MayHaveMore reports whether another page might follow the current one:
// the current page is non-empty and at least a full page. It fetches the
// current page if needed.
func (p *Paginator) MayHaveMore() (bool, error) {
	count, err := p.source.Count()
	if err != nil {
		return false, err
	}
	return count > 0 && count >= p.perPage, nil
}

// OnNextInvalid is called when the cursor ran off the end of the current
// page. If more may follow it advances the offset and marks the source
// unexecuted; the next Valid or Current performs the fetch and lands on
// the first item of the new page.
func (p *Paginator) OnNextInvalid() error {
	more, err := p.MayHaveMore()
	if err != nil {
		return err
	}
	if more {
		p.start += p.perPage
		p.source.invalidate()
	}
	return nil
}

// PaginatedListCall is a positional cursor across all pages of an endpoint.
// Positions restart at 0 on every page.
type PaginatedListCall struct {
	*ListCall
	*Paginator
}

// NewPaginated creates a PaginatedListCall starting at offset 0 with
// DefaultPerPage items per page.
func NewPaginated(fetch Fetcher) *PaginatedListCall {
	lc := New(fetch)
	p := newPaginator(&lc.lazy)
	lc.window = p
	return &PaginatedListCall{ListCall: lc, Paginator: p}
}

// Next advances the cursor, moving to the next page when the current one
// is used up.
func (c *PaginatedListCall) Next() error {
	return paginatedNext(&c.lazy, c.Paginator)
}

// All iterates every page as (position, item) pairs. Check Err after the loop.
func (c *PaginatedListCall) All() iter.Seq2[any, Record] {
	return each(c, &c.err)
}

// PaginatedKeyedListCall is a keyed cursor across all pages of an endpoint.
// IDs, Exists and Get only see the current page.
type PaginatedKeyedListCall struct {
	*KeyedListCall
	*Paginator
}

// NewKeyedPaginated creates a PaginatedKeyedListCall indexing by keyField
// (DefaultKeyField when empty).
func NewKeyedPaginated(fetch Fetcher, keyField string) *PaginatedKeyedListCall {
	kc := NewKeyed(fetch, keyField)
	p := newPaginator(&kc.lazy)
	kc.window = p
	return &PaginatedKeyedListCall{KeyedListCall: kc, Paginator: p}
}

// Next advances the cursor, moving to the next page when the current one
// is used up.
func (c *PaginatedKeyedListCall) Next() error {
	return paginatedNext(&c.lazy, c.Paginator)
}

// All iterates every page as (key value, item) pairs. Check Err after the loop.
func (c *PaginatedKeyedListCall) All() iter.Seq2[any, Record] {
	return each(c, &c.err)
}

func paginatedNext(l *lazy, p *Paginator) error {
	if err := l.Next(); err != nil {
		return err
	}
	valid, err := l.Valid()
	if err != nil {
		return err
	}
	if !valid {
		return p.OnNextInvalid()
	}
	return nil
}
