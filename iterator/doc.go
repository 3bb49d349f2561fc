// Package iterator provides lazy cursors over list endpoints of the API.
//
// A list endpoint returns one page per call:
//
//	{"data": [{...}, {...}], "count": 2}
//
// The cursors defer the call until the first observation (Count, Valid,
// Current, Key, iteration) and fetch exactly one page per round trip.
//
// # Variants
//
//   - ListCall: positional access to one page
//   - KeyedListCall: access by a field value ("id" by default) of one page
//   - PaginatedListCall / PaginatedKeyedListCall: the same cursors driven by a
//     Paginator that re-fetches at increasing offsets when a page is used up
//
// # Pagination termination
//
// A page is assumed to have a successor when its count is at least the page
// size. A total that is an exact multiple of the page size therefore costs
// one extra round trip that returns an empty page; that empty page is what
// ends the iteration.
//
// # Errors
//
// Fetch errors propagate unchanged and leave the cursor unexecuted, so a later
// call fetches again. Missing or duplicate keys in a keyed page are contract
// violations reported as *IntegrityError.
//
// Cursors are not safe for concurrent use.
package iterator
