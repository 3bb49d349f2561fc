package iterator

import (
	"encoding/json"
	"fmt"
	"math"
)

// Record is one item of a page: an open JSON object.
type Record = map[string]any

// Page is one fetched page. A nil Page or nil Items is an empty page.
type Page struct {
	Items []Record

	// TotalCount overrides len(Items) as the page count when set.
	TotalCount *int
}

// Window is the paging window a Fetcher should request.
// Unpaginated cursors pass a window with Start 0 and PerPage 0.
type Window interface {
	Start() int
	PerPage() int
}

// Fetcher performs the call for one page.
type Fetcher func(w Window) (*Page, error)

// unpaged is the Window of a cursor without a Paginator.
type unpaged struct{}

func (unpaged) Start() int   { return 0 }
func (unpaged) PerPage() int { return 0 }

// PageFromResult decodes a list endpoint result of the form
// {"data": [...], "count": n}. A nil result is an empty page; a result
// without a "data" key is a contract violation.
func PageFromResult(result any) (*Page, error) {
	if result == nil {
		return &Page{}, nil
	}
	m, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("list result is %T, expected an object", result)
	}
	data, ok := m["data"]
	if !ok {
		return nil, fmt.Errorf("no 'data' key in result")
	}

	page := &Page{}
	if data != nil {
		list, ok := data.([]any)
		if !ok {
			return nil, fmt.Errorf("result data is %T, expected a list", data)
		}
		page.Items = make([]Record, len(list))
		for i, item := range list {
			rec, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("result data[%d] is %T, expected an object", i, item)
			}
			page.Items[i] = rec
		}
	}

	if raw, ok := m["count"]; ok && raw != nil {
		n, err := toInt(raw)
		if err != nil {
			return nil, fmt.Errorf("result count: %w", err)
		}
		page.TotalCount = &n
	}
	return page, nil
}

// CallFetcher adapts a call taking (start, limit) into a Fetcher that
// decodes the result with PageFromResult.
func CallFetcher(call func(start, limit int) (any, error)) Fetcher {
	return func(w Window) (*Page, error) {
		result, err := call(w.Start(), w.PerPage())
		if err != nil {
			return nil, err
		}
		return PageFromResult(result)
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, fmt.Errorf("not an integer count: %v", n)
		}
		return int(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return toInt(f)
	case string:
		var i int
		if _, err := fmt.Sscan(n, &i); err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
