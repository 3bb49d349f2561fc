package iterator

import (
	"errors"
	"fmt"
)

// items builds records {"id": i, "name": "Item i"} for i in [from, to].
func items(from, to int) []Record {
	out := make([]Record, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, Record{"id": i, "name": fmt.Sprintf("Item %d", i)})
	}
	return out
}

// pageSequence serves the given pages in order and then empty pages,
// recording the window of every call.
type pageSequence struct {
	pages   [][]Record
	calls   int
	windows [][2]int
}

func (s *pageSequence) fetch(w Window) (*Page, error) {
	s.windows = append(s.windows, [2]int{w.Start(), w.PerPage()})
	i := s.calls
	s.calls++
	if i >= len(s.pages) {
		return &Page{}, nil
	}
	n := len(s.pages[i])
	return &Page{Items: s.pages[i], TotalCount: &n}, nil
}

var errBackend = errors.New("backend unavailable")

// failingFetcher fails the first n calls, then serves page.
func failingFetcher(n int, page []Record, calls *int) Fetcher {
	return func(Window) (*Page, error) {
		*calls++
		if *calls <= n {
			return nil, errBackend
		}
		return &Page{Items: page}, nil
	}
}
