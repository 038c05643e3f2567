package query

import "strconv"

// Window is a clamped page of a result set
type Window struct {
	Number     int
	Size       int
	Offset     int
	TotalItems int
	TotalPages int
}

// ParsePage reads a 1-indexed page number. Anything unparsable or below one
// yields the first page.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate clamps the requested page into [1, last page]. An empty result set
// is a single empty first page.
func Paginate(total, requested, size int) Window {
	if size < 1 {
		size = 1
	}
	if total < 0 {
		total = 0
	}

	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	return Window{
		Number:     number,
		Size:       size,
		Offset:     (number - 1) * size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// Page is one page of results with its pagination metadata
type Page[T any] struct {
	Items       []T  `json:"items"`
	Number      int  `json:"page"`
	Size        int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPage wraps items fetched for window w
func NewPage[T any](items []T, w Window) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:       items,
		Number:      w.Number,
		Size:        w.Size,
		TotalItems:  w.TotalItems,
		TotalPages:  w.TotalPages,
		HasNext:     w.Number < w.TotalPages,
		HasPrevious: w.Number > 1,
	}
}

// Slice applies a window to an in-memory slice
func Slice[T any](items []T, w Window) []T {
	if w.Offset >= len(items) {
		return []T{}
	}
	end := w.Offset + w.Size
	if end > len(items) {
		end = len(items)
	}
	return items[w.Offset:end]
}

// First is a window over the leading n rows, for fixed-size lists
func First(n int) Window {
	return Window{Number: 1, Size: n, TotalItems: n, TotalPages: 1}
}
