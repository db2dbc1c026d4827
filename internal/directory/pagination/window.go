// Package pagination slices an ordered result into fixed-size pages.
package pagination

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 8

// Window is one page of a result together with the totals needed to
// render pagination controls.
type Window[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// TotalPages is ceil(n/size); an empty result has zero pages.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns the 1-based page of items. Pages outside 1..TotalPages
// yield an empty slice; the page number is echoed back unchanged.
func Paginate[T any](items []T, size, page int) Window[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	w := Window[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   size,
		TotalItems: len(items),
		TotalPages: TotalPages(len(items), size),
	}
	if page < 1 {
		return w
	}

	start := (page - 1) * size
	if start >= len(items) {
		return w
	}
	end := min(start+size, len(items))
	w.Items = append(w.Items, items[start:end]...)
	return w
}

// State is the pagination position of a session.
type State struct {
	Page int `json:"page"`
}

// First is the state every query change resets to.
func First() State {
	return State{Page: 1}
}
