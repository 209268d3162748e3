// Package pagination slices ordered sequences into fixed-size pages.
package pagination

// DefaultSize is the number of entries shown per menu page.
const DefaultSize = 10

// Page is one window over a sequence.
type Page[T any] struct {
	Items   []T
	Index   int
	HasPrev bool
	HasNext bool
	// LastPage is ceil(n/size)-1, so -1 for an empty sequence.
	LastPage int
}

// Paginate returns page p of items using the given page size. A negative
// page is treated as 0, a non-positive size as DefaultSize. Items beyond the
// end produce an empty window.
func Paginate[T any](items []T, p, size int) Page[T] {
	if size <= 0 {
		size = DefaultSize
	}
	if p < 0 {
		p = 0
	}
	n := len(items)
	last := LastPage(n, size)

	// p*size may overflow for pages far past the end.
	start, end := n, n
	if p <= last {
		start = p * size
		end = min(start+size, n)
	}

	return Page[T]{
		Items:    items[start:end:end],
		Index:    p,
		HasPrev:  p > 0,
		HasNext:  p < last,
		LastPage: last,
	}
}

// LastPage returns ceil(n/size)-1.
func LastPage(n, size int) int {
	if size <= 0 {
		size = DefaultSize
	}
	return (n+size-1)/size - 1
}

// Clamp maps p into [0, max(LastPage(n, size), 0)].
func Clamp(p, n, size int) int {
	last := max(LastPage(n, size), 0)
	if p < 0 {
		return 0
	}
	if p > last {
		return last
	}
	return p
}
