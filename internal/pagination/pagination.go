// Package pagination slices filtered rows into pages and computes the page
// number strip shown under a table.
package pagination

import "strconv"

const (
	DefaultPageSize = 10
	// Up to this many pages every number is shown.
	fullStripMax = 7
	// Pages shown on each side of the current one.
	windowRadius = 2
)

type Result[T any] struct {
	Rows       []T `json:"rows"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	// Page is the requested page clamped into [1, TotalPages].
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Paginate returns the rows of page. An out-of-range page is clamped, so a
// filter that shrinks the result never leaves the table on an empty page.
// There is always at least one page.
func Paginate[T any](rows []T, page, size int) Result[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(rows)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	safe := Clamp(page, totalPages)

	start := (safe - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Result[T]{
		Rows:       rows[start:end:end],
		Total:      total,
		TotalPages: totalPages,
		Page:       safe,
		PageSize:   size,
	}
}

// Clamp moves page into [1, totalPages].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Item is one entry of the page strip: a page number or an ellipsis.
type Item struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

func (i Item) String() string {
	if i.Ellipsis {
		return "…"
	}
	return strconv.Itoa(i.Page)
}

// Window returns the page strip for current out of totalPages. Up to seven
// pages everything is listed; beyond that the first and last page and
// current±2 are listed, with an ellipsis wherever numbers are skipped.
func Window(current, totalPages int) []Item {
	if totalPages < 1 {
		totalPages = 1
	}
	current = Clamp(current, totalPages)

	if totalPages <= fullStripMax {
		out := make([]Item, 0, totalPages)
		for p := 1; p <= totalPages; p++ {
			out = append(out, Item{Page: p})
		}
		return out
	}

	from := max(2, current-windowRadius)
	to := min(totalPages-1, current+windowRadius)

	out := make([]Item, 0, 2*windowRadius+5)
	out = append(out, Item{Page: 1})
	if from > 2 {
		out = append(out, Item{Ellipsis: true})
	}
	for p := from; p <= to; p++ {
		out = append(out, Item{Page: p})
	}
	if to < totalPages-1 {
		out = append(out, Item{Ellipsis: true})
	}
	out = append(out, Item{Page: totalPages})
	return out
}
