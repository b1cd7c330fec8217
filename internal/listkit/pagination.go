package listkit

import "fmt"

// DefaultPageSizes is the allowed page size set when none is configured.
var DefaultPageSizes = []int{10, 25, 50, 100}

// Pager tracks the pagination state of a list view. It holds state only:
// transitions never trigger a fetch, the owning controller observes the
// state and re-fetches explicitly.
type Pager struct {
	page     int
	pageSize int
	total    int
	allowed  []int
}

// NewPager constructs a pager on page 1 with the given page size. Sizes
// outside the allowed set fall back to the first allowed value.
func NewPager(pageSize int, allowed ...int) *Pager {
	if len(allowed) == 0 {
		allowed = DefaultPageSizes
	}
	p := &Pager{page: 1, allowed: allowed}
	p.pageSize = p.normalizeSize(pageSize)
	return p
}

func (p *Pager) normalizeSize(size int) int {
	for _, s := range p.allowed {
		if s == size {
			return size
		}
	}
	return p.allowed[0]
}

// GoToPage transitions to page n when 1 <= n <= TotalPages; out-of-range
// values are a no-op, not an error. Reports whether the state changed.
func (p *Pager) GoToPage(n int) bool {
	if n < 1 || n > p.TotalPages() || n == p.page {
		return false
	}
	p.page = n
	return true
}

// SetPageSize changes the page size and resets to page 1.
func (p *Pager) SetPageSize(size int) bool {
	size = p.normalizeSize(size)
	if size == p.pageSize && p.page == 1 {
		return false
	}
	p.pageSize = size
	p.page = 1
	return true
}

// ResetToFirstPage returns to page 1. Used whenever filter state changes
// upstream.
func (p *Pager) ResetToFirstPage() bool {
	if p.page == 1 {
		return false
	}
	p.page = 1
	return true
}

// SetTotal records the collection total and clamps the current page so that
// (page-1)*pageSize < total whenever total > 0.
func (p *Pager) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	if p.page > p.TotalPages() {
		p.page = p.TotalPages()
	}
}

// Page returns the current 1-based page index.
func (p Pager) Page() int { return p.page }

// PageSize returns the active page size.
func (p Pager) PageSize() int { return p.pageSize }

// Total returns the last recorded collection total.
func (p Pager) Total() int { return p.total }

// Offset returns the zero-based record offset of the current page.
func (p Pager) Offset() int { return (p.page - 1) * p.pageSize }

// TotalPages is max(1, ceil(total/pageSize)).
func (p Pager) TotalPages() int {
	if p.total <= 0 {
		return 1
	}
	pages := (p.total + p.pageSize - 1) / p.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// RangeStart is the 1-based index of the first record on the page, 0 when the
// collection is empty.
func (p Pager) RangeStart() int {
	if p.total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// RangeEnd is the 1-based index of the last record on the page.
func (p Pager) RangeEnd() int {
	end := p.Offset() + p.pageSize
	if end > p.total {
		end = p.total
	}
	return end
}

// IsFirstPage reports whether the pager is on page 1.
func (p Pager) IsFirstPage() bool { return p.page == 1 }

// IsLastPage reports whether the pager is on the final page.
func (p Pager) IsLastPage() bool { return p.page == p.TotalPages() }

// RangeLabel renders the human readable "Showing X-Y of Z" label.
func (p Pager) RangeLabel() string {
	return fmt.Sprintf("Showing %d-%d of %d", p.RangeStart(), p.RangeEnd(), p.total)
}
