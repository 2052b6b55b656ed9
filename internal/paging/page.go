package paging

const DEFAULT_PAGE_SIZE = 10

// TotalPages is never less than 1, so an empty result still has a page.
func TotalPages(count, size int) int {
	if size <= 0 || count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// Clamp moves page into [1, total].
func Clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	return max(1, min(page, total))
}

// Page is one offset/limit window over a result set.
type Page struct {
	Number     int `json:"page"`
	Size       int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Start      int `json:"start"`
	End        int `json:"end"`
}

// NewPage computes the window for page over count items. page is clamped
// first, so Start and End are always valid slice bounds.
func NewPage(page, size, count int) Page {
	if size <= 0 {
		size = DEFAULT_PAGE_SIZE
	}
	total_pages := TotalPages(count, size)
	page = Clamp(page, total_pages)

	start := min((page-1)*size, count)
	end := min(start+size, count)
	return Page{page, size, count, total_pages, start, end}
}

func (p Page) HasNext() bool { return p.Number < p.TotalPages }
func (p Page) HasPrev() bool { return p.Number > 1 }

// Slice returns the items of p. items must hold p.Total elements.
func Slice[T any](items []T, p Page) []T {
	if p.Start >= len(items) {
		return []T{}
	}
	return items[p.Start:min(p.End, len(items))]
}
