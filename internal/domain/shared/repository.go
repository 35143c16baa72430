package shared

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Filter carries the paging, sorting and free-text search of a list query.
// Repositories embed it in their own filter types.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// NewFilter normalises request values: page starts at 1 and the page size
// defaults to 20, capped at 100.
func NewFilter(page, pageSize int, orderBy, orderDir, search string) Filter {
	f := Filter{Page: max(page, 1), PageSize: defaultPageSize, OrderBy: orderBy, OrderDir: orderDir, Search: search}
	if pageSize > 0 {
		f.PageSize = min(pageSize, maxPageSize)
	}
	return f
}

func (f Filter) Offset() int {
	return max(f.Page-1, 0) * f.PageSize
}

// Paginated is one page of a list plus the totals needed to page through it.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
