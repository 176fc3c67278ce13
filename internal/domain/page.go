package domain

// Default and maximum page sizes for listings.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Page is a normalized page request.
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps raw values: page >= 1, 1 <= limit <= MaxPageLimit.
// A zero limit selects DefaultPageLimit.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	switch {
	case limit == 0:
		limit = DefaultPageLimit
	case limit < 1:
		limit = 1
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Pagination describes a page of a listing of total rows.
type Pagination struct {
	Page        int
	Limit       int
	Total       int
	TotalPages  int
	HasNextPage bool
	HasPrevPage bool
}

// Paginate computes the pagination block for p over total rows.
func Paginate(p Page, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       total,
		TotalPages:  pages,
		HasNextPage: p.Page*p.Limit < total,
		HasPrevPage: p.Page > 1,
	}
}
