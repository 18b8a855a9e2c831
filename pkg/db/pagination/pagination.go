package pagination

// MaxPageSize caps how many rows one page can return.
const MaxPageSize = 50

// DefaultPageSize applies when the caller sends no limit.
const DefaultPageSize = 10

// Pagination carries page/limit query parameters. Embed it in query
// binding structs.
type Pagination struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

// Normalize clamps page and limit into their allowed ranges.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// PageInfo describes the page a listing response covers.
type PageInfo struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Count int `json:"count"`
}
