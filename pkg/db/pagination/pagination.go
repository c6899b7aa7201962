package pagination

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Pagination is the skip/limit window accepted by list endpoints.
type Pagination struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}

type PageInfo struct {
	Skip    int  `json:"skip"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// Normalize clamps skip and limit into the accepted range.
func (p Pagination) Normalize() Pagination {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Window fetches one extra row so the caller can detect a following page.
func (p Pagination) Window() (offset, limit int) {
	n := p.Normalize()
	return n.Skip, n.Limit + 1
}

// Trim cuts a result fetched with Window down to the page and reports whether
// more rows exist.
func Trim[T any](items []T, p Pagination) ([]T, PageInfo) {
	n := p.Normalize()
	info := PageInfo{Skip: n.Skip, Limit: n.Limit}
	if len(items) > n.Limit {
		info.HasMore = true
		items = items[:n.Limit]
	}
	return items, info
}
