package domain

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a 1-based pagination window.
type Page struct {
	Number int
	Limit  int
}

// NewPage validates a page request. Limits above MaxLimit are capped.
func NewPage(number, limit int) (Page, error) {
	if number < 1 {
		return Page{}, ValidationError("page must be greater than or equal to 1")
	}
	if limit < 1 {
		return Page{}, ValidationError("limit must be greater than or equal to 1")
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}, nil
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int64 {
	return int64(p.Number-1) * int64(p.Limit)
}
