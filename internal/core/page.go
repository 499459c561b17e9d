package core

// Pagination bounds a listing.
type Pagination struct {
	Limit  int
	Offset int
}

const MaxPageSize = 100

// NewPagination applies defaults and rejects out-of-range values.
// A zero limit means "use the default".
func NewPagination(limit, offset, defaultLimit int) (Pagination, error) {
	if limit < 0 {
		return Pagination{}, Validationf("limit cannot be negative")
	}
	if offset < 0 {
		return Pagination{}, Validationf("offset cannot be negative")
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		return Pagination{}, Validationf("limit cannot exceed %d", MaxPageSize)
	}
	return Pagination{Limit: limit, Offset: offset}, nil
}

// Page is one slice of a larger ordered listing.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewPage sets HasMore when rows remain past this page.
func NewPage[T any](items []T, total int, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.Offset+len(items) < total,
	}
}
