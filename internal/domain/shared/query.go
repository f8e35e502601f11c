package shared

// Filter carries list query options down to repositories.
// Filters keys are repository-specific column filters, e.g. "status" or "department_id".
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter is page 1 of 20, newest first.
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]interface{}{},
	}
}

// Offset is the number of rows to skip. Pages start at 1.
func (f Filter) Offset() int {
	if f.Page < 2 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
