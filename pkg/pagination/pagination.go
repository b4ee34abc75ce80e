package pagination

// Params are 1-based page selection parameters.
type Params struct {
	Page     int
	PageSize int
}

func (p Params) CalculateOffsetLimit() (offset, limit int) {
	if p.PageSize == 0 {
		return 0, 0
	}
	offset = (p.Page - 1) * p.PageSize
	limit = p.PageSize
	return offset, limit
}

func (p Params) BuildMeta(totalItems int) Meta {
	pages := 0
	if p.PageSize > 0 {
		pages = (totalItems + p.PageSize - 1) / p.PageSize
	}
	return Meta{
		Current: p.Page,
		Total:   totalItems,
		Pages:   pages,
	}
}

type Meta struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

// Slice returns the page window over an already sorted set. Out-of-range
// pages return an empty slice rather than an error.
func Slice[T any](items []T, p Params) []T {
	offset, limit := p.CalculateOffsetLimit()
	if limit == 0 {
		return items
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
