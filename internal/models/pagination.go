package models

// MaxPerPage caps every page size
const MaxPerPage = 100

// PageRequest is a 1-based page request
type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize applies the default page size and clamps both values
func (p PageRequest) Normalize(defaultPerPage int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage == 0 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage < 1 {
		p.PerPage = 1
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset of a normalized request
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pagination is the metadata returned with every list
type Pagination struct {
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPagination builds the metadata for a normalized request and a total row count
func NewPagination(req PageRequest, total int64) Pagination {
	pages := 0
	if total > 0 {
		pages = int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	}
	return Pagination{
		Page:    req.Page,
		Pages:   pages,
		PerPage: req.PerPage,
		Total:   total,
		HasNext: req.Page < pages,
		HasPrev: req.Page > 1,
	}
}

// Page is one page of items with its metadata
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
