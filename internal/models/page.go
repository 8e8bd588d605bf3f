package models

import "strconv"

// PerPage is the fixed page size for catalog and profile listings.
const PerPage = 20

// Page is one 1-indexed slice of an ordered listing.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Pages   int  `json:"pages"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// NewPage fills in the derived fields. Requests past the last page yield an
// empty Items slice with HasNext false.
func NewPage[T any](items []T, total, page, perPage int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Page[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
}

// PrevNum and NextNum are used by templates to build pager links.
func (p Page[T]) PrevNum() int { return p.Page - 1 }
func (p Page[T]) NextNum() int { return p.Page + 1 }

// NormalizePage clamps a requested page number to the first page.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ParsePage reads a page query parameter. Missing or malformed values
// select the first page.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return NormalizePage(n)
}

// Offset returns the row offset of a 1-indexed page.
func Offset(page, perPage int) int {
	return (NormalizePage(page) - 1) * perPage
}
