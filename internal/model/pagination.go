package model

// PaginationInfo describes the page geometry of one result group as
// rendered on a single page. It is derived fresh from every fetch.
type PaginationInfo struct {
	// Total is the number of records in the group across all pages.
	Total int `json:"total"`

	// CurrentPage is the zero-based index of the rendered page.
	CurrentPage int `json:"current_page"`

	// TotalPages is always at least 1.
	TotalPages int `json:"total_pages"`

	// PageSize is the number of records per page, at least 1.
	PageSize int `json:"page_size"`
}

// NewPaginationInfo builds a PaginationInfo, flooring the page size to 1
// and computing the page count.
func NewPaginationInfo(total, currentPage, pageSize int) PaginationInfo {
	if pageSize < 1 {
		pageSize = 1
	}
	if total < 0 {
		total = 0
	}
	if currentPage < 0 {
		currentPage = 0
	}
	return PaginationInfo{
		Total:       total,
		CurrentPage: currentPage,
		TotalPages:  TotalPages(total, pageSize),
		PageSize:    pageSize,
	}
}

// TotalPages returns max(1, ceil(total/pageSize)) with pageSize floored to 1.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if total <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// HasNext reports whether a page after the current one exists.
func (p PaginationInfo) HasNext() bool {
	return p.CurrentPage < p.TotalPages-1
}
