package pagination

import (
	"math"

	"gorm.io/gorm"
)

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// DefaultPageSize is used when page_size is missing or not positive.
const DefaultPageSize = 20

// Defaults fills in default values when page or page_size are missing or
// not positive.
func (p *PageRequest) Defaults() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Beyond reports whether the page starts past total items. It does not
// multiply, so a huge page number cannot overflow into a negative offset.
// Call Defaults first.
func (p *PageRequest) Beyond(total int64) bool {
	return int64(p.Page-1) > total/int64(p.PageSize)
}

// PageResponse wraps a paginated list of items with metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given
// page request. total is the item count; a page past it selects nothing.
func Paginate(req PageRequest, total int64) func(db *gorm.DB) *gorm.DB {
	req.Defaults()
	return func(db *gorm.DB) *gorm.DB {
		if req.Beyond(total) {
			return db.Where("1 = 0")
		}
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}

// Slice returns the requested page of an in-memory list.
func Slice[T any](items []T, req PageRequest) PageResponse[T] {
	req.Defaults()
	total := len(items)
	start, end := total, total
	if !req.Beyond(int64(total)) {
		start = min(req.Offset(), total)
		end = start + min(req.PageSize, total-start)
	}
	return NewPageResponse(items[start:end:end], req.Page, req.PageSize, int64(total))
}
