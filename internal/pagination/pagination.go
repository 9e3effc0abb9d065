// Package pagination turns page/page_size query parameters into gorm scopes
// and wraps listed rows with page metadata.
package pagination

import (
	"math"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Defaults fills in default values when page or page_size are not provided
// and clamps out-of-range values coming from callers that skipped binding.
func (p *PageRequest) Defaults() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
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

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}

// Find counts the rows matched by q, then loads the requested page of them.
// The scopes (ordering, preloads) only apply to the page query.
func Find[T any](q *gorm.DB, page PageRequest, scopes ...func(*gorm.DB) *gorm.DB) (*PageResponse[T], error) {
	page.Defaults()

	var totalItems int64
	if err := q.Session(&gorm.Session{}).Model(new(T)).Count(&totalItems).Error; err != nil {
		return nil, err
	}

	var items []T
	if err := q.Session(&gorm.Session{}).Scopes(scopes...).Scopes(Paginate(page)).Find(&items).Error; err != nil {
		return nil, err
	}

	result := NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}
