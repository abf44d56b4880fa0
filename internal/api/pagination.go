package api

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// DefaultPageSize is overridden from config at startup
var DefaultPageSize = 50

// PageParams is the requested slice of a list
type PageParams struct {
	Page int
	Size int
}

// Offset returns the number of rows to skip
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Size
}

// Page is the envelope for paginated responses
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
}

// NewPage builds the envelope, keeping items non-nil for JSON
func NewPage[T any](items []T, total int64, params PageParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if params.Size > 0 {
		pages = int(math.Ceil(float64(total) / float64(params.Size)))
	}
	return Page[T]{
		Items: items,
		Total: total,
		Page:  params.Page,
		Size:  params.Size,
		Pages: pages,
	}
}

// ParsePageParams reads page and size query parameters
func ParsePageParams(c *gin.Context) PageParams {
	params := PageParams{Page: 1, Size: DefaultPageSize}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		params.Page = page
	}
	if size, err := strconv.Atoi(c.Query("size")); err == nil && size > 0 {
		params.Size = size
	}
	if params.Size > maxPageSize {
		params.Size = maxPageSize
	}
	return params
}
