package domain

import (
	"encoding/json"
	"math"
	"strings"
)

// Sort fields accepted from clients. Anything else falls back to the default ordering.
const (
	SortTimestamp = "timestamp"
	SortTitle     = "title"
)

// maxOffset bounds Skip so a huge page number yields an empty page instead of overflowing.
const maxOffset = math.MaxInt32

// QueryOptions is the request-scoped paging, search and sort input.
type QueryOptions struct {
	Search    string
	Page      int
	PageSize  int
	OrderBy   string
	OrderDesc bool
}

func NewQueryOptions(search string, page int, pageSize int) QueryOptions {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return QueryOptions{Search: search, Page: min(page, maxPage(pageSize)), PageSize: pageSize}
}

func maxPage(pageSize int) int {
	return maxOffset/pageSize + 1
}

func (o QueryOptions) Skip() int {
	take := o.Take()
	page := min(max(o.Page, 1), maxPage(take))
	return (page - 1) * take
}

func (o QueryOptions) Take() int {
	return max(o.PageSize, 1)
}

func (o QueryOptions) SearchIsDefined() bool {
	return strings.TrimSpace(o.Search) != ""
}

func (o QueryOptions) OrderByIsDefined() bool {
	switch o.OrderBy {
	case SortTimestamp, SortTitle:
		return true
	}
	return false
}

// WithOrder returns a copy sorted by field.
func (o QueryOptions) WithOrder(field string, desc bool) QueryOptions {
	o.OrderBy = strings.ToLower(strings.TrimSpace(field))
	o.OrderDesc = desc
	return o
}

// PaginatedData is one page of items plus the size of the whole result.
// The item slice is copied on the way in and out.
type PaginatedData[T any] struct {
	items        []T
	totalRecords int
	pageSize     int
}

func NewPaginatedData[T any](items []T, totalRecords int, pageSize int) PaginatedData[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return PaginatedData[T]{items: cp, totalRecords: totalRecords, pageSize: pageSize}
}

func (p PaginatedData[T]) Items() []T {
	cp := make([]T, len(p.items))
	copy(cp, p.items)
	return cp
}

func (p PaginatedData[T]) Len() int {
	return len(p.items)
}

func (p PaginatedData[T]) TotalRecords() int {
	return p.totalRecords
}

func (p PaginatedData[T]) PageSize() int {
	return p.pageSize
}

func (p PaginatedData[T]) TotalPages() int {
	if p.pageSize <= 0 || p.totalRecords <= 0 {
		return 0
	}
	return (p.totalRecords + p.pageSize - 1) / p.pageSize
}

type paginatedJSON[T any] struct {
	Items        []T `json:"items"`
	TotalRecords int `json:"total_records"`
	PageSize     int `json:"page_size"`
	TotalPages   int `json:"total_pages"`
}

func (p PaginatedData[T]) MarshalJSON() ([]byte, error) {
	items := p.items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(paginatedJSON[T]{
		Items:        items,
		TotalRecords: p.totalRecords,
		PageSize:     p.pageSize,
		TotalPages:   p.TotalPages(),
	})
}

func (p *PaginatedData[T]) UnmarshalJSON(data []byte) error {
	var raw paginatedJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = NewPaginatedData(raw.Items, raw.TotalRecords, raw.PageSize)
	return nil
}
