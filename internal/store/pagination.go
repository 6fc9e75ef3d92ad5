package store

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strings"

	"github.com/go-playground/form/v4"
)

var queryDecoder = form.NewDecoder()

type PaginateQueryFilter struct {
	Page         int      `form:"page"`
	PageSize     int      `form:"page_size"`
	Sort         string   `form:"sort"`
	SortSafelist []string `form:"-"`
}

func (f *PaginateQueryFilter) Parse(r *http.Request) error {
	if err := queryDecoder.Decode(f, r.URL.Query()); err != nil {
		return fmt.Errorf("invalid pagination query: %w", err)
	}

	if f.Page < 1 || f.Page > 10_000_000 {
		return errors.New("page must be between 1 and 10000000")
	}

	if f.PageSize < 1 || f.PageSize > 100 {
		return errors.New("page_size must be between 1 and 100")
	}

	if !slices.Contains(f.SortSafelist, f.Sort) {
		return fmt.Errorf("invalid sort value %q", f.Sort)
	}

	return nil
}

func (f PaginateQueryFilter) SortColumn() string {
	for _, safeValue := range f.SortSafelist {
		if f.Sort == safeValue {
			return strings.TrimPrefix(f.Sort, "-")
		}
	}

	panic("unsafe sort parameter: " + f.Sort)
}

func (f PaginateQueryFilter) SortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}

	return "ASC"
}

func (f PaginateQueryFilter) Limit() int {
	return f.PageSize
}

func (f PaginateQueryFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records"`
}

func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}

	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}
