package pagination

import (
	"errors"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 250 // Hard upper bound, config may only lower it
)

var ErrInvalidPageRequest = errors.New("invalid_page_request")

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// PageRequest addresses a zero-based page of a result set.
type PageRequest struct {
	Page int  `form:"page"`
	Size int  `form:"size"`
	Sort Sort `form:"-"`
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

func Of(page, size int) PageRequest {
	return PageRequest{Page: page, Size: size}
}

func (p PageRequest) WithSort(field string, direction Direction) PageRequest {
	p.Sort = Sort{Field: field, Direction: direction}
	return p
}

func (p PageRequest) Validate() error {
	if p.Page < 0 || p.Size <= 0 || p.Size > MaxPageSize {
		return ErrInvalidPageRequest
	}
	switch p.Sort.Direction {
	case "", Asc, Desc:
	default:
		return ErrInvalidPageRequest
	}
	return nil
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// ParseSort reads "field" or "field,asc|desc".
func ParseSort(raw string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Sort{}, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) > 2 {
		return Sort{}, ErrInvalidPageRequest
	}

	field := strings.TrimSpace(parts[0])
	if field == "" {
		return Sort{}, ErrInvalidPageRequest
	}

	sort := Sort{Field: field, Direction: Asc}
	if len(parts) == 2 {
		switch Direction(strings.ToLower(strings.TrimSpace(parts[1]))) {
		case Asc:
		case Desc:
			sort.Direction = Desc
		default:
			return Sort{}, ErrInvalidPageRequest
		}
	}
	return sort, nil
}

func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
