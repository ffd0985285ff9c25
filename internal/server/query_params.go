package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smallbiznis/parkingcontrol/internal/config"
	parkingspotdomain "github.com/smallbiznis/parkingcontrol/internal/parkingspot/domain"
	"github.com/smallbiznis/parkingcontrol/pkg/db/pagination"
)

type pageQuery struct {
	Page *int   `form:"page"`
	Size *int   `form:"size"`
	Sort string `form:"sort"`
}

func parseID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, parkingspotdomain.ErrInvalidID
	}
	id, err := uuid.Parse(trimmed)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, parkingspotdomain.ErrInvalidID
	}
	return id, nil
}

// parsePageRequest reads page, size and sort, filling gaps from the paging
// defaults. Sizes above the configured maximum are clamped.
func parsePageRequest(c *gin.Context, cfg config.PagingConfig) (pagination.PageRequest, error) {
	var query pageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return pagination.PageRequest{}, pagination.ErrInvalidPageRequest
	}

	page := 0
	if query.Page != nil {
		page = *query.Page
	}

	size := cfg.DefaultSize
	if query.Size != nil {
		size = *query.Size
	}
	if cfg.MaxSize > 0 && size > cfg.MaxSize {
		size = cfg.MaxSize
	}

	rawSort := strings.TrimSpace(query.Sort)
	if rawSort == "" {
		rawSort = cfg.DefaultSort
	}
	sort, err := pagination.ParseSort(rawSort)
	if err != nil {
		return pagination.PageRequest{}, err
	}
	if _, ok := parkingspotdomain.SortColumn(sort.Field); !ok {
		return pagination.PageRequest{}, parkingspotdomain.ErrInvalidSortField
	}

	req := pagination.Of(page, size).WithSort(sort.Field, sort.Direction)
	if err := req.Validate(); err != nil {
		return pagination.PageRequest{}, err
	}
	return req, nil
}
