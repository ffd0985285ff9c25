package repository

import (
	"context"

	"github.com/smallbiznis/parkingcontrol/pkg/db/option"
	"github.com/smallbiznis/parkingcontrol/pkg/db/pagination"
	"gorm.io/gorm"
)

// Repository is a generic gorm-backed store keyed by an "id" primary key.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	FindPage(ctx context.Context, query *T, page pagination.PageRequest, opts ...option.QueryOption) (pagination.Page[T], error)
	Exists(ctx context.Context, query *T, opts ...option.QueryOption) (bool, error)
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resource *T) (int64, error)
	Delete(ctx context.Context, resourceID any) (int64, error)
}
