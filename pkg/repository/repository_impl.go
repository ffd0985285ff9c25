package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/parkingcontrol/pkg/db/option"
	"github.com/smallbiznis/parkingcontrol/pkg/db/pagination"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (r *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

func (r *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var result []*T
	stmt := r.buildQuery(ctx, query, opts...)
	err := stmt.Find(&result).Error
	return result, err
}

func (r *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var result T
	stmt := r.buildQuery(ctx, query, opts...)
	err := stmt.First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// FindPage counts the filtered set and loads one page of it. Pagination is
// appended after opts, gorm drops ORDER BY from the count.
func (r *store[T]) FindPage(ctx context.Context, query *T, page pagination.PageRequest, opts ...option.QueryOption) (pagination.Page[T], error) {
	if err := page.Validate(); err != nil {
		return pagination.Page[T]{}, err
	}

	total, err := r.Count(ctx, query, opts...)
	if err != nil {
		return pagination.Page[T]{}, err
	}

	items, err := r.Find(ctx, query, append(opts, option.ApplyPagination(page))...)
	if err != nil {
		return pagination.Page[T]{}, err
	}

	content := make([]T, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		content = append(content, *item)
	}

	return pagination.NewPage(content, page, total), nil
}

func (r *store[T]) Exists(ctx context.Context, query *T, opts ...option.QueryOption) (bool, error) {
	count, err := r.Count(ctx, query, opts...)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count ignores zero-valued fields of query, use option.Where to match on them.
func (r *store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	var count int64
	err := r.buildQuery(ctx, query, opts...).Count(&count).Error
	return count, err
}

func (r *store[T]) Create(ctx context.Context, resource *T) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

// Update replaces every column of the row matching the primary key of
// resource. Zero values are written too. The primary key must be set.
func (r *store[T]) Update(ctx context.Context, resource *T) (int64, error) {
	res := r.db.WithContext(ctx).Select("*").Updates(resource)
	return res.RowsAffected, res.Error
}

func (r *store[T]) Delete(ctx context.Context, resourceID any) (int64, error) {
	var dummy T
	res := r.db.WithContext(ctx).Where("id = ?", resourceID).Delete(&dummy)
	return res.RowsAffected, res.Error
}

func (r *store[T]) buildQuery(ctx context.Context, filter *T, opts ...option.QueryOption) *gorm.DB {
	db := r.db.WithContext(ctx).Model(new(T))
	if filter != nil {
		db = db.Where(filter)
	}

	for _, opt := range opts {
		db = opt.Apply(db)
	}

	return db
}
