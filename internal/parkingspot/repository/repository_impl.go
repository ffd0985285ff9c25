package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/smallbiznis/parkingcontrol/internal/parkingspot/domain"
	"github.com/smallbiznis/parkingcontrol/pkg/db"
	"github.com/smallbiznis/parkingcontrol/pkg/db/option"
	"github.com/smallbiznis/parkingcontrol/pkg/db/pagination"
	"github.com/smallbiznis/parkingcontrol/pkg/lock"
	"github.com/smallbiznis/parkingcontrol/pkg/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Locker lock.Locker
}

type repo struct {
	db     *gorm.DB
	store  repository.Repository[domain.ParkingSpot]
	locker lock.Locker
}

func Provide(p Params) domain.Repository {
	return New(p.DB, p.Locker)
}

func New(conn *gorm.DB, locker lock.Locker) domain.Repository {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &repo{
		db:     conn,
		store:  repository.ProvideStore[domain.ParkingSpot](conn),
		locker: locker,
	}
}

func (r *repo) ListPage(ctx context.Context, page pagination.PageRequest) (pagination.Page[domain.ParkingSpot], error) {
	column, ok := domain.SortColumn(page.Sort.Field)
	if !ok {
		return pagination.Page[domain.ParkingSpot]{}, domain.ErrInvalidSortField
	}

	opts := []option.QueryOption{option.OrderBy(column, page.Sort.Direction == pagination.Desc)}
	if column != domain.DefaultSortField {
		// id breaks ties so pages stay disjoint
		opts = append(opts, option.OrderBy(domain.DefaultSortField, false))
	}

	return r.store.FindPage(ctx, nil, page, opts...)
}

func (r *repo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ParkingSpot, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.store.FindOne(ctx, nil, byID(id))
}

func (r *repo) Save(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	if spot == nil {
		return nil, domain.ErrInvalidParkingSpot
	}

	row := *spot
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.write(ctx, &row, true)
}

func (r *repo) Update(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	if spot == nil {
		return nil, domain.ErrInvalidParkingSpot
	}
	if spot.ID == uuid.Nil {
		return nil, domain.ErrNotFound
	}

	row := *spot
	return r.write(ctx, &row, false)
}

// write stores row under its id lock. An absent row is inserted when insert
// is set, otherwise it is reported as ErrNotFound. Existing rows are updated
// by id only, so a unique violation never touches another record.
func (r *repo) write(ctx context.Context, row *domain.ParkingSpot, insert bool) (*domain.ParkingSpot, error) {
	release, err := r.locker.Acquire(ctx, lockKey(row.ID))
	if err != nil {
		return nil, err
	}
	defer release()

	var stored *domain.ParkingSpot
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := r.store.WithTrx(tx)

		exists, err := store.Exists(ctx, nil, byID(row.ID))
		if err != nil {
			return err
		}

		switch {
		case exists:
			if _, err := store.Update(ctx, row); err != nil {
				return err
			}
		case insert:
			if err := store.Create(ctx, row); err != nil {
				return err
			}
		default:
			return domain.ErrNotFound
		}

		found, err := store.FindOne(ctx, nil, byID(row.ID))
		if err != nil {
			return err
		}
		if found == nil {
			return fmt.Errorf("parking spot %s missing after save", row.ID)
		}
		stored = found
		return nil
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return nil, err
	}

	return stored, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.ErrNotFound
	}

	release, err := r.locker.Acquire(ctx, lockKey(id))
	if err != nil {
		return err
	}
	defer release()

	affected, err := r.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) ExistsByLicensePlateCar(ctx context.Context, licensePlateCar string) (bool, error) {
	return r.store.Exists(ctx, nil, option.Where("license_plate_car = ?", licensePlateCar))
}

func (r *repo) ExistsByParkingSpotNumber(ctx context.Context, parkingSpotNumber string) (bool, error) {
	return r.store.Exists(ctx, nil, option.Where("parking_spot_number = ?", parkingSpotNumber))
}

func (r *repo) ExistsByApartmentAndBlock(ctx context.Context, apartment, block string) (bool, error) {
	return r.store.Exists(ctx, nil, option.Where("apartment = ? AND block = ?", apartment, block))
}

func byID(id uuid.UUID) option.QueryOption {
	return option.Where("id = ?", id)
}

func lockKey(id uuid.UUID) string {
	return "parking_spot:" + id.String()
}
