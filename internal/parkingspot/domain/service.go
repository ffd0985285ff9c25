package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbiznis/parkingcontrol/pkg/db/pagination"
)

type Service interface {
	FindAll(ctx context.Context, page pagination.PageRequest) (pagination.Page[ParkingSpot], error)
	FindByID(ctx context.Context, id uuid.UUID) (*ParkingSpot, error)
	Save(ctx context.Context, spot *ParkingSpot) (*ParkingSpot, error)
	Update(ctx context.Context, spot *ParkingSpot) (*ParkingSpot, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByLicensePlateCar(ctx context.Context, licensePlateCar string) (bool, error)
	ExistsByParkingSpotNumber(ctx context.Context, parkingSpotNumber string) (bool, error)
	ExistsByApartmentAndBlock(ctx context.Context, apartment, block string) (bool, error)
}

var (
	ErrNotFound            = errors.New("not_found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidParkingSpot  = errors.New("invalid_parking_spot")
	ErrLicensePlateInUse   = errors.New("license_plate_in_use")
	ErrParkingSpotInUse    = errors.New("parking_spot_in_use")
	ErrApartmentBlockInUse = errors.New("apartment_block_in_use")
	ErrInvalidSortField    = errors.New("invalid_sort_field")
)

const DefaultSortField = "id"

var sortableFields = []string{
	"id",
	"parking_spot_number",
	"license_plate_car",
	"brand_car",
	"model_car",
	"color_car",
	"registration_date",
	"responsible_name",
	"apartment",
	"block",
}

// SortColumn resolves a sort field to its column. Both snake_case columns and
// the camelCase JSON names are accepted.
func SortColumn(field string) (string, bool) {
	if field == "" {
		return DefaultSortField, true
	}
	for _, column := range sortableFields {
		if field == column || field == camelCase(column) {
			return column, true
		}
	}
	return "", false
}

func camelCase(column string) string {
	out := make([]byte, 0, len(column))
	upper := false
	for i := 0; i < len(column); i++ {
		c := column[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}
