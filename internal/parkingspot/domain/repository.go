package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/smallbiznis/parkingcontrol/pkg/db/pagination"
)

//go:generate mockgen -source=repository.go -destination=mock/mock_repository.go -package=mock

// Repository persists parking spots. Lookups of unknown ids return (nil, nil).
type Repository interface {
	ListPage(ctx context.Context, page pagination.PageRequest) (pagination.Page[ParkingSpot], error)
	FindByID(ctx context.Context, id uuid.UUID) (*ParkingSpot, error)
	// Save inserts spot, or replaces every field of the stored spot with the
	// same id, and returns the stored form. A nil id is assigned on insert.
	Save(ctx context.Context, spot *ParkingSpot) (*ParkingSpot, error)
	// Update replaces an existing spot and returns ErrNotFound when its id is
	// not stored.
	Update(ctx context.Context, spot *ParkingSpot) (*ParkingSpot, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByLicensePlateCar(ctx context.Context, licensePlateCar string) (bool, error)
	ExistsByParkingSpotNumber(ctx context.Context, parkingSpotNumber string) (bool, error)
	ExistsByApartmentAndBlock(ctx context.Context, apartment, block string) (bool, error)
}
