package service

import (
	"context"

	"github.com/google/uuid"
	obslogger "github.com/smallbiznis/parkingcontrol/internal/observability/logger"
	"github.com/smallbiznis/parkingcontrol/internal/parkingspot/domain"
	"github.com/smallbiznis/parkingcontrol/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

// Service passes every call straight to the repository.
type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		log:  log.Named("parkingspot.service"),
		repo: p.Repo,
	}
}

func (s *Service) FindAll(ctx context.Context, page pagination.PageRequest) (pagination.Page[domain.ParkingSpot], error) {
	return s.repo.ListPage(ctx, page)
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*domain.ParkingSpot, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Save(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	saved, err := s.repo.Save(ctx, spot)
	if err != nil {
		return nil, err
	}
	if saved != nil {
		obslogger.WithContext(ctx, s.log).Debug("parking spot saved", zap.String("parking_spot_id", saved.ID.String()))
	}
	return saved, nil
}

func (s *Service) Update(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	updated, err := s.repo.Update(ctx, spot)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		obslogger.WithContext(ctx, s.log).Debug("parking spot updated", zap.String("parking_spot_id", updated.ID.String()))
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	obslogger.WithContext(ctx, s.log).Debug("parking spot deleted", zap.String("parking_spot_id", id.String()))
	return nil
}

func (s *Service) ExistsByLicensePlateCar(ctx context.Context, licensePlateCar string) (bool, error) {
	return s.repo.ExistsByLicensePlateCar(ctx, licensePlateCar)
}

func (s *Service) ExistsByParkingSpotNumber(ctx context.Context, parkingSpotNumber string) (bool, error) {
	return s.repo.ExistsByParkingSpotNumber(ctx, parkingSpotNumber)
}

func (s *Service) ExistsByApartmentAndBlock(ctx context.Context, apartment, block string) (bool, error) {
	return s.repo.ExistsByApartmentAndBlock(ctx, apartment, block)
}
