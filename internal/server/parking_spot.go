package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	obsmiddleware "github.com/smallbiznis/parkingcontrol/internal/observability/logger"
	parkingspotdomain "github.com/smallbiznis/parkingcontrol/internal/parkingspot/domain"
	"go.uber.org/zap"
)

type parkingSpotRequest struct {
	ParkingSpotNumber string `json:"parkingSpotNumber" binding:"required,max=10"`
	LicensePlateCar   string `json:"licensePlateCar" binding:"required,max=10"`
	BrandCar          string `json:"brandCar" binding:"required,max=70"`
	ModelCar          string `json:"modelCar" binding:"required,max=70"`
	ColorCar          string `json:"colorCar" binding:"required,max=70"`
	ResponsibleName   string `json:"responsibleName" binding:"required,max=130"`
	Apartment         string `json:"apartment" binding:"required,max=30"`
	Block             string `json:"block" binding:"required,max=30"`
}

func (r *parkingSpotRequest) normalize() {
	r.ParkingSpotNumber = strings.TrimSpace(r.ParkingSpotNumber)
	r.LicensePlateCar = strings.TrimSpace(r.LicensePlateCar)
	r.BrandCar = strings.TrimSpace(r.BrandCar)
	r.ModelCar = strings.TrimSpace(r.ModelCar)
	r.ColorCar = strings.TrimSpace(r.ColorCar)
	r.ResponsibleName = strings.TrimSpace(r.ResponsibleName)
	r.Apartment = strings.TrimSpace(r.Apartment)
	r.Block = strings.TrimSpace(r.Block)
}

// applyTo overwrites every client-owned field of spot.
func (r parkingSpotRequest) applyTo(spot *parkingspotdomain.ParkingSpot) {
	spot.ParkingSpotNumber = r.ParkingSpotNumber
	spot.LicensePlateCar = r.LicensePlateCar
	spot.BrandCar = r.BrandCar
	spot.ModelCar = r.ModelCar
	spot.ColorCar = r.ColorCar
	spot.ResponsibleName = r.ResponsibleName
	spot.Apartment = r.Apartment
	spot.Block = r.Block
}

func bindParkingSpotRequest(c *gin.Context) (parkingSpotRequest, error) {
	var req parkingSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, bindingError(err)
	}

	// whitespace-only values pass "required" until trimmed
	req.normalize()
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return req, bindingError(err)
	}
	return req, nil
}

func bindingError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalidRequestError()
	}

	out := &ValidationErrors{}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   jsonFieldName(fe.Field()),
			Code:    fe.Tag(),
			Message: validationMessage(fe),
		})
	}
	return out
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "max":
		return "size must be at most " + fe.Param()
	default:
		return "invalid value"
	}
}

func (s *Server) CreateParkingSpot(c *gin.Context) {
	req, err := bindParkingSpotRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.checkAvailability(ctx, req); err != nil {
		AbortWithError(c, err)
		return
	}

	spot := parkingspotdomain.ParkingSpot{
		RegistrationDate: s.clock.Now().UTC(),
	}
	req.applyTo(&spot)

	saved, err := s.parkingSpotSvc.Save(ctx, &spot)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordSave(ctx, "insert")

	c.JSON(http.StatusCreated, gin.H{"data": saved})
}

// checkAvailability rejects a new spot whose plate, number or apartment and
// block are already registered.
func (s *Server) checkAvailability(ctx context.Context, req parkingSpotRequest) error {
	exists, err := s.parkingSpotSvc.ExistsByLicensePlateCar(ctx, req.LicensePlateCar)
	if err != nil {
		return err
	}
	if exists {
		s.obsMetrics.RecordRejection(ctx, "license_plate_in_use")
		return parkingspotdomain.ErrLicensePlateInUse
	}

	exists, err = s.parkingSpotSvc.ExistsByParkingSpotNumber(ctx, req.ParkingSpotNumber)
	if err != nil {
		return err
	}
	if exists {
		s.obsMetrics.RecordRejection(ctx, "parking_spot_in_use")
		return parkingspotdomain.ErrParkingSpotInUse
	}

	exists, err = s.parkingSpotSvc.ExistsByApartmentAndBlock(ctx, req.Apartment, req.Block)
	if err != nil {
		return err
	}
	if exists {
		s.obsMetrics.RecordRejection(ctx, "apartment_block_in_use")
		return parkingspotdomain.ErrApartmentBlockInUse
	}

	return nil
}

func (s *Server) ListParkingSpots(c *gin.Context) {
	page, err := parsePageRequest(c, s.pagingConfig())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.parkingSpotSvc.FindAll(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetParkingSpot(c *gin.Context) {
	spot, ok := s.loadParkingSpot(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": spot})
}

func (s *Server) UpdateParkingSpot(c *gin.Context) {
	existing, ok := s.loadParkingSpot(c)
	if !ok {
		return
	}

	req, err := bindParkingSpotRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	updated := *existing
	req.applyTo(&updated)

	ctx := c.Request.Context()
	saved, err := s.parkingSpotSvc.Update(ctx, &updated)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordSave(ctx, "update")

	c.JSON(http.StatusOK, gin.H{"data": saved})
}

func (s *Server) DeleteParkingSpot(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.parkingSpotSvc.Delete(ctx, id); err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordDelete(ctx)
	obsmiddleware.WithContext(ctx, s.log).Info("parking spot deleted", zap.String("parking_spot_id", id.String()))

	c.JSON(http.StatusOK, gin.H{"message": msgParkingSpotDeleted})
}

// loadParkingSpot resolves the :id path parameter, writing the error
// response itself when it returns false.
func (s *Server) loadParkingSpot(c *gin.Context) (*parkingspotdomain.ParkingSpot, bool) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}

	spot, err := s.parkingSpotSvc.FindByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	if spot == nil || spot.ID == uuid.Nil {
		AbortWithError(c, parkingspotdomain.ErrNotFound)
		return nil, false
	}
	return spot, true
}
