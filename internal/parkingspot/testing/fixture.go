// Package testing builds parking spot fixtures for tests.
package testing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/parkingcontrol/internal/parkingspot/domain"
	"pgregory.net/rapid"
)

var (
	brands = []string{"Toyota", "Honda", "Volkswagen", "Fiat", "Ford", "Renault", "Chevrolet"}
	models = []string{"Corolla", "Civic", "Gol", "Palio", "Fiesta", "Sandero", "Onix"}
	colors = []string{"black", "white", "silver", "red", "blue", "green", "grey"}
)

// Epoch anchors generated registration dates.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// NewParkingSpot returns a deterministic spot whose unique fields derive from i.
func NewParkingSpot(i int) domain.ParkingSpot {
	return domain.ParkingSpot{
		ParkingSpotNumber: fmt.Sprintf("%c%03d", 'A'+rune(i%26), i%1000),
		LicensePlateCar:   fmt.Sprintf("ABC-%04d", i),
		BrandCar:          brands[i%len(brands)],
		ModelCar:          models[i%len(models)],
		ColorCar:          colors[i%len(colors)],
		RegistrationDate:  Epoch.Add(-time.Duration(i) * 24 * time.Hour),
		ResponsibleName:   fmt.Sprintf("Resident %d", i),
		Apartment:         fmt.Sprintf("%03d", 100+i%900),
		Block:             fmt.Sprintf("Bloco %c", 'A'+rune(i%26)),
	}
}

func SpotNumber() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Z][0-9]{3}`)
}

func LicensePlate() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Z]{3}-[0-9]{4}`)
}

func Apartment() *rapid.Generator[string] {
	return rapid.StringMatching(`[0-9]{3}`)
}

func Block() *rapid.Generator[string] {
	return rapid.StringMatching(`Bloco [A-Z]`)
}

// RegistrationDate draws a second-precision date within the year before Epoch.
func RegistrationDate() *rapid.Generator[time.Time] {
	return rapid.Custom(func(t *rapid.T) time.Time {
		back := rapid.Int64Range(0, 365*24*3600).Draw(t, "seconds_back")
		return Epoch.Add(-time.Duration(back) * time.Second)
	})
}

// ParkingSpot draws a spot without an id.
func ParkingSpot() *rapid.Generator[domain.ParkingSpot] {
	return rapid.Custom(func(t *rapid.T) domain.ParkingSpot {
		return domain.ParkingSpot{
			ParkingSpotNumber: SpotNumber().Draw(t, "parking_spot_number"),
			LicensePlateCar:   LicensePlate().Draw(t, "license_plate_car"),
			BrandCar:          rapid.SampledFrom(brands).Draw(t, "brand_car"),
			ModelCar:          rapid.SampledFrom(models).Draw(t, "model_car"),
			ColorCar:          rapid.SampledFrom(colors).Draw(t, "color_car"),
			RegistrationDate:  RegistrationDate().Draw(t, "registration_date"),
			ResponsibleName:   rapid.StringMatching(`[A-Z][a-z]{2,10} [A-Z][a-z]{2,12}`).Draw(t, "responsible_name"),
			Apartment:         Apartment().Draw(t, "apartment"),
			Block:             Block().Draw(t, "block"),
		}
	})
}

// ParkingSpots draws n spots with distinct spot numbers and plates.
func ParkingSpots(n int) *rapid.Generator[[]domain.ParkingSpot] {
	return rapid.Custom(func(t *rapid.T) []domain.ParkingSpot {
		identity := func(s string) string { return s }
		numbers := rapid.SliceOfNDistinct(SpotNumber(), n, n, identity).Draw(t, "parking_spot_numbers")
		plates := rapid.SliceOfNDistinct(LicensePlate(), n, n, identity).Draw(t, "license_plates")

		spots := make([]domain.ParkingSpot, n)
		for i := range spots {
			spot := ParkingSpot().Draw(t, fmt.Sprintf("parking_spot_%d", i))
			spot.ParkingSpotNumber = numbers[i]
			spot.LicensePlateCar = plates[i]
			spots[i] = spot
		}
		return spots
	})
}

// WithID returns spots with fresh random ids.
func WithID(spots []domain.ParkingSpot) []domain.ParkingSpot {
	out := make([]domain.ParkingSpot, len(spots))
	for i, spot := range spots {
		spot.ID = uuid.New()
		out[i] = spot
	}
	return out
}
