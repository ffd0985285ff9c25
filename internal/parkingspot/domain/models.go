package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParkingSpot struct {
	ID                uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	ParkingSpotNumber string    `gorm:"size:10;not null;uniqueIndex:ux_parking_spots_number" json:"parkingSpotNumber"`
	LicensePlateCar   string    `gorm:"size:10;not null;uniqueIndex:ux_parking_spots_license_plate" json:"licensePlateCar"`
	BrandCar          string    `gorm:"size:70;not null" json:"brandCar"`
	ModelCar          string    `gorm:"size:70;not null" json:"modelCar"`
	ColorCar          string    `gorm:"size:70;not null" json:"colorCar"`
	RegistrationDate  time.Time `gorm:"not null" json:"registrationDate"`
	ResponsibleName   string    `gorm:"size:130;not null" json:"responsibleName"`
	Apartment         string    `gorm:"size:30;not null;index:ix_parking_spots_apartment_block" json:"apartment"`
	Block             string    `gorm:"size:30;not null;index:ix_parking_spots_apartment_block" json:"block"`
}

func (ParkingSpot) TableName() string {
	return "parking_spots"
}

// BeforeSave stores registration dates in UTC at microsecond precision, the
// finest every supported database keeps.
func (p *ParkingSpot) BeforeSave(tx *gorm.DB) error {
	p.RegistrationDate = p.RegistrationDate.UTC().Truncate(time.Microsecond)
	return nil
}

func (p *ParkingSpot) AfterFind(tx *gorm.DB) error {
	p.RegistrationDate = p.RegistrationDate.UTC()
	return nil
}
