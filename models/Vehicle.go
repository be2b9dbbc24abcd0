package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Vehicle struct {
	gorm.Model
	OwnerID      uint           `json:"ownerID" gorm:"not null;index"`
	Make         string         `json:"make" gorm:"not null"`
	VehicleModel string         `json:"model" gorm:"column:vehicle_model;not null"`
	Year         int            `json:"year"`
	PlateNumber  string         `json:"plateNumber"`
	VIN          string         `json:"vin"`
	Mileage      int            `json:"mileage"`
	Photos       datatypes.JSON `json:"photos"`
}
