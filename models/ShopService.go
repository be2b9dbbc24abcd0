package models

import "gorm.io/gorm"

// ShopService is one entry in a shop's service catalog (oil change, brake
// job, diagnostics...). Quotes and bookings reference these loosely by name;
// the catalog is advisory pricing, not a contract.
type ShopService struct {
	gorm.Model
	ShopID         uint    `json:"shopID" gorm:"not null;index"`
	Name           string  `json:"name" gorm:"not null"`
	Description    string  `json:"description" gorm:"type:text"`
	BasePrice      float64 `json:"basePrice"`
	EstimatedHours float64 `json:"estimatedHours"`
	Category       string  `json:"category" gorm:"index"`
	IsActive       bool    `json:"isActive" gorm:"default:true"`
}
