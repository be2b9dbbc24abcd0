package models

import "gorm.io/gorm"

const (
	BookingStatusPending    = "PENDING"
	BookingStatusConfirmed  = "CONFIRMED"
	BookingStatusInProgress = "IN_PROGRESS"
	BookingStatusCompleted  = "COMPLETED"
	BookingStatusCancelled  = "CANCELLED"
)

// Booking reserves exactly one time slot at one shop. Creating a booking
// claims the slot atomically; cancelling releases it. COMPLETED is reached
// only through invoice approval.
type Booking struct {
	gorm.Model
	OwnerID            uint     `json:"ownerID" gorm:"not null;index"`
	Owner              User     `json:"owner" gorm:"foreignKey:OwnerID"`
	ShopID             uint     `json:"shopID" gorm:"not null;index"`
	Shop               Shop     `json:"shop" gorm:"foreignKey:ShopID"`
	VehicleID          uint     `json:"vehicleID" gorm:"not null"`
	Vehicle            Vehicle  `json:"vehicle" gorm:"foreignKey:VehicleID"`
	QuoteID            *uint    `json:"quoteID" gorm:"index"`
	Quote              *Quote   `json:"quote,omitempty" gorm:"foreignKey:QuoteID"`
	ServiceDescription string   `json:"serviceDescription" gorm:"type:text"`
	ScheduledDate      string   `json:"scheduledDate" gorm:"type:varchar(10);not null"`
	ScheduledTime      string   `json:"scheduledTime" gorm:"type:varchar(5);not null"`
	Status             string   `json:"status" gorm:"type:varchar(16);default:PENDING;index"`
	Invoice            *Invoice `json:"invoice,omitempty" gorm:"foreignKey:BookingID"`
}
