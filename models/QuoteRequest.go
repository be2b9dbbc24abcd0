package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuoteRequestStatusOpen    = "OPEN"
	QuoteRequestStatusClosed  = "CLOSED"
	QuoteRequestStatusExpired = "EXPIRED"
)

// QuoteRequest is an owner's ask for repair quotes. Broadcast requests are
// visible to every shop; otherwise only the shops listed in TargetShopIDs
// see it. A shop that already submitted a quote stops seeing the request.
type QuoteRequest struct {
	gorm.Model
	OwnerID       uint           `json:"ownerID" gorm:"not null;index"`
	Owner         User           `json:"owner" gorm:"foreignKey:OwnerID"`
	VehicleID     uint           `json:"vehicleID" gorm:"not null;index"`
	Vehicle       Vehicle        `json:"vehicle" gorm:"foreignKey:VehicleID"`
	Description   string         `json:"description" gorm:"type:text;not null"`
	Symptoms      datatypes.JSON `json:"symptoms"`
	Photos        datatypes.JSON `json:"photos"`
	Broadcast     bool           `json:"broadcast" gorm:"default:true"`
	TargetShopIDs datatypes.JSON `json:"targetShopIDs"`
	Status        string         `json:"status" gorm:"type:varchar(16);default:OPEN;index"`
	Quotes        []Quote        `json:"quotes" gorm:"foreignKey:QuoteRequestID"`
}
