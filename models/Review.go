package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Review struct {
	gorm.Model
	UserID     uint           `json:"userID" gorm:"not null;index"`
	User       User           `json:"user" gorm:"foreignKey:UserID"`
	ShopID     uint           `json:"shopID" gorm:"not null;index"`
	BookingID  *uint          `json:"bookingID" gorm:"index"`
	Booking    *Booking       `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	Title      string         `json:"title"`
	Body       string         `json:"body" gorm:"type:text"`
	Stars      int            `json:"stars" gorm:"not null;check:stars >= 1 AND stars <= 5"`
	Photos     datatypes.JSON `json:"photos"`
	IsVerified bool           `json:"isVerified" gorm:"default:false"` // tied to a completed booking
	IsHidden   bool           `json:"isHidden" gorm:"default:false"`   // admin moderation
}
