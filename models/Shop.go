package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Shop struct {
	gorm.Model
	UserID      uint           `json:"userID" gorm:"not null;uniqueIndex"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	Address     string         `json:"address"`
	City        string         `json:"city" gorm:"index"`
	PhoneNumber string         `json:"phoneNumber"`
	Email       string         `json:"email"`
	Photos      datatypes.JSON `json:"photos"`
	Specialties datatypes.JSON `json:"specialties"`
	LaborRate   float64        `json:"laborRate"`
	IsVerified  bool           `json:"isVerified" gorm:"default:false"`
	Stars       float64        `json:"stars" gorm:"default:0"`
	ReviewCount int            `json:"reviewCount" gorm:"default:0"`
	Services    []ShopService  `json:"services" gorm:"foreignKey:ShopID"`
}
